package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/counsel-tools/prep-cli/internal/export"
	"github.com/counsel-tools/prep-cli/internal/generate"
	"github.com/counsel-tools/prep-cli/internal/ingest"
	"github.com/counsel-tools/prep-cli/internal/model"
	"github.com/counsel-tools/prep-cli/internal/session"
)

// maxUploadBytes bounds one multipart upload request.
const maxUploadBytes = 64 << 20

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prep session HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		api := &apiServer{env: env}

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.RealIP)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/v1/sessions", func(r chi.Router) {
			r.Post("/", api.createSession)
			r.Get("/", api.listSessions)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", api.getSession)
				r.Patch("/", api.updateSession)
				r.Delete("/", api.deleteSession)
				r.Post("/documents", api.uploadDocuments)
				r.Post("/generate", api.generateQuestions)
				r.Post("/questions/{qid}/followups", api.generateFollowUps)
				r.Put("/outline", api.putOutline)
				r.Post("/outline/reorder", api.reorderOutline)
				r.Get("/export", api.exportSession)
			})
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

type apiServer struct {
	env *env
}

func (a *apiServer) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SubjectName string `json:"subject_name"`
		CaseName    string `json:"case_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SubjectName == "" {
		writeError(w, http.StatusBadRequest, "subject_name is required")
		return
	}

	sess, err := a.env.Store.Create(r.Context(), req.SubjectName, req.CaseName)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (a *apiServer) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := a.env.Store.List(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (a *apiServer) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := a.env.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (a *apiServer) updateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := a.env.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	switch model.SessionStatus(req.Status) {
	case model.SessionStatusPracticing, model.SessionStatusCompleted, model.SessionStatusReady:
		sess.Status = model.SessionStatus(req.Status)
	default:
		writeError(w, http.StatusBadRequest, "status must be ready, practicing, or completed")
		return
	}

	if err := a.env.Store.Put(r.Context(), sess); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (a *apiServer) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := a.env.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *apiServer) uploadDocuments(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	category := r.FormValue("category")

	var files []ingest.File
	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file: "+fh.Filename)
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file: "+fh.Filename)
			return
		}
		files = append(files, ingest.File{
			Name:        fh.Filename,
			Category:    category,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     content,
		})
	}
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided")
		return
	}

	docs, err := a.env.Ingestor.Ingest(r.Context(), chi.URLParam(r, "id"), files)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"documents": docs})
}

func (a *apiServer) generateQuestions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	profile := model.ProfileFor(r.URL.Query().Get("profile"))

	if r.URL.Query().Get("stream") == "1" {
		a.generateStreaming(w, r, id, profile)
		return
	}

	sess, err := a.env.Generator.Generate(r.Context(), id, profile)
	if err != nil {
		writeGenerateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// generateStreaming delivers raw model output as server-sent events followed
// by one final event carrying the full session.
func (a *apiServer) generateStreaming(w http.ResponseWriter, r *http.Request, id string, profile model.SubjectProfile) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	sess, err := a.env.Generator.GenerateStream(r.Context(), id, profile, func(delta string) {
		data, _ := json.Marshal(map[string]string{"text": delta})
		fmt.Fprintf(w, "event: delta\ndata: %s\n\n", data)
		flusher.Flush()
	})
	if err != nil {
		data, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", data)
		flusher.Flush()
		return
	}

	data, _ := json.Marshal(sess)
	fmt.Fprintf(w, "event: result\ndata: %s\n\n", data)
	flusher.Flush()
}

func (a *apiServer) generateFollowUps(w http.ResponseWriter, r *http.Request) {
	profile := model.ProfileFor(r.URL.Query().Get("profile"))
	questions, err := a.env.Generator.FollowUps(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "qid"), profile)
	if err != nil {
		writeGenerateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

// putOutline replaces the session outline. Sections reference questions by
// ID; each referenced question is copied into the section.
func (a *apiServer) putOutline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title    string `json:"title"`
		Sections []struct {
			Title            string   `json:"title"`
			QuestionIDs      []string `json:"question_ids"`
			Notes            string   `json:"notes"`
			EstimatedMinutes int      `json:"estimated_minutes"`
		} `json:"sections"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := a.env.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	byID := make(map[string]model.Question, len(sess.Questions))
	for _, q := range sess.Questions {
		byID[q.ID] = q
	}

	now := time.Now().UTC()
	outline := model.NewOutline(req.Title, now)
	for i, s := range req.Sections {
		sec := outline.AddSection(s.Title, now)
		sec.Notes = s.Notes
		sec.EstimatedMinutes = s.EstimatedMinutes
		for _, qid := range s.QuestionIDs {
			q, ok := byID[qid]
			if !ok {
				writeError(w, http.StatusBadRequest, "unknown question id: "+qid)
				return
			}
			outline.AddQuestion(i, q, now)
		}
	}

	sess.Outline = outline
	if err := a.env.Store.Put(r.Context(), sess); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Outline)
}

func (a *apiServer) reorderOutline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order []int `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := a.env.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if sess.Outline == nil {
		writeError(w, http.StatusBadRequest, "session has no outline")
		return
	}
	if !sess.Outline.Reorder(req.Order, time.Now().UTC()) {
		writeError(w, http.StatusBadRequest, "order must be a permutation of section indexes")
		return
	}

	if err := a.env.Store.Put(r.Context(), sess); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Outline)
}

func (a *apiServer) exportSession(w http.ResponseWriter, r *http.Request) {
	sess, err := a.env.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	profile := model.ProfileFor(r.URL.Query().Get("profile"))

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, export.Markdown(sess, profile))
}

// helpers

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	zap.L().Error("store error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeGenerateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, generate.ErrNoDocuments):
		writeError(w, http.StatusConflict, "session has no ready documents")
	case errors.Is(err, generate.ErrNoCredential):
		writeError(w, http.StatusPreconditionFailed, "no model credential configured")
	default:
		zap.L().Error("generate error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

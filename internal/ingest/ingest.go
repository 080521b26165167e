// Package ingest adds uploaded documents to a prep session. Text extraction
// runs through the document vault in parallel; a document whose text cannot
// be extracted still joins the session with placeholder text so generation
// never blocks on a bad upload.
package ingest

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/counsel-tools/prep-cli/internal/model"
	"github.com/counsel-tools/prep-cli/internal/resilience"
	"github.com/counsel-tools/prep-cli/internal/session"
	"github.com/counsel-tools/prep-cli/pkg/vault"
)

// defaultConcurrency bounds parallel vault extraction calls per ingest.
const defaultConcurrency = 4

// File is one uploaded document before extraction.
type File struct {
	Name        string
	Category    string
	ContentType string
	Content     []byte
}

// Ingestor extracts text from uploads and persists the resulting documents
// onto the session.
type Ingestor struct {
	vault       vault.Client
	store       session.Store
	policy      resilience.Policy
	concurrency int
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithConcurrency overrides the parallel extraction bound.
func WithConcurrency(n int) Option {
	return func(i *Ingestor) {
		if n > 0 {
			i.concurrency = n
		}
	}
}

// WithRetryPolicy overrides the vault retry policy.
func WithRetryPolicy(p resilience.Policy) Option {
	return func(i *Ingestor) {
		i.policy = p
	}
}

// New creates an Ingestor. A nil vault client restricts ingestion to files
// that already are plain text.
func New(vaultClient vault.Client, store session.Store, opts ...Option) *Ingestor {
	i := &Ingestor{
		vault:       vaultClient,
		store:       store,
		policy:      resilience.DefaultPolicy(),
		concurrency: defaultConcurrency,
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Ingest extracts every file concurrently and appends the documents to the
// session in the order the files were given. Extraction failure downgrades
// the document to placeholder text; only a store failure is an error.
func (i *Ingestor) Ingest(ctx context.Context, sessionID string, files []File) ([]model.Document, error) {
	sess, err := i.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	docs := make([]model.Document, len(files))
	for idx, f := range files {
		docs[idx] = model.Document{
			ID:         uuid.New().String(),
			Name:       f.Name,
			Category:   model.NormalizeDocCategory(f.Category),
			SizeBytes:  int64(len(f.Content)),
			UploadedAt: now,
			Status:     model.DocStatusProcessing,
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)
	for idx := range files {
		g.Go(func() error {
			text, ok := i.extract(gctx, files[idx])
			if ok {
				docs[idx].Text = text
				docs[idx].Status = model.DocStatusReady
			} else {
				docs[idx].Text = model.PlaceholderText
				docs[idx].Status = model.DocStatusReady
				zap.L().Warn("ingest: extraction failed, using placeholder",
					zap.String("session_id", sessionID),
					zap.String("document", files[idx].Name))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sess.Documents = append(sess.Documents, docs...)
	if err := i.store.Put(ctx, sess); err != nil {
		return nil, err
	}
	return docs, nil
}

// extract returns the document text and whether extraction succeeded. Plain
// text passes through untouched; everything else goes to the vault.
func (i *Ingestor) extract(ctx context.Context, f File) (string, bool) {
	if isPlainText(f) {
		return string(f.Content), true
	}
	if i.vault == nil {
		return "", false
	}

	resp, err := resilience.DoVal(ctx, i.policy, "vault.extract", func(ctx context.Context) (*vault.ExtractResponse, error) {
		return i.vault.ExtractText(ctx, vault.ExtractRequest{
			FileName:    f.Name,
			ContentType: f.ContentType,
			Content:     f.Content,
		})
	})
	if err != nil || resp.Text == "" {
		return "", false
	}
	return resp.Text, true
}

func isPlainText(f File) bool {
	if strings.HasPrefix(f.ContentType, "text/") {
		return true
	}
	return f.ContentType == "" && utf8.Valid(f.Content)
}

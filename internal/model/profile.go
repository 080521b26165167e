package model

// SubjectProfile parameterizes generation for the two prep tools. The
// witness and deponent variants share every mechanism and differ only in
// the role noun used in prompts and rationales and in the question quota
// requested from the model.
type SubjectProfile struct {
	Kind           string `json:"kind"`
	Role           string `json:"role"`
	QuestionTarget int    `json:"question_target"`
}

// The two supported profiles.
var (
	ProfileWitness = SubjectProfile{
		Kind:           "witness",
		Role:           "witness",
		QuestionTarget: 20,
	}
	ProfileDeponent = SubjectProfile{
		Kind:           "deponent",
		Role:           "deponent",
		QuestionTarget: 15,
	}
)

// ProfileFor resolves a profile by kind, defaulting to the witness profile.
func ProfileFor(kind string) SubjectProfile {
	if kind == ProfileDeponent.Kind {
		return ProfileDeponent
	}
	return ProfileWitness
}

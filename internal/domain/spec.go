package domain

const (
	// RequiredQuestionCount is the exact number of questions a generated quiz must have.
	RequiredQuestionCount = 10
	// RequiredOptionCount is the exact number of options each question must have.
	RequiredOptionCount = 4
)

// QuestionSpec is a single question candidate inside a QuizSpec.
type QuestionSpec struct {
	QuestionTitle   string   `json:"question_title"`
	QuestionOptions []string `json:"question_options"`
	Answer          string   `json:"answer"`
}

// Validate checks the option count and answer membership invariants.
// Duplicate option values are permitted; only count and membership are checked.
func (q *QuestionSpec) Validate() error {
	if len(q.QuestionOptions) != RequiredOptionCount {
		return NewBadOptionCountError(len(q.QuestionOptions))
	}
	for _, opt := range q.QuestionOptions {
		if opt == q.Answer {
			return nil
		}
	}
	return NewAnswerNotInOptionsError(q.Answer)
}

// QuizSpec is the transient, unvalidated quiz candidate produced by the
// synthesizer. It is validated before persistence, never after.
type QuizSpec struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Questions   []QuestionSpec `json:"questions"`
}

// Validate checks the structural invariants of the spec. It short-circuits on
// the first violation.
func (s *QuizSpec) Validate() error {
	if len(s.Questions) != RequiredQuestionCount {
		return NewWrongQuestionCountError(len(s.Questions))
	}
	for i := range s.Questions {
		if err := s.Questions[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

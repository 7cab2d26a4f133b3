package genai

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"trivia-session-service/internal/domain"
)

var validate = validator.New()

// batchQuestion mirrors domain.Question with the contract expressed as
// validation tags: 4 unique non-empty options, non-empty prompt,
// explanation and hint.
type batchQuestion struct {
	Question    string   `validate:"required"`
	Options     []string `validate:"len=4,unique,dive,required"`
	Correct     string   `validate:"required"`
	Explanation string   `validate:"required"`
	Hint        string   `validate:"required"`
}

// ValidateBatch enforces the question source contract on a generated batch.
// A violation anywhere fails the whole batch: the session machine does not
// re-validate downstream, so nothing malformed may pass here.
func ValidateBatch(questions []domain.Question) error {
	if len(questions) != domain.QuestionsPerBatch {
		return fmt.Errorf("%w: expected %d questions, got %d",
			domain.ErrInvalidBatch, domain.QuestionsPerBatch, len(questions))
	}
	for i, q := range questions {
		if err := validate.Struct(batchQuestion{
			Question:    q.Question,
			Options:     q.Options,
			Correct:     q.CorrectAnswer,
			Explanation: q.Explanation,
			Hint:        q.Hint,
		}); err != nil {
			return fmt.Errorf("%w: question %d: %v", domain.ErrInvalidBatch, i, err)
		}
		if !contains(q.Options, q.CorrectAnswer) {
			return fmt.Errorf("%w: question %d: correct answer not among options",
				domain.ErrInvalidBatch, i)
		}
	}
	return nil
}

func contains(options []string, answer string) bool {
	for _, o := range options {
		if o == answer {
			return true
		}
	}
	return false
}

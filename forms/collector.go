package forms

import (
	"errors"
	"fmt"

	"github.com/gdsc-campus/club-portal/model"
)

// QuestionsPerPage is how many questions a single display page holds.
const QuestionsPerPage = 3

// ErrRequired is wrapped by validation failures naming the missing question.
var ErrRequired = errors.New("required question not answered")

// Collector accumulates answers keyed by question id while the respondent
// walks the form pages. Values are overwritten without validation; validation
// happens per page on forward navigation and over the whole form on submit.
type Collector struct {
	answers map[string]string
}

func NewCollector() *Collector {
	return &Collector{answers: map[string]string{}}
}

func (c *Collector) SetAnswer(questionID, value string) {
	c.answers[questionID] = value
}

// Answers returns a copy of the collected values.
func (c *Collector) Answers() map[string]string {
	answers := make(map[string]string, len(c.answers))
	for id, value := range c.answers {
		answers[id] = value
	}
	return answers
}

// ValidatePage fails on the first required question of the page with no
// answer. An empty string counts as missing.
func (c *Collector) ValidatePage(questions []model.Question) error {
	for _, q := range questions {
		if q.IsRequired && c.answers[q.ID] == "" {
			return fmt.Errorf("%w: %s", ErrRequired, q.QuestionText)
		}
	}
	return nil
}

// ValidateAll is the final gate before commit, checking the full question set.
func (c *Collector) ValidateAll(questions []model.Question) error {
	return c.ValidatePage(questions)
}

// PageCount returns how many pages the question set spans.
func PageCount(questions []model.Question) int {
	return (len(questions) + QuestionsPerPage - 1) / QuestionsPerPage
}

// Page returns the slice of questions shown on the given zero-based page.
func Page(questions []model.Question, page int) []model.Question {
	start := page * QuestionsPerPage
	if start < 0 || start >= len(questions) {
		return nil
	}
	end := start + QuestionsPerPage
	if end > len(questions) {
		end = len(questions)
	}
	return questions[start:end]
}

package model

import (
	"fmt"
	"time"
)

// QuestionType is the closed set of input kinds a form question can take.
type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionTextArea QuestionType = "textarea"
	QuestionSelect   QuestionType = "select"
)

// Validate rejects unknown types, and select questions without options.
func (t QuestionType) Validate(options []string) error {
	switch t {
	case QuestionText, QuestionTextArea:
		return nil
	case QuestionSelect:
		if len(options) == 0 {
			return fmt.Errorf("question type %q requires options", t)
		}
		return nil
	default:
		return fmt.Errorf("unknown question type %q", t)
	}
}

type Form struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
	// Filled is only populated on authenticated reads.
	Filled bool `json:"filled"`
}

type Question struct {
	ID           string       `json:"id,omitempty"`
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`
	IsRequired   bool         `json:"is_required"`
	OrderNumber  int          `json:"order_number"`
	Options      []string     `json:"options,omitempty"`
}

type Response struct {
	ID           string    `json:"id"`
	FormID       string    `json:"form_id"`
	RespondentID string    `json:"respondent_id"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Answers      []Answer  `json:"answers"`
}

type Answer struct {
	ID         string `json:"id"`
	ResponseID string `json:"response_id,omitempty"`
	QuestionID string `json:"question_id"`
	AnswerText string `json:"answer_text"`
	AnswerJSON string `json:"answer_json,omitempty"`
	// Question text/type are joined in for display.
	QuestionText string       `json:"question_text,omitempty"`
	QuestionType QuestionType `json:"question_type,omitempty"`
}

type Profile struct {
	ID            string `json:"id,omitempty"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	Website       string `json:"website,omitempty"`
	AvatarURL     string `json:"avatar_url"`
	CurrentYear   string `json:"current_year"`
	CurrentBranch string `json:"current_branch"`
	Field         string `json:"field,omitempty"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	GithubURL     string `json:"github_url"`
	InstagramURL  string `json:"instagram_url,omitempty"`
	LinkedinURL   string `json:"linkedin_url"`
	PRN           string `json:"prn,omitempty"`
	RFIDTag       string `json:"rfid_tag,omitempty"`
}

type UserRole struct {
	Role        string `json:"role"`
	Permissions string `json:"permissions"`
}

type Event struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Registration struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	EventName string    `json:"event_name"`
	CreatedAt time.Time `json:"created_at"`
}

type Post struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Body        string    `json:"body,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

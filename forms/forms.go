// Package forms implements the dynamic form core: schema loading, the
// duplicate-submission guard, answer collection, the transactional submission
// commit, fill-status aggregation and response reading. All state lives in the
// relational store passed in by the caller.
package forms

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gdsc-campus/club-portal/model"
)

var (
	ErrNotFound         = errors.New("form not found")
	ErrAlreadySubmitted = errors.New("form already submitted")
)

// LoadForm returns the form and its questions ordered by order_number.
func LoadForm(ctx context.Context, db *sql.DB, formID string) (model.Form, error) {
	form := model.Form{ID: formID}
	err := db.
		QueryRowContext(ctx, `
			SELECT title, description
			FROM form
			WHERE id = ?`,
			formID,
		).
		Scan(&form.Title, &form.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return form, ErrNotFound
	}
	if err != nil {
		return form, err
	}

	form.Questions, err = loadQuestions(ctx, db, formID)
	return form, err
}

// LoadForms returns every form, each with its ordered questions.
func LoadForms(ctx context.Context, db *sql.DB) ([]model.Form, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, title, description
		FROM form
		ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	forms := []model.Form{}
	for rows.Next() {
		f := model.Form{}
		err = rows.Scan(&f.ID, &f.Title, &f.Description)
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for i := range forms {
		forms[i].Questions, err = loadQuestions(ctx, db, forms[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return forms, nil
}

func loadQuestions(ctx context.Context, db *sql.DB, formID string) ([]model.Question, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, question_text, question_type, is_required, order_number, options
		FROM question
		WHERE form_id = ?
		ORDER BY order_number`,
		formID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		q := model.Question{}
		var opts string
		err = rows.Scan(&q.ID, &q.QuestionText, &q.QuestionType, &q.IsRequired, &q.OrderNumber, &opts)
		if err != nil {
			return nil, err
		}

		if opts != "" {
			err = json.Unmarshal([]byte(opts), &q.Options)
			if err != nil {
				return nil, err
			}
		}

		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// HasSubmitted reports whether the respondent already has a response for the
// form. It is a pre-check only: the unique index on (form_id, respondent_id)
// is what actually closes the race at commit time.
func HasSubmitted(ctx context.Context, db *sql.DB, formID, respondentID string) (bool, error) {
	var submitted bool
	err := db.
		QueryRowContext(ctx, `
			SELECT 1 FROM response
			WHERE form_id = ?
				AND respondent_id = ?`,
			formID,
			respondentID,
		).
		Scan(&submitted)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return submitted, err
}

// FilledStatus maps every given form id to whether the respondent has a
// response for it. One query regardless of how many forms are asked about.
func FilledStatus(ctx context.Context, db *sql.DB, respondentID string, formIDs []string) (map[string]bool, error) {
	filled := map[string]bool{}
	for _, id := range formIDs {
		filled[id] = false
	}
	if len(formIDs) == 0 {
		return filled, nil
	}

	args := make([]any, 0, len(formIDs)+1)
	args = append(args, respondentID)
	for _, id := range formIDs {
		args = append(args, id)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT form_id FROM response
		WHERE respondent_id = ?
			AND form_id IN (?`+strings.Repeat(",?", len(formIDs)-1)+`)`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var formID string
		err = rows.Scan(&formID)
		if err != nil {
			return nil, err
		}
		filled[formID] = true
	}
	return filled, rows.Err()
}

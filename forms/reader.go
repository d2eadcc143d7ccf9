package forms

import (
	"context"
	"database/sql"

	"github.com/gdsc-campus/club-portal/model"
)

// ReadResponses returns the respondent's own response for the form, with
// answers joined to their question text and type. An empty slice, not an
// error, when the respondent never submitted.
func ReadResponses(ctx context.Context, db *sql.DB, formID, respondentID string) ([]model.Response, error) {
	return readResponses(ctx, db, `
		WHERE r.form_id = ?
			AND r.respondent_id = ?`,
		formID, respondentID)
}

// ReadAllResponses returns every response for the form, for owner review.
func ReadAllResponses(ctx context.Context, db *sql.DB, formID string) ([]model.Response, error) {
	return readResponses(ctx, db, `
		WHERE r.form_id = ?`,
		formID)
}

func readResponses(ctx context.Context, db *sql.DB, where string, args ...any) ([]model.Response, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT
			r.id, r.form_id, r.respondent_id, r.submitted_at,
			a.id, a.question_id, a.answer_text, a.answer_json,
			q.question_text, q.question_type
		FROM response r
		LEFT OUTER JOIN answer a ON (r.id = a.response_id)
		LEFT OUTER JOIN question q ON (a.question_id = q.id)`+
		where+`
		ORDER BY r.submitted_at DESC, r.id, q.order_number`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	responses := []model.Response{}
	for rows.Next() {
		r := model.Response{}
		a := model.Answer{}
		var answerID, questionID, answerText, answerJSON, questionText, questionType sql.NullString
		err = rows.Scan(
			&r.ID, &r.FormID, &r.RespondentID, &r.SubmittedAt,
			&answerID, &questionID, &answerText, &answerJSON,
			&questionText, &questionType,
		)
		if err != nil {
			return nil, err
		}

		lastIdx := len(responses) - 1
		if lastIdx < 0 || responses[lastIdx].ID != r.ID {
			r.Answers = []model.Answer{}
			responses = append(responses, r)
			lastIdx++
		}

		// a response submitted with no answers still shows up
		if !answerID.Valid {
			continue
		}
		a.ID = answerID.String
		a.QuestionID = questionID.String
		a.AnswerText = answerText.String
		a.AnswerJSON = answerJSON.String
		a.QuestionText = questionText.String
		a.QuestionType = model.QuestionType(questionType.String)
		responses[lastIdx].Answers = append(responses[lastIdx].Answers, a)
	}
	return responses, rows.Err()
}

package forms

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofrs/uuid"

	"github.com/gdsc-campus/club-portal/database"
)

// CommitSubmission creates the response row and one answer row per collected
// value in a single transaction, so a failed answer insert never leaves an
// orphaned response behind. A second submission for the same (form,
// respondent) trips the unique index and returns ErrAlreadySubmitted.
func CommitSubmission(ctx context.Context, db *sql.DB, formID, respondentID string, answers map[string]string) (string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	responseID := uuid.Must(uuid.NewV4()).String()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO response (id, form_id, respondent_id, submitted_at, custom_fields)
		VALUES (?, ?, ?, ?, '{}')`,
		responseID,
		formID,
		respondentID,
		time.Now(),
	)
	if database.IsUniqueViolation(err) {
		return "", ErrAlreadySubmitted
	}
	if err != nil {
		return "", err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO answer (id, response_id, question_id, answer_text, answer_json)
		VALUES (?, ?, ?, ?, '{}')`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for questionID, text := range answers {
		answerID := uuid.Must(uuid.NewV4()).String()
		_, err = stmt.ExecContext(ctx, answerID, responseID, questionID, text)
		if err != nil {
			return "", err
		}
	}

	err = tx.Commit()
	if database.IsUniqueViolation(err) {
		return "", ErrAlreadySubmitted
	}
	if err != nil {
		return "", err
	}
	return responseID, nil
}

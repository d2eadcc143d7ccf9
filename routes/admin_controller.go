package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gofrs/uuid"

	"github.com/gdsc-campus/club-portal/app"
	"github.com/gdsc-campus/club-portal/forms"
	"github.com/gdsc-campus/club-portal/httpx"
	"github.com/gdsc-campus/club-portal/log"
	"github.com/gdsc-campus/club-portal/model"
)

// CreateForm persists a new form with its questions in one transaction.
// Question order follows the submitted order unless order numbers are given.
func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := model.Form{}
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if form.Title == "" {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "create_form.title", "missing form title")
			return
		}
		for _, q := range form.Questions {
			if err := q.QuestionType.Validate(q.Options); err != nil {
				httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "create_form.question_type", "%s", err)
				return
			}
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		formID := uuid.Must(uuid.NewV4()).String()
		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO form (id, title, description)
			VALUES (?, ?, ?)`,
			formID,
			form.Title,
			form.Description,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_form", err)
			return
		}

		stmt, err := tx.PrepareContext(r.Context(), `
			INSERT INTO question (id, form_id, question_text, question_type, is_required, order_number, options)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_form.questions.prepare", err)
			return
		}
		defer stmt.Close()

		for i, q := range form.Questions {
			order := q.OrderNumber
			if order == 0 {
				order = i + 1
			}

			var optionsJson []byte
			if q.Options != nil {
				optionsJson, err = json.Marshal(q.Options)
				if err != nil {
					httpx.LogInternalError(w, "db.insert_form.questions.parse_options", err)
					return
				}
			}
			questionID := uuid.Must(uuid.NewV4()).String()
			_, err = stmt.ExecContext(r.Context(), questionID, formID, q.QuestionText, q.QuestionType, q.IsRequired, order, string(optionsJson))
			if err != nil {
				httpx.LogInternalError(w, "db.insert_form.questions.insert", err)
				return
			}
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.insert_form.commit", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": formID,
		})
	}
}

// GetAllResponses serves every response for a form, for owner review.
func GetAllResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formID := chi.URLParam(r, "id")

		_, err := forms.LoadForm(r.Context(), app.DB, formID)
		if errors.Is(err, forms.ErrNotFound) {
			httpx.LogNotFound(w, "get_all_responses", formID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_all_responses.form", err)
			return
		}

		responses, err := forms.ReadAllResponses(r.Context(), app.DB, formID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_all_responses", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"responses": responses,
		})
	}
}

package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/gdsc-campus/club-portal/app"
	"github.com/gdsc-campus/club-portal/forms"
	"github.com/gdsc-campus/club-portal/httpx"
	"github.com/gdsc-campus/club-portal/log"
)

// GetForms serves the form list, or a single form when ?id= is given. Each
// form is decorated with the caller's fill status.
func GetForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authUserID(w, r)
		if !ok {
			return
		}

		if formID := r.URL.Query().Get("id"); formID != "" {
			form, err := forms.LoadForm(r.Context(), app.DB, formID)
			if errors.Is(err, forms.ErrNotFound) {
				httpx.LogNotFound(w, "get_form", formID)
				return
			}
			if err != nil {
				httpx.LogInternalError(w, "db.get_form", err)
				return
			}

			filled, err := forms.FilledStatus(r.Context(), app.DB, userID, []string{formID})
			if err != nil {
				httpx.LogInternalError(w, "db.get_form.filled", err)
				return
			}
			form.Filled = filled[formID]

			render.JSON(w, r, form)
			return
		}

		list, err := forms.LoadForms(r.Context(), app.DB)
		if err != nil {
			httpx.LogInternalError(w, "db.get_forms", err)
			return
		}

		formIDs := make([]string, len(list))
		for i, f := range list {
			formIDs[i] = f.ID
		}
		filled, err := forms.FilledStatus(r.Context(), app.DB, userID, formIDs)
		if err != nil {
			httpx.LogInternalError(w, "db.get_forms.filled", err)
			return
		}
		for i := range list {
			list[i].Filled = filled[list[i].ID]
		}

		render.JSON(w, r, map[string]any{
			"forms": list,
		})
	}
}

// GetOwnResponses serves the caller's own submission for a form.
func GetOwnResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authUserID(w, r)
		if !ok {
			return
		}
		formID := chi.URLParam(r, "id")

		responses, err := forms.ReadResponses(r.Context(), app.DB, formID, userID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_responses", err)
			return
		}

		render.JSON(w, r, responses)
	}
}

type submissionBody struct {
	Answers map[string]string `json:"answers"`
}

// SubmitForm validates the collected answers against the form's required
// questions and commits the response with its answers in one transaction.
func SubmitForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authUserID(w, r)
		if !ok {
			return
		}
		formID := chi.URLParam(r, "id")

		body := submissionBody{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		form, err := forms.LoadForm(r.Context(), app.DB, formID)
		if errors.Is(err, forms.ErrNotFound) {
			httpx.LogNotFound(w, "submit_form", formID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.submit_form.load", err)
			return
		}

		// pre-check for a friendly 409; the unique index has the final word
		submitted, err := forms.HasSubmitted(r.Context(), app.DB, formID, userID)
		if err != nil {
			httpx.LogInternalError(w, "db.submit_form.guard", err)
			return
		}
		if submitted {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "submit_form.already_submitted")
			return
		}

		collector := forms.NewCollector()
		for questionID, value := range body.Answers {
			collector.SetAnswer(questionID, value)
		}
		err = collector.ValidateAll(form.Questions)
		if err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "submit_form.validate", "%s", err)
			return
		}

		responseID, err := forms.CommitSubmission(r.Context(), app.DB, formID, userID, collector.Answers())
		if errors.Is(err, forms.ErrAlreadySubmitted) {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "submit_form.already_submitted")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.submit_form.commit", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": responseID,
		})
	}
}

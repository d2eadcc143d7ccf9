package routes

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/gdsc-campus/club-portal/app"
	"github.com/gdsc-campus/club-portal/database"
	"github.com/gdsc-campus/club-portal/httpx"
	"github.com/gdsc-campus/club-portal/log"
)

// LookupByPRN resolves a PRN to the member's name and email, so the operator
// can confirm who they are about to tag.
func LookupByPRN(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prn := r.URL.Query().Get("prn")
		if prn == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.get_query_param.prn")
			return
		}

		var fullName, email string
		err := app.QueryRowContext(r.Context(), `
			SELECT p.full_name, u.email
			FROM profile p
			INNER JOIN user u ON (p.id = u.id)
			WHERE p.prn = ?`,
			prn,
		).Scan(&fullName, &email)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "rfid_lookup", prn)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.rfid_lookup", err)
			return
		}

		render.JSON(w, r, map[string]string{
			"full_name": fullName,
			"email":     email,
		})
	}
}

type assignBody struct {
	PRN     string `json:"prn"`
	RFIDTag string `json:"rfid_tag"`
}

// AssignRFIDTag binds a scanned tag serial to the profile with the given PRN.
// A tag can only belong to one member.
func AssignRFIDTag(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := assignBody{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil || body.PRN == "" || body.RFIDTag == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		res, err := app.ExecContext(r.Context(), `
			UPDATE profile
			SET rfid_tag = ?
			WHERE prn = ?`,
			body.RFIDTag,
			body.PRN,
		)
		if database.IsUniqueViolation(err) {
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "rfid_assign.tag_taken")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.rfid_assign", err)
			return
		}

		n, err := res.RowsAffected()
		if err != nil {
			httpx.LogInternalError(w, "db.rfid_assign.verify", err)
			return
		}
		if n < 1 {
			httpx.LogNotFound(w, "rfid_assign", body.PRN)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

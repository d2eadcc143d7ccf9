package routes

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/gdsc-campus/club-portal/app"
	"github.com/gdsc-campus/club-portal/httpx"
	"github.com/gdsc-campus/club-portal/log"
	"github.com/gdsc-campus/club-portal/model"
)

func GetProfile(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authUserID(w, r)
		if !ok {
			return
		}

		p := model.Profile{}
		var username, prn, rfidTag sql.NullString
		err := app.QueryRowContext(r.Context(), `
			SELECT
				username, full_name, website, avatar_url,
				current_year, current_branch, phone_number,
				github_url, instagram_url, linkedin_url,
				prn, rfid_tag
			FROM profile
			WHERE id = ?`,
			userID,
		).Scan(
			&username, &p.FullName, &p.Website, &p.AvatarURL,
			&p.CurrentYear, &p.CurrentBranch, &p.PhoneNumber,
			&p.GithubURL, &p.InstagramURL, &p.LinkedinURL,
			&prn, &rfidTag,
		)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_profile", userID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_profile", err)
			return
		}
		p.Username = username.String
		p.PRN = prn.String
		p.RFIDTag = rfidTag.String

		render.JSON(w, r, p)
	}
}

// UpsertProfile creates or refreshes the caller's profile row. The rfid tag
// is not writable here: it is only assigned through the admin flow.
func UpsertProfile(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authUserID(w, r)
		if !ok {
			return
		}

		p := model.Profile{}
		err := render.DecodeJSON(r.Body, &p)
		if err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		_, err = app.ExecContext(r.Context(), `
			INSERT INTO profile (
				id, username, full_name, website, avatar_url,
				current_year, current_branch, phone_number,
				github_url, instagram_url, linkedin_url, prn, updated_at
			)
			VALUES (?, NULLIF(?, ''), ?, ?, ?, ?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?)
			ON CONFLICT (id) DO UPDATE SET
				username = excluded.username,
				full_name = excluded.full_name,
				website = excluded.website,
				avatar_url = excluded.avatar_url,
				current_year = excluded.current_year,
				current_branch = excluded.current_branch,
				phone_number = excluded.phone_number,
				github_url = excluded.github_url,
				instagram_url = excluded.instagram_url,
				linkedin_url = excluded.linkedin_url,
				prn = excluded.prn,
				updated_at = excluded.updated_at`,
			userID, p.Username, p.FullName, p.Website, p.AvatarURL,
			p.CurrentYear, p.CurrentBranch, p.PhoneNumber,
			p.GithubURL, p.InstagramURL, p.LinkedinURL, p.PRN,
			time.Now(),
		)
		if err != nil {
			httpx.LogInternalError(w, "db.upsert_profile", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func GetUserRole(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authUserID(w, r)
		if !ok {
			return
		}

		role := model.UserRole{}
		err := app.QueryRowContext(r.Context(), `
			SELECT role, permissions FROM user_role
			WHERE user_id = ?`,
			userID,
		).Scan(&role.Role, &role.Permissions)
		if errors.Is(err, sql.ErrNoRows) {
			role.Role = "member"
		} else if err != nil {
			httpx.LogInternalError(w, "db.get_user_role", err)
			return
		}

		render.JSON(w, r, role)
	}
}

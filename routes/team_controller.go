package routes

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/gdsc-campus/club-portal/app"
	"github.com/gdsc-campus/club-portal/httpx"
	"github.com/gdsc-campus/club-portal/model"
)

// ListTeam serves the public member directory cards.
func ListTeam(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT
				COALESCE(username, ''), full_name, avatar_url,
				current_year, current_branch, field,
				github_url, linkedin_url
			FROM profile
			WHERE is_member`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_team", err)
			return
		}
		defer rows.Close()

		members := []model.Profile{}
		for rows.Next() {
			m := model.Profile{}
			err = rows.Scan(
				&m.Username, &m.FullName, &m.AvatarURL,
				&m.CurrentYear, &m.CurrentBranch, &m.Field,
				&m.GithubURL, &m.LinkedinURL,
			)
			if err != nil {
				httpx.LogInternalError(w, "db.get_team.scan", err)
				return
			}
			members = append(members, m)
		}

		render.JSON(w, r, members)
	}
}

// GetTeamMember serves a single member page. Only members with console access
// have a public page.
func GetTeamMember(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		m := model.Profile{Username: username}
		err := app.QueryRowContext(r.Context(), `
			SELECT
				full_name, website, avatar_url,
				current_year, current_branch, field,
				github_url, instagram_url, linkedin_url
			FROM profile
			WHERE username = ?
				AND is_member
				AND has_console_access`,
			username,
		).Scan(
			&m.FullName, &m.Website, &m.AvatarURL,
			&m.CurrentYear, &m.CurrentBranch, &m.Field,
			&m.GithubURL, &m.InstagramURL, &m.LinkedinURL,
		)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_team_member", username)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_team_member", err)
			return
		}

		render.JSON(w, r, m)
	}
}

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

// ListPosts serves published posts, newest first. Bodies are left out of the
// listing.
func ListPosts(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT slug, title, description, published_at
			FROM post
			WHERE published
			ORDER BY published_at DESC`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_posts", err)
			return
		}
		defer rows.Close()

		posts := []model.Post{}
		for rows.Next() {
			p := model.Post{}
			err = rows.Scan(&p.Slug, &p.Title, &p.Description, &p.PublishedAt)
			if err != nil {
				httpx.LogInternalError(w, "db.get_posts.scan", err)
				return
			}
			posts = append(posts, p)
		}

		render.JSON(w, r, posts)
	}
}

func GetPost(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")

		p := model.Post{Slug: slug}
		err := app.QueryRowContext(r.Context(), `
			SELECT title, description, body, published_at
			FROM post
			WHERE slug = ?
				AND published`,
			slug,
		).Scan(&p.Title, &p.Description, &p.Body, &p.PublishedAt)
		if errors.Is(err, sql.ErrNoRows) {
			httpx.LogNotFound(w, "get_post", slug)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.get_post", err)
			return
		}

		render.JSON(w, r, p)
	}
}

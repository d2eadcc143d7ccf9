package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gdsc-campus/club-portal/app"
	"github.com/gdsc-campus/club-portal/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	// public surface
	api.Post("/signup", Signup(app))
	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))
	api.Get("/events", ListEvents(app))
	api.Get("/team", ListTeam(app))
	api.Get("/team/{username}", GetTeamMember(app))
	api.Get("/blog", ListPosts(app))
	api.Get("/blog/{slug}", GetPost(app))

	// member surface
	api.Group(func(r chi.Router) {
		r.Use(middlewares.Authenticated(app.TokenSecret))

		r.Get("/forms", GetForms(app))
		r.Get("/forms/{id}/responses", GetOwnResponses(app))
		r.Post("/forms/{id}/submissions", SubmitForm(app))

		r.Get("/register", ListRegistrations(app))
		r.Post("/register", RegisterForEvents(app))

		r.Get("/user/profile", GetProfile(app))
		r.Post("/user/profile", UpsertProfile(app))
		r.Get("/user/role", GetUserRole(app))
	})

	// admin surface
	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Admin(app.TokenSecret))

		r.Post("/forms", CreateForm(app))
		r.Get("/forms/{id}/responses", GetAllResponses(app))

		r.Get("/rfid/lookup", LookupByPRN(app))
		r.Post("/rfid/assign", AssignRFIDTag(app))
	})

	return api
}

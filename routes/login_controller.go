package routes

import (
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/gofrs/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/gdsc-campus/club-portal/app"
	"github.com/gdsc-campus/club-portal/database"
	"github.com/gdsc-campus/club-portal/httpx"
	"github.com/gdsc-campus/club-portal/log"
)

// Login translates basic auth into a password grant on the bearer server.
func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		body := url.Values{
			"grant_type": {"password"},
			"username":   {user},
			"password":   {pass},
		}
		r.Body = io.NopCloser(strings.NewReader(body.Encode()))
		r.Header.Set("content-type", "application/x-www-form-urlencoded")
		r.Header.Set("content-length", strconv.Itoa(len(body.Encode())))
		app.UserCredentials(w, r)
	}
}

func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("authorization")
		match := regexp.MustCompile(`(?i)^refresh\s+(.*)`).FindStringSubmatch(auth)
		if len(match) == 0 {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}
		token := match[1]

		body := url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {token},
		}

		req, err := http.NewRequest("POST", "/", strings.NewReader(body.Encode()))
		if err != nil {
			httpx.LogStatus(w, http.StatusInternalServerError, log.DebugLevel, "refresh.new_request")
			return
		}
		req.Header.Set("content-type", "application/x-www-form-urlencoded")
		req.Header.Set("content-length", strconv.Itoa(len(body.Encode())))

		resp := httpx.NewResponseBuffer()
		app.UserCredentials(resp, req)
		resp.Flush(w)
	}
}

type signupBody struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	FullName      string `json:"full_name"`
	CurrentYear   string `json:"current_year"`
	CurrentBranch string `json:"current_branch"`
	PhoneNumber   string `json:"phone_number"`
	PRN           string `json:"prn"`
}

// Signup creates the account and its profile row together.
func Signup(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := signupBody{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil || body.Email == "" || body.Password == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			httpx.LogInternalError(w, "signup.hash", err)
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		userID := uuid.Must(uuid.NewV4()).String()
		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO user (id, email, password_hash)
			VALUES (?, ?, ?)`,
			userID,
			body.Email,
			string(hash),
		)
		if database.IsUniqueViolation(err) {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "signup.email_taken", "email already registered")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.signup.insert_user", err)
			return
		}

		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO user_role (user_id) VALUES (?)`,
			userID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.signup.insert_role", err)
			return
		}

		_, err = tx.ExecContext(r.Context(), `
			INSERT INTO profile (
				id, full_name, current_year, current_branch,
				phone_number, prn, updated_at
			)
			VALUES (?, ?, ?, ?, ?, NULLIF(?, ''), ?)`,
			userID,
			body.FullName,
			body.CurrentYear,
			body.CurrentBranch,
			body.PhoneNumber,
			body.PRN,
			time.Now(),
		)
		if database.IsUniqueViolation(err) {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "signup.prn_taken", "prn already registered")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, "db.signup.insert_profile", err)
			return
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.signup.commit", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"id": userID,
		})
	}
}

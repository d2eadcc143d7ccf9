package routes

import (
	"net/http"

	"github.com/gdsc-campus/club-portal/httpx"
	"github.com/gdsc-campus/club-portal/log"
	"github.com/gdsc-campus/club-portal/routes/middlewares"
)

// authUserID pulls the authenticated user id out of the token claims,
// answering 401 itself when the claim is missing.
func authUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middlewares.UserID(r)
	if !ok {
		httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "request.user_id")
	}
	return userID, ok
}

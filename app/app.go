package app

import (
	"database/sql"

	"github.com/go-chi/oauth"
	"github.com/gdsc-campus/club-portal/config"
)

// App bundles the shared handles every controller needs. It is passed
// explicitly instead of living in a package-level variable so handlers can be
// wired against a test database.
type App struct {
	*sql.DB
	*oauth.BearerServer
	config.Config
}

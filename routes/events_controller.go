package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/gofrs/uuid"

	"github.com/gdsc-campus/club-portal/app"
	"github.com/gdsc-campus/club-portal/database"
	"github.com/gdsc-campus/club-portal/httpx"
	"github.com/gdsc-campus/club-portal/log"
	"github.com/gdsc-campus/club-portal/model"
)

func ListEvents(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := app.QueryContext(r.Context(), `
			SELECT id, name FROM event`)
		if err != nil {
			httpx.LogInternalError(w, "db.get_events", err)
			return
		}
		defer rows.Close()

		events := []model.Event{}
		for rows.Next() {
			e := model.Event{}
			err = rows.Scan(&e.ID, &e.Name)
			if err != nil {
				httpx.LogInternalError(w, "db.get_events.scan", err)
				return
			}
			events = append(events, e)
		}

		render.JSON(w, r, events)
	}
}

type registerBody struct {
	EventIDs []string `json:"event_ids"`
}

// RegisterForEvents registers the caller for a batch of events. Any event the
// caller is already registered for fails the whole batch, reporting which ids
// were the problem.
func RegisterForEvents(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authUserID(w, r)
		if !ok {
			return
		}

		body := registerBody{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil || len(body.EventIDs) == 0 {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		placeholders := "?" + strings.Repeat(",?", len(body.EventIDs)-1)
		idArgs := make([]any, len(body.EventIDs))
		for i, id := range body.EventIDs {
			idArgs[i] = id
		}

		rows, err := app.QueryContext(r.Context(), `
			SELECT id, name FROM event
			WHERE id IN (`+placeholders+`)`,
			idArgs...,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.register.get_events", err)
			return
		}
		defer rows.Close()

		eventNames := map[string]string{}
		for rows.Next() {
			var id, name string
			err = rows.Scan(&id, &name)
			if err != nil {
				httpx.LogInternalError(w, "db.register.get_events.scan", err)
				return
			}
			eventNames[id] = name
		}
		for _, id := range body.EventIDs {
			if _, ok := eventNames[id]; !ok {
				httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "register.unknown_event", "unknown event: %s", id)
				return
			}
		}

		existing, err := app.QueryContext(r.Context(), `
			SELECT event_id FROM event_registration
			WHERE user_id = ?
				AND event_id IN (`+placeholders+`)`,
			append([]any{userID}, idArgs...)...,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.register.get_existing", err)
			return
		}
		defer existing.Close()

		alreadyRegistered := []string{}
		for existing.Next() {
			var id string
			err = existing.Scan(&id)
			if err != nil {
				httpx.LogInternalError(w, "db.register.get_existing.scan", err)
				return
			}
			alreadyRegistered = append(alreadyRegistered, id)
		}
		if len(alreadyRegistered) > 0 {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, map[string]any{
				"error":                   "already registered for some events",
				"alreadyRegisteredEvents": alreadyRegistered,
			})
			return
		}

		tx, err := app.BeginTx(r.Context(), nil)
		if err != nil {
			httpx.LogInternalError(w, "db.begin_tx", err)
			return
		}
		defer tx.Rollback()

		stmt, err := tx.PrepareContext(r.Context(), `
			INSERT INTO event_registration (id, user_id, event_id, event_name, created_at)
			VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			httpx.LogInternalError(w, "db.register.prepare", err)
			return
		}
		defer stmt.Close()

		registrations := make([]model.Registration, 0, len(body.EventIDs))
		now := time.Now()
		for _, eventID := range body.EventIDs {
			reg := model.Registration{
				ID:        uuid.Must(uuid.NewV4()).String(),
				EventID:   eventID,
				EventName: eventNames[eventID],
				CreatedAt: now,
			}
			_, err = stmt.ExecContext(r.Context(), reg.ID, userID, reg.EventID, reg.EventName, reg.CreatedAt)
			if database.IsUniqueViolation(err) {
				// raced a concurrent registration past the pre-check
				httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "register.conflict")
				return
			}
			if err != nil {
				httpx.LogInternalError(w, "db.register.insert", err)
				return
			}
			registrations = append(registrations, reg)
		}

		err = tx.Commit()
		if err != nil {
			httpx.LogInternalError(w, "db.register.commit", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"registrations": registrations,
		})
	}
}

// ListRegistrations serves the caller's registrations, newest first.
func ListRegistrations(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := authUserID(w, r)
		if !ok {
			return
		}

		rows, err := app.QueryContext(r.Context(), `
			SELECT id, event_id, event_name, created_at
			FROM event_registration
			WHERE user_id = ?
			ORDER BY created_at DESC`,
			userID,
		)
		if err != nil {
			httpx.LogInternalError(w, "db.get_registrations", err)
			return
		}
		defer rows.Close()

		registrations := []model.Registration{}
		for rows.Next() {
			reg := model.Registration{}
			err = rows.Scan(&reg.ID, &reg.EventID, &reg.EventName, &reg.CreatedAt)
			if err != nil {
				httpx.LogInternalError(w, "db.get_registrations.scan", err)
				return
			}
			registrations = append(registrations, reg)
		}

		render.JSON(w, r, registrations)
	}
}

package routes

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdsc-campus/club-portal/app"
	"github.com/gdsc-campus/club-portal/config"
	"github.com/gdsc-campus/club-portal/database"
	"github.com/gdsc-campus/club-portal/httpx"
	"github.com/gdsc-campus/club-portal/model"
)

type testServer struct {
	*httptest.Server
	db *sql.DB
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	cfg := config.Config{
		DBUrl:       filepath.Join(t.TempDir(), "test.sqlite"),
		TokenSecret: "test-secret",
		TokenTTL:    time.Hour,
	}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	handler := Wire(app.App{
		DB:           db,
		BearerServer: httpx.NewBearerServer(db, cfg),
		Config:       cfg,
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return testServer{srv, db}
}

func (ts testServer) request(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, ts.URL+path, reqBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("content-type", "application/json")
	}
	if token != "" {
		req.Header.Set("authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return resp, respBody
}

// signup registers a user and logs them in, returning user id and token.
func (ts testServer) signup(t *testing.T, email string, admin bool) (string, string) {
	t.Helper()

	resp, body := ts.request(t, "POST", "/api/signup", "", map[string]any{
		"email":     email,
		"password":  "hunter22",
		"full_name": "Test User",
		"prn":       "",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup: status %d: %s", resp.StatusCode, body)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("parse signup response: %v", err)
	}

	if admin {
		_, err := ts.db.Exec("UPDATE user_role SET role = 'admin' WHERE user_id = ?", created.ID)
		if err != nil {
			t.Fatalf("promote admin: %v", err)
		}
	}

	req, err := http.NewRequest("POST", ts.URL+"/api/login", nil)
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	req.SetBasicAuth(email, "hunter22")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d", resp2.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&tokenResp); err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if tokenResp.AccessToken == "" {
		t.Fatal("empty access token")
	}
	return created.ID, tokenResp.AccessToken
}

func (ts testServer) createForm(t *testing.T, adminToken string) (string, []string) {
	t.Helper()

	resp, body := ts.request(t, "POST", "/api/admin/forms", adminToken, map[string]any{
		"title":       "Induction 2026",
		"description": "Join the club",
		"questions": []map[string]any{
			{"question_text": "Why do you want to join?", "question_type": "textarea", "is_required": true},
			{"question_text": "Branch", "question_type": "select", "is_required": true, "options": []string{"CS", "IT", "ENTC"}},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create form: status %d: %s", resp.StatusCode, body)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("parse create form response: %v", err)
	}

	rows, err := ts.db.Query(
		"SELECT id FROM question WHERE form_id = ? ORDER BY order_number", created.ID)
	if err != nil {
		t.Fatalf("query questions: %v", err)
	}
	defer rows.Close()
	questionIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.Fatalf("scan question: %v", err)
		}
		questionIDs = append(questionIDs, id)
	}
	return created.ID, questionIDs
}

func TestFormLifecycle(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.signup(t, "admin@club.test", true)
	_, memberToken := ts.signup(t, "member@club.test", false)

	formID, questionIDs := ts.createForm(t, adminToken)

	// fresh form is not filled
	resp, body := ts.request(t, "GET", "/api/forms?id="+formID, memberToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get form: status %d: %s", resp.StatusCode, body)
	}
	var form model.Form
	if err := json.Unmarshal(body, &form); err != nil {
		t.Fatalf("parse form: %v", err)
	}
	if form.Filled {
		t.Fatal("form filled before any submission")
	}
	if len(form.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(form.Questions))
	}

	// a required question left empty never reaches the committer
	resp, body = ts.request(t, "POST", "/api/forms/"+formID+"/submissions", memberToken, map[string]any{
		"answers": map[string]string{questionIDs[0]: "To learn Go"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("incomplete submission: status %d: %s", resp.StatusCode, body)
	}

	// complete submission goes through
	resp, body = ts.request(t, "POST", "/api/forms/"+formID+"/submissions", memberToken, map[string]any{
		"answers": map[string]string{
			questionIDs[0]: "To learn Go",
			questionIDs[1]: "CS",
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submission: status %d: %s", resp.StatusCode, body)
	}

	// second submission is a conflict
	resp, _ = ts.request(t, "POST", "/api/forms/"+formID+"/submissions", memberToken, map[string]any{
		"answers": map[string]string{
			questionIDs[0]: "again",
			questionIDs[1]: "IT",
		},
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate submission: status %d", resp.StatusCode)
	}

	// fill status flipped
	resp, body = ts.request(t, "GET", "/api/forms?id="+formID, memberToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get form: status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &form); err != nil {
		t.Fatalf("parse form: %v", err)
	}
	if !form.Filled {
		t.Fatal("form not filled after submission")
	}

	// own responses carry the answers with their question text
	resp, body = ts.request(t, "GET", "/api/forms/"+formID+"/responses", memberToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get responses: status %d", resp.StatusCode)
	}
	var responses []model.Response
	if err := json.Unmarshal(body, &responses); err != nil {
		t.Fatalf("parse responses: %v", err)
	}
	if len(responses) != 1 || len(responses[0].Answers) != 2 {
		t.Fatalf("unexpected responses: %s", body)
	}
	if responses[0].Answers[0].QuestionText != "Why do you want to join?" {
		t.Fatalf("missing question text: %+v", responses[0].Answers[0])
	}

	// admin sees the full response set
	resp, body = ts.request(t, "GET", "/api/admin/forms/"+formID+"/responses", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get all responses: status %d", resp.StatusCode)
	}
	var all struct {
		Responses []model.Response `json:"responses"`
	}
	if err := json.Unmarshal(body, &all); err != nil {
		t.Fatalf("parse all responses: %v", err)
	}
	if len(all.Responses) != 1 {
		t.Fatalf("expected 1 response, got %d", len(all.Responses))
	}
}

func TestFormsRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.request(t, "GET", "/api/forms", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdminRoutesForbidden(t *testing.T) {
	ts := newTestServer(t)
	_, memberToken := ts.signup(t, "member@club.test", false)

	resp, _ := ts.request(t, "POST", "/api/admin/forms", memberToken, map[string]any{
		"title": "Nope",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestCreateFormRejectsUnknownQuestionType(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.signup(t, "admin@club.test", true)

	resp, _ := ts.request(t, "POST", "/api/admin/forms", adminToken, map[string]any{
		"title": "Bad",
		"questions": []map[string]any{
			{"question_text": "Pick", "question_type": "checkbox"},
		},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	// select without options is equally invalid
	resp, _ = ts.request(t, "POST", "/api/admin/forms", adminToken, map[string]any{
		"title": "Bad",
		"questions": []map[string]any{
			{"question_text": "Pick", "question_type": "select"},
		},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestEventRegistration(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.signup(t, "member@club.test", false)

	for _, ev := range [][2]string{{"e1", "DevFest"}, {"e2", "Study Jam"}} {
		_, err := ts.db.Exec("INSERT INTO event (id, name) VALUES (?, ?)", ev[0], ev[1])
		if err != nil {
			t.Fatalf("seed event: %v", err)
		}
	}

	resp, body := ts.request(t, "POST", "/api/register", token, map[string]any{
		"event_ids": []string{"e1"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: status %d: %s", resp.StatusCode, body)
	}

	// re-registering e1 fails the whole batch and names the conflict
	resp, body = ts.request(t, "POST", "/api/register", token, map[string]any{
		"event_ids": []string{"e1", "e2"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("conflicting register: status %d: %s", resp.StatusCode, body)
	}
	var conflict struct {
		AlreadyRegisteredEvents []string `json:"alreadyRegisteredEvents"`
	}
	if err := json.Unmarshal(body, &conflict); err != nil {
		t.Fatalf("parse conflict: %v", err)
	}
	if len(conflict.AlreadyRegisteredEvents) != 1 || conflict.AlreadyRegisteredEvents[0] != "e1" {
		t.Fatalf("expected [e1], got %v", conflict.AlreadyRegisteredEvents)
	}

	// e2 was not registered by the failed batch
	resp, body = ts.request(t, "GET", "/api/register", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list registrations: status %d", resp.StatusCode)
	}
	var registrations []model.Registration
	if err := json.Unmarshal(body, &registrations); err != nil {
		t.Fatalf("parse registrations: %v", err)
	}
	if len(registrations) != 1 || registrations[0].EventName != "DevFest" {
		t.Fatalf("unexpected registrations: %s", body)
	}

	resp, _ = ts.request(t, "POST", "/api/register", token, map[string]any{
		"event_ids": []string{"no-such-event"},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown event: status %d", resp.StatusCode)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.signup(t, "member@club.test", false)

	resp, body := ts.request(t, "POST", "/api/user/profile", token, map[string]any{
		"username":       "gopher",
		"full_name":      "Go Gopher",
		"current_year":   "TE",
		"current_branch": "CS",
		"github_url":     "https://github.com/gopher",
	})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("upsert profile: status %d: %s", resp.StatusCode, body)
	}

	resp, body = ts.request(t, "GET", "/api/user/profile", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get profile: status %d", resp.StatusCode)
	}
	var profile model.Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		t.Fatalf("parse profile: %v", err)
	}
	if profile.Username != "gopher" || profile.CurrentBranch != "CS" {
		t.Fatalf("unexpected profile: %s", body)
	}

	resp, body = ts.request(t, "GET", "/api/user/role", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get role: status %d", resp.StatusCode)
	}
	var role model.UserRole
	if err := json.Unmarshal(body, &role); err != nil {
		t.Fatalf("parse role: %v", err)
	}
	if role.Role != "member" {
		t.Fatalf("expected member role, got %q", role.Role)
	}
}

func TestTeamDirectory(t *testing.T) {
	ts := newTestServer(t)
	memberID, memberToken := ts.signup(t, "member@club.test", false)

	resp, body := ts.request(t, "POST", "/api/user/profile", memberToken, map[string]any{
		"username":  "gopher",
		"full_name": "Go Gopher",
	})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("upsert profile: status %d: %s", resp.StatusCode, body)
	}
	_, err := ts.db.Exec(
		"UPDATE profile SET is_member = TRUE, has_console_access = TRUE WHERE id = ?", memberID)
	if err != nil {
		t.Fatalf("promote member: %v", err)
	}

	resp, body = ts.request(t, "GET", "/api/team", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list team: status %d", resp.StatusCode)
	}
	var team []model.Profile
	if err := json.Unmarshal(body, &team); err != nil {
		t.Fatalf("parse team: %v", err)
	}
	if len(team) != 1 || team[0].Username != "gopher" {
		t.Fatalf("unexpected team: %s", body)
	}

	resp, _ = ts.request(t, "GET", "/api/team/gopher", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get member: status %d", resp.StatusCode)
	}
	resp, _ = ts.request(t, "GET", "/api/team/stranger", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown member: status %d", resp.StatusCode)
	}
}

func TestRFIDAssignment(t *testing.T) {
	ts := newTestServer(t)
	_, adminToken := ts.signup(t, "admin@club.test", true)
	_, memberToken := ts.signup(t, "member@club.test", false)
	_, otherToken := ts.signup(t, "other@club.test", false)

	for token, prn := range map[string]string{memberToken: "PRN001", otherToken: "PRN002"} {
		resp, body := ts.request(t, "POST", "/api/user/profile", token, map[string]any{
			"full_name": "Member " + prn,
			"prn":       prn,
		})
		if resp.StatusCode != http.StatusNoContent {
			t.Fatalf("upsert profile: status %d: %s", resp.StatusCode, body)
		}
	}

	resp, body := ts.request(t, "GET", "/api/admin/rfid/lookup?prn=PRN001", adminToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("lookup: status %d: %s", resp.StatusCode, body)
	}
	var lookup struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
	}
	if err := json.Unmarshal(body, &lookup); err != nil {
		t.Fatalf("parse lookup: %v", err)
	}
	if lookup.Email != "member@club.test" {
		t.Fatalf("unexpected lookup: %s", body)
	}

	resp, _ = ts.request(t, "GET", "/api/admin/rfid/lookup?prn=PRN999", adminToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown prn: status %d", resp.StatusCode)
	}

	resp, _ = ts.request(t, "POST", "/api/admin/rfid/assign", adminToken, map[string]any{
		"prn":      "PRN001",
		"rfid_tag": "04:A3:22:11",
	})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("assign: status %d", resp.StatusCode)
	}

	// a tag belongs to one member
	resp, _ = ts.request(t, "POST", "/api/admin/rfid/assign", adminToken, map[string]any{
		"prn":      "PRN002",
		"rfid_tag": "04:A3:22:11",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate tag: status %d", resp.StatusCode)
	}
}

func TestBlog(t *testing.T) {
	ts := newTestServer(t)

	_, err := ts.db.Exec(`
		INSERT INTO post (slug, title, description, body, published, published_at) VALUES
		('hello-go', 'Hello Go', 'First post', 'Welcome to the club blog.', TRUE, '2026-01-10 10:00:00'),
		('devfest-recap', 'DevFest Recap', 'What happened', 'It was great.', TRUE, '2026-02-01 10:00:00'),
		('draft', 'Draft', 'Unpublished', 'Not yet.', FALSE, NULL)`)
	if err != nil {
		t.Fatalf("seed posts: %v", err)
	}

	resp, body := ts.request(t, "GET", "/api/blog", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list posts: status %d", resp.StatusCode)
	}
	var posts []model.Post
	if err := json.Unmarshal(body, &posts); err != nil {
		t.Fatalf("parse posts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 published posts, got %d", len(posts))
	}
	if posts[0].Slug != "devfest-recap" {
		t.Fatalf("expected newest post first, got %s", posts[0].Slug)
	}

	resp, body = ts.request(t, "GET", "/api/blog/hello-go", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get post: status %d", resp.StatusCode)
	}
	var post model.Post
	if err := json.Unmarshal(body, &post); err != nil {
		t.Fatalf("parse post: %v", err)
	}
	if post.Body == "" {
		t.Fatal("post body missing")
	}

	resp, _ = ts.request(t, "GET", "/api/blog/draft", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("draft post should 404, got %d", resp.StatusCode)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	ts.signup(t, "member@club.test", false)

	resp, _ := ts.request(t, "POST", "/api/signup", "", map[string]any{
		"email":    "member@club.test",
		"password": "hunter22",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate email: status %d", resp.StatusCode)
	}
}

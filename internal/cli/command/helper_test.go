package command

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/yndnr/lingvo-go/internal/core/domain"
)

var (
	alice = domain.Identity{ID: 7, Username: "alice", Email: "alice@example.com"}
	root  = domain.Identity{ID: 1, Username: "root", Email: "root@example.com", IsAdmin: true, IsRoot: true}
)

var passwords = map[string]domain.Identity{
	"Secret1!": alice,
	"Admin1!!": root,
}

// apiServer is an in-memory stand-in for the translation API.
type apiServer struct {
	mu      sync.Mutex
	tokens  map[string]domain.Identity
	hits    map[string]int
	queries map[string]url.Values

	// rejectLists answers list requests with 401 while profile still works.
	rejectLists bool
	// logoutStatus, when set, is the status logout answers with.
	logoutStatus int
	// pendingPolls is how many payment lookups report "pending".
	pendingPolls int
	orders       []domain.OrderRequest
}

func newAPIServer(t *testing.T) (*apiServer, *httptest.Server) {
	t.Helper()
	s := &apiServer{
		tokens:  make(map[string]domain.Identity),
		hits:    make(map[string]int),
		queries: make(map[string]url.Values),
	}
	ts := httptest.NewServer(s.handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func (s *apiServer) Hits(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[name]
}

func (s *apiServer) Query(name string) url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[name]
}

func (s *apiServer) record(name string, r *http.Request) {
	s.mu.Lock()
	s.hits[name]++
	s.queries[name] = r.URL.Query()
	s.mu.Unlock()
}

func (s *apiServer) identity(r *http.Request) (domain.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[strings.TrimPrefix(r.Header.Get("Authorization"), "Token ")]
	return id, ok
}

func reply(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

var invalidToken = map[string]any{"detail": "Invalid token."}

func (s *apiServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/users/login/", func(w http.ResponseWriter, r *http.Request) {
		s.record("login", r)
		var body struct{ Username, Password string }
		json.NewDecoder(r.Body).Decode(&body)
		id, ok := passwords[body.Password]
		if !ok || id.Username != body.Username {
			reply(w, http.StatusUnauthorized, map[string]any{"Error": "Invalid credentials"})
			return
		}
		token := "tok-" + id.Username
		s.mu.Lock()
		s.tokens[token] = id
		s.mu.Unlock()
		reply(w, http.StatusOK, map[string]any{
			"token": token, "user_id": id.ID, "username": id.Username, "email": id.Email,
			"is_admin": id.IsAdmin, "is_root": id.IsRoot,
		})
	})
	mux.HandleFunc("/api/users/profile/", func(w http.ResponseWriter, r *http.Request) {
		s.record("profile", r)
		id, ok := s.identity(r)
		if !ok {
			reply(w, http.StatusUnauthorized, invalidToken)
			return
		}
		reply(w, http.StatusOK, id)
	})
	mux.HandleFunc("/api/users/logout/", func(w http.ResponseWriter, r *http.Request) {
		s.record("logout", r)
		if _, ok := s.identity(r); !ok {
			reply(w, http.StatusUnauthorized, invalidToken)
			return
		}
		s.mu.Lock()
		status := s.logoutStatus
		s.mu.Unlock()
		switch status {
		case 0:
		case http.StatusUnauthorized:
			reply(w, status, invalidToken)
			return
		default:
			reply(w, status, map[string]any{"detail": "boom"})
			return
		}
		s.mu.Lock()
		delete(s.tokens, strings.TrimPrefix(r.Header.Get("Authorization"), "Token "))
		s.mu.Unlock()
		reply(w, http.StatusOK, map[string]any{"message": "Logged out"})
	})
	mux.HandleFunc("/api/translations/my_translations/", func(w http.ResponseWriter, r *http.Request) {
		s.record("my_translations", r)
		id, ok := s.identity(r)
		s.mu.Lock()
		reject := s.rejectLists
		s.mu.Unlock()
		if !ok || reject {
			reply(w, http.StatusUnauthorized, invalidToken)
			return
		}
		reply(w, http.StatusOK, []map[string]any{
			{
				"id": 11, "user": id, "source_lang": "EN", "target_lang": "UK",
				"source_text": "good morning", "translated_text": "доброго ранку",
				"created_at": "2026-10-01T09:00:00Z",
				"payment": map[string]any{"id": 3, "user": id.ID, "amount": "2.00", "status": "success", "created_at": "2026-10-01T08:59:00Z"},
			},
		})
	})
	mux.HandleFunc("/api/translations/", func(w http.ResponseWriter, r *http.Request) {
		s.record("translation", r)
		id, ok := s.identity(r)
		if !ok {
			reply(w, http.StatusUnauthorized, invalidToken)
			return
		}
		if strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/translations/"), "/") != "11" {
			reply(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
			return
		}
		reply(w, http.StatusOK, map[string]any{
			"id": 11, "user": id, "payment": 3, "source_lang": "EN", "target_lang": "UK",
			"source_text": "good morning", "translated_text": "доброго ранку",
			"created_at": "2026-10-01T09:00:00Z",
		})
	})
	mux.HandleFunc("/api/stats/", func(w http.ResponseWriter, r *http.Request) {
		s.record("stats", r)
		id, ok := s.identity(r)
		if !ok {
			reply(w, http.StatusUnauthorized, invalidToken)
			return
		}
		if !id.IsAdmin {
			reply(w, http.StatusForbidden, map[string]any{"detail": "You do not have permission to perform this action."})
			return
		}
		reply(w, http.StatusOK, map[string]any{
			"daily_stats": map[string]any{
				"id": 1, "date": "2026-10-01", "total_translations": 4, "total_revenue": "8.00",
				"average_check": "2.00", "total_users": 3, "users_with_translations": 2,
			},
			"translations": []map[string]any{
				{"id": 11, "user": alice, "payment": 3, "source_lang": "EN", "target_lang": "UK", "source_text": "good morning"},
			},
		})
	})
	mux.HandleFunc("/api/payments/", func(w http.ResponseWriter, r *http.Request) {
		id, ok := s.identity(r)
		if !ok {
			s.record("payments", r)
			reply(w, http.StatusUnauthorized, invalidToken)
			return
		}
		if r.Method == http.MethodPost {
			s.record("create_payment", r)
			var req domain.OrderRequest
			json.NewDecoder(r.Body).Decode(&req)
			s.mu.Lock()
			s.orders = append(s.orders, req)
			s.mu.Unlock()
			reply(w, http.StatusCreated, map[string]any{
				"payment_id": 3, "order_reference": "ord-3", "amount": "2.00",
				"payment_url": "https://pay.example.com/ord-3",
				"source_text": req.SourceText, "source_lang": req.SourceLang, "target_lang": req.TargetLang,
			})
			return
		}

		s.record("get_payment", r)
		pid, err := strconv.Atoi(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/payments/"), "/"))
		if err != nil || pid != 3 {
			reply(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
			return
		}
		status := "success"
		s.mu.Lock()
		if s.pendingPolls > 0 {
			s.pendingPolls--
			status = "pending"
		}
		s.mu.Unlock()
		reply(w, http.StatusOK, map[string]any{
			"id": 3, "user": id.ID, "amount": "2.00", "status": status, "created_at": "2026-10-01T08:59:00Z",
		})
	})
	return mux
}

// cliEnv runs the CLI against one fake server and one credential store.
type cliEnv struct {
	t      *testing.T
	api    *apiServer
	url    string
	home   string
	store  string
	extras []string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	api, ts := newAPIServer(t)
	return &cliEnv{
		t:     t,
		api:   api,
		url:   ts.URL,
		home:  home,
		store: filepath.Join(home, "credentials"),
	}
}

// run executes one CLI invocation. Global flags in args must precede the
// command name.
func (e *cliEnv) run(stdin string, args ...string) (stdout, stderr string, err error) {
	e.t.Helper()
	var out, errOut bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.Reader = strings.NewReader(stdin)

	argv := append([]string{app.Name, "--base-url", e.url, "--store-dir", e.store}, e.extras...)
	argv = append(argv, args...)
	err = app.RunContext(context.Background(), argv)
	return out.String(), errOut.String(), err
}

// mustRun fails the test when the invocation errors.
func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, errOut, err := e.run("", args...)
	if err != nil {
		e.t.Fatalf("%v: error = %v\nstderr: %s", args, err, errOut)
	}
	return out
}

func (e *cliEnv) login(username, password string) {
	e.t.Helper()
	e.mustRun("login", "--username", username, "--password", password)
}

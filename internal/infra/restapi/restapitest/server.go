// Package restapitest provides an in-memory issue server for tests.
package restapitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/runoshun/git-issue/internal/domain"
)

// BasePath is where the API is mounted.
const BasePath = "/api/v1"

// Server is an in-memory implementation of the issue REST API.
// It is safe for concurrent use.
type Server struct {
	issues   map[string]domain.Issue
	comments map[string][]domain.Comment
	user     *domain.GitUser
	statuses []string
	requests map[string]int
	failWith int  // non-zero answers every request with this status
	emptyPut bool // PUT answers without a body
	nextID   int
	mu       sync.Mutex
}

// NewServer creates an empty server with the default status indicators.
func NewServer() *Server {
	return &Server{
		issues:   make(map[string]domain.Issue),
		comments: make(map[string][]domain.Comment),
		requests: make(map[string]int),
		statuses: []string{domain.StatusOpen, domain.StatusClosed, domain.StatusInProgress},
	}
}

// Start runs the server on a loopback port and returns it with the API base URL.
// The caller must Close the returned server.
func (s *Server) Start() (*httptest.Server, string) {
	ts := httptest.NewServer(s.Router())
	return ts, ts.URL + BasePath
}

// SetUser sets the user reported in issue envelopes.
func (s *Server) SetUser(u domain.GitUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
}

// FailWith makes every request answer with code. Zero restores normal service.
func (s *Server) FailWith(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = code
}

// OmitEditBody makes PUT answer with a status code only.
func (s *Server) OmitEditBody(omit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emptyPut = omit
}

// Seed stores issues as-is. IDs must be set.
func (s *Server) Seed(issues ...domain.Issue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, issue := range issues {
		s.issues[issue.ID] = issue.Clone()
		s.nextID++
	}
}

// Issue returns the stored issue with id.
func (s *Server) Issue(id string) (domain.Issue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	issue, ok := s.issues[id]
	return issue.Clone(), ok
}

// Requests returns how many requests matched the named route.
func (s *Server) Requests(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[route]
}

// Router returns the HTTP handler serving the API under BasePath.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix(BasePath).Subrouter()
	api.Use(s.count, s.fail)
	api.HandleFunc("/issues", s.listIssues).Methods(http.MethodGet).Name("list")
	api.HandleFunc("/issues", s.createIssue).Methods(http.MethodPost).Name("create")
	api.HandleFunc("/issues/{id}", s.getIssue).Methods(http.MethodGet).Name("get")
	api.HandleFunc("/issues/{id}", s.putIssue).Methods(http.MethodPut).Name("edit")
	api.HandleFunc("/issues/{id}/comments", s.listComments).Methods(http.MethodGet).Name("comments")
	api.HandleFunc("/issues/{id}/comments", s.addComment).Methods(http.MethodPost).Name("comment")
	api.HandleFunc("/status-indicators", s.listStatuses).Methods(http.MethodGet).Name("statuses")
	return r
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if route := mux.CurrentRoute(req); route != nil {
			s.mu.Lock()
			s.requests[route.GetName()]++
			s.mu.Unlock()
		}
		next.ServeHTTP(w, req)
	})
}

func (s *Server) fail(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.mu.Lock()
		code := s.failWith
		s.mu.Unlock()
		if code != 0 {
			http.Error(w, http.StatusText(code), code)
			return
		}
		next.ServeHTTP(w, req)
	})
}

type envelope struct {
	User    *domain.GitUser `json:"user"`
	Payload any             `json:"payload"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func intParam(req *http.Request, name string, def int) int {
	n, err := strconv.Atoi(req.URL.Query().Get(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// sortedLocked returns all issues in canonical order. Callers hold s.mu.
func (s *Server) sortedLocked() []domain.Issue {
	out := make([]domain.Issue, 0, len(s.issues))
	for _, issue := range s.issues {
		out = append(out, issue.Clone())
	}
	slices.SortFunc(out, domain.CompareIssues)
	return out
}

func (s *Server) listIssues(w http.ResponseWriter, req *http.Request) {
	page := intParam(req, "page", 1)
	limit := intParam(req, "limit", 10)

	s.mu.Lock()
	all := s.sortedLocked()
	user := s.user
	s.mu.Unlock()

	start := min((page-1)*limit, len(all))
	end := min(start+limit, len(all))
	writeJSON(w, http.StatusOK, envelope{
		User: user,
		Payload: map[string]any{
			"count":  len(all),
			"issues": all[start:end],
		},
	})
}

func (s *Server) getIssue(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	s.mu.Lock()
	issue, ok := s.issues[id]
	user := s.user
	s.mu.Unlock()

	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, envelope{User: user, Payload: issue})
}

// storeNewLocked assigns an ID and date and subscribes reporter and assignee.
// Callers hold s.mu.
func (s *Server) storeNewLocked(issue domain.Issue, id string) domain.Issue {
	if id == "" {
		s.nextID++
		id = fmt.Sprintf("ISSUE-%d", s.nextID)
	}
	issue.ID = id
	if issue.Date == "" {
		issue.Date = time.Now().UTC().Format(time.RFC3339)
	}
	if issue.Status == "" {
		issue.Status = domain.StatusOpen
	}
	if issue.Reporter != nil {
		issue.Subscribe(*issue.Reporter)
	}
	if issue.Assignee != nil {
		issue.Subscribe(*issue.Assignee)
	}
	s.issues[id] = issue.Clone()
	return issue
}

func (s *Server) createIssue(w http.ResponseWriter, req *http.Request) {
	var issue domain.Issue
	if err := json.NewDecoder(req.Body).Decode(&issue); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if issue.Reporter == nil && s.user != nil {
		u := *s.user
		issue.Reporter = &u
	}
	created := s.storeNewLocked(issue, "")
	user := s.user
	s.mu.Unlock()

	w.Header().Set("Location", "issues/"+created.ID)
	writeJSON(w, http.StatusCreated, envelope{User: user, Payload: created})
}

func (s *Server) putIssue(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	var issue domain.Issue
	if err := json.NewDecoder(req.Body).Decode(&issue); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	current, exists := s.issues[id]
	code := http.StatusOK
	if exists {
		if issue.ID != id {
			s.mu.Unlock()
			http.Error(w, "Given issue ID does not match url", http.StatusRequestedRangeNotSatisfiable)
			return
		}
		issue.Date = current.Date
		s.issues[id] = issue.Clone()
	} else {
		issue = s.storeNewLocked(issue, id)
		code = http.StatusCreated
	}
	user := s.user
	empty := s.emptyPut
	s.mu.Unlock()

	if empty {
		w.WriteHeader(code)
		return
	}
	writeJSON(w, code, envelope{User: user, Payload: issue})
}

func (s *Server) listComments(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	page := intParam(req, "page", 1)
	limit := intParam(req, "limit", 10)

	s.mu.Lock()
	_, ok := s.issues[id]
	all := slices.Clone(s.comments[id])
	s.mu.Unlock()

	if !ok {
		http.Error(w, fmt.Sprintf("Issue with id %s does not exist.", id), http.StatusBadRequest)
		return
	}
	start := min((page-1)*limit, len(all))
	end := min(start+limit, len(all))
	writeJSON(w, http.StatusOK, all[start:end])
}

func (s *Server) addComment(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]
	var body struct {
		Comment *string `json:"comment"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Comment == nil {
		http.Error(w, "No comment given.", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if _, ok := s.issues[id]; !ok {
		s.mu.Unlock()
		http.Error(w, fmt.Sprintf("Issue with id %s does not exist.", id), http.StatusBadRequest)
		return
	}
	c := domain.Comment{
		Comment: *body.Comment,
		Date:    time.Now().UTC().Format(time.RFC3339),
		UUID:    fmt.Sprintf("%s-c%d", id, len(s.comments[id])+1),
	}
	if s.user != nil {
		u := *s.user
		c.User = &u
	}
	s.comments[id] = append(s.comments[id], c)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) listStatuses(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	statuses := slices.Clone(s.statuses)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, statuses)
}

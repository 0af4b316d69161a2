// Package backendtest runs an in-process stand-in for the hosted backend:
// enough of the table API and the credential API for the portal's tests.
package backendtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	APIKey = "test-anon-key"

	objectMediaType = "application/vnd.pgrst.object+json"
)

type Row map[string]interface{}

type account struct {
	id       uuid.UUID
	email    string
	password string
	metadata map[string]interface{}
}

// Request is one call received by the server.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
}

type Server struct {
	*httptest.Server

	mu          sync.Mutex
	secret      []byte
	tokenTTL    time.Duration
	autoConfirm bool
	tables      map[string][]Row
	accounts    map[string]*account
	refresh     map[string]uuid.UUID
	revoked     map[string]bool
	failures    map[string]int
	requests    []Request
}

// NewServer starts a server. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		secret:      []byte("backendtest-secret"),
		tokenTTL:    time.Hour,
		autoConfirm: true,
		tables:      map[string][]Row{},
		accounts:    map[string]*account{},
		refresh:     map[string]uuid.UUID{},
		revoked:     map[string]bool{},
		failures:    map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// SetTokenTTL sets the lifetime of access tokens issued from now on.
func (s *Server) SetTokenTTL(ttl time.Duration) {
	s.mu.Lock()
	s.tokenTTL = ttl
	s.mu.Unlock()
}

// SetAutoConfirm controls whether sign-up returns a session.
func (s *Server) SetAutoConfirm(v bool) {
	s.mu.Lock()
	s.autoConfirm = v
	s.mu.Unlock()
}

// Fail makes every method call on table (for example "POST", "appointments")
// answer status until cleared with status 0. Auth endpoints are addressed
// as "auth/<endpoint>", for example "auth/token".
func (s *Server) Fail(method, table string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + table
	if status == 0 {
		delete(s.failures, key)
		return
	}
	s.failures[key] = status
}

// Seed appends rows to table. Values are normalized through JSON.
func (s *Server) Seed(table string, rows ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.tables[table] = append(s.tables[table], normalize(r))
	}
}

// Rows returns a copy of the rows of table.
func (s *Server) Rows(table string) []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Row, 0, len(s.tables[table]))
	for _, r := range s.tables[table] {
		out = append(out, copyRow(r))
	}
	return out
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// AddUser registers a credential directly and returns its id.
func (s *Server) AddUser(email, password string, metadata map[string]interface{}) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc := &account{id: uuid.New(), email: email, password: password, metadata: metadata}
	s.accounts[email] = acc
	return acc.id
}

func normalize(v interface{}) Row {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var r Row
	if err := json.Unmarshal(data, &r); err != nil {
		panic(err)
	}
	return r
}

func copyRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
	})

	if r.Header.Get("apikey") != APIKey {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid API key"})
		return
	}

	switch {
	case strings.HasPrefix(r.URL.Path, "/rest/v1/"):
		s.serveTable(w, r, strings.TrimPrefix(r.URL.Path, "/rest/v1/"))
	case strings.HasPrefix(r.URL.Path, "/auth/v1/"):
		s.serveAuth(w, r, strings.TrimPrefix(r.URL.Path, "/auth/v1/"))
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) serveTable(w http.ResponseWriter, r *http.Request, table string) {
	if status, ok := s.failures[r.Method+" "+table]; ok {
		writeJSON(w, status, map[string]string{
			"code":    "XX000",
			"message": fmt.Sprintf("injected failure on %s", table),
		})
		return
	}

	q := r.URL.Query()
	filters := map[string]string{}
	for k, v := range q {
		if k == "select" || k == "order" || len(v) == 0 {
			continue
		}
		filters[k] = strings.TrimPrefix(v[0], "eq.")
	}
	wantObject := r.Header.Get("Accept") == objectMediaType

	switch r.Method {
	case http.MethodGet:
		var rows []Row
		for _, row := range s.tables[table] {
			if matches(row, filters) {
				rows = append(rows, row)
			}
		}
		sortRows(rows, q.Get("order"))
		s.respondRows(w, http.StatusOK, rows, q.Get("select"), wantObject)

	case http.MethodPost:
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
			return
		}
		var incoming []Row
		if err := json.Unmarshal(body, &incoming); err != nil {
			var one Row
			if err := json.Unmarshal(body, &one); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"code": "PGRST102", "message": "Invalid body"})
				return
			}
			incoming = []Row{one}
		}
		stored := make([]Row, 0, len(incoming))
		for _, row := range incoming {
			row = applyDefaults(table, copyRow(row))
			s.tables[table] = append(s.tables[table], row)
			stored = append(stored, row)
		}
		if !strings.Contains(r.Header.Get("Prefer"), "return=representation") {
			w.WriteHeader(http.StatusCreated)
			return
		}
		s.respondRows(w, http.StatusCreated, stored, q.Get("select"), wantObject)

	case http.MethodPatch:
		var patch Row
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"code": "PGRST102", "message": "Invalid body"})
			return
		}
		for _, row := range s.tables[table] {
			if !matches(row, filters) {
				continue
			}
			for k, v := range patch {
				row[k] = v
			}
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) respondRows(w http.ResponseWriter, status int, rows []Row, sel string, wantObject bool) {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.project(row, sel))
	}
	if !wantObject {
		writeJSON(w, status, out)
		return
	}
	if len(out) != 1 {
		writeJSON(w, http.StatusNotAcceptable, map[string]string{
			"code":    "PGRST116",
			"message": "JSON object requested, multiple (or no) rows returned",
			"details": fmt.Sprintf("The result contains %d rows", len(out)),
		})
		return
	}
	writeJSON(w, status, out[0])
}

// project applies a select list such as "*,doctor:doctors(*)" or
// "specialty". An embed alias:table(*) resolves alias_id against table.id.
func (s *Server) project(row Row, sel string) Row {
	if sel == "" {
		sel = "*"
	}
	out := Row{}
	for _, term := range splitTerms(sel) {
		switch {
		case term == "*":
			for k, v := range row {
				out[k] = v
			}
		case strings.Contains(term, "("):
			head := term[:strings.Index(term, "(")]
			alias, target := head, head
			if i := strings.Index(head, ":"); i >= 0 {
				alias, target = head[:i], head[i+1:]
			}
			var embedded interface{}
			for _, candidate := range s.tables[target] {
				if fmt.Sprint(candidate["id"]) == fmt.Sprint(row[alias+"_id"]) {
					embedded = copyRow(candidate)
					break
				}
			}
			out[alias] = embedded
		default:
			out[term] = row[term]
		}
	}
	return out
}

func splitTerms(sel string) []string {
	var terms []string
	depth, start := 0, 0
	for i, c := range sel {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				terms = append(terms, strings.TrimSpace(sel[start:i]))
				start = i + 1
			}
		}
	}
	return append(terms, strings.TrimSpace(sel[start:]))
}

func matches(row Row, filters map[string]string) bool {
	for col, want := range filters {
		if fmt.Sprint(row[col]) != want {
			return false
		}
	}
	return true
}

func sortRows(rows []Row, order string) {
	if order == "" {
		return
	}
	terms := strings.Split(order, ",")
	sort.SliceStable(rows, func(i, j int) bool {
		for _, term := range terms {
			col, dir := term, "asc"
			if k := strings.LastIndex(term, "."); k >= 0 {
				col, dir = term[:k], term[k+1:]
			}
			a, b := fmt.Sprint(rows[i][col]), fmt.Sprint(rows[j][col])
			if a == b {
				continue
			}
			if dir == "desc" {
				return a > b
			}
			return a < b
		}
		return false
	})
}

func applyDefaults(table string, row Row) Row {
	if _, ok := row["id"]; !ok {
		row["id"] = uuid.NewString()
	}
	if _, ok := row["created_at"]; !ok {
		row["created_at"] = time.Now().UTC().Format(time.RFC3339Nano)
	}
	switch table {
	case "appointments":
		if _, ok := row["status"]; !ok {
			row["status"] = "En attente"
		}
	case "notifications":
		if _, ok := row["read"]; !ok {
			row["read"] = false
		}
		if _, ok := row["type"]; !ok {
			row["type"] = "info"
		}
	}
	return row
}

func (s *Server) serveAuth(w http.ResponseWriter, r *http.Request, endpoint string) {
	if status, ok := s.failures[r.Method+" auth/"+endpoint]; ok {
		writeJSON(w, status, map[string]string{
			"error": "server_error", "error_description": "injected failure on auth/" + endpoint,
		})
		return
	}
	switch {
	case endpoint == "health" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"name": "backendtest"})
	case endpoint == "signup" && r.Method == http.MethodPost:
		s.signup(w, r)
	case endpoint == "token" && r.Method == http.MethodPost:
		s.token(w, r)
	case endpoint == "logout" && r.Method == http.MethodPost:
		if tok := bearer(r); tok != "" {
			s.revoked[tok] = true
		}
		w.WriteHeader(http.StatusNoContent)
	case endpoint == "user" && r.Method == http.MethodGet:
		acc, ok := s.userFor(bearer(r))
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"code": 401, "error_code": "bad_jwt", "msg": "invalid JWT",
			})
			return
		}
		writeJSON(w, http.StatusOK, userJSON(acc))
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string                 `json:"email"`
		Password string                 `json:"password"`
		Data     map[string]interface{} `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"code": 400, "error_code": "validation_failed", "msg": "email is required",
		})
		return
	}
	if len(body.Password) < 6 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"code": 422, "error_code": "weak_password", "msg": "Password should be at least 6 characters.",
		})
		return
	}
	if _, exists := s.accounts[body.Email]; exists {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"code": 422, "error_code": "user_already_exists", "msg": "User already registered",
		})
		return
	}

	acc := &account{id: uuid.New(), email: body.Email, password: body.Password, metadata: body.Data}
	s.accounts[body.Email] = acc
	if !s.autoConfirm {
		writeJSON(w, http.StatusOK, userJSON(acc))
		return
	}
	writeJSON(w, http.StatusOK, s.issue(acc))
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email        string `json:"email"`
		Password     string `json:"password"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request", "error_description": err.Error()})
		return
	}

	switch r.URL.Query().Get("grant_type") {
	case "password":
		acc, ok := s.accounts[body.Email]
		if !ok || acc.password != body.Password {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid_grant", "error_description": "Invalid login credentials",
			})
			return
		}
		writeJSON(w, http.StatusOK, s.issue(acc))
	case "refresh_token":
		id, ok := s.refresh[body.RefreshToken]
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid_grant", "error_description": "Invalid Refresh Token",
			})
			return
		}
		delete(s.refresh, body.RefreshToken)
		for _, acc := range s.accounts {
			if acc.id == id {
				writeJSON(w, http.StatusOK, s.issue(acc))
				return
			}
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
	}
}

func (s *Server) issue(acc *account) map[string]interface{} {
	exp := time.Now().Add(s.tokenTTL)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   acc.id.String(),
		"email": acc.email,
		"role":  "authenticated",
		"exp":   exp.Unix(),
		"jti":   uuid.NewString(),
	}).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	refresh := uuid.NewString()
	s.refresh[refresh] = acc.id
	return map[string]interface{}{
		"access_token":  tok,
		"refresh_token": refresh,
		"token_type":    "bearer",
		"expires_in":    int64(s.tokenTTL.Seconds()),
		"expires_at":    exp.Unix(),
		"user":          userJSON(acc),
	}
}

func (s *Server) userFor(tok string) (*account, bool) {
	if tok == "" || s.revoked[tok] {
		return nil, false
	}
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})); err != nil {
		return nil, false
	}
	sub, _ := claims["sub"].(string)
	for _, acc := range s.accounts {
		if acc.id.String() == sub {
			return acc, true
		}
	}
	return nil, false
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	tok := strings.TrimPrefix(h, "Bearer ")
	if tok == APIKey {
		return ""
	}
	return tok
}

func userJSON(acc *account) map[string]interface{} {
	return map[string]interface{}{
		"id":            acc.id.String(),
		"email":         acc.email,
		"aud":           "authenticated",
		"user_metadata": acc.metadata,
	}
}

// Package testutil provides testing utilities for the cloudplaya client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
)

// Paths served by MockCirrus.
const (
	PlayerPath = "/gp/dmusic/mp3/player"
	SignInPath = "/ap/signin"
	APIPath    = "/cirrus/"
)

// Session tokens embedded in the mock player page.
const (
	CustomerID = "A2CUSTOMER"
	ADPToken   = "{enc:adp-token}"
	DeviceID   = "did-1234"
	DeviceType = "A16ZV8BU3SN1N3"
)

// APIRequest is one recorded call to the API endpoint.
type APIRequest struct {
	Operation string
	Form      url.Values
	Header    http.Header
	Host      string
}

// OperationHandler answers one API operation with a status and a JSON body.
type OperationHandler func(form url.Values) (status int, body any)

// SearchPage is one scripted searchLibrary page.
type SearchPage struct {
	Items     []map[string]any
	NextToken string
}

// MockCirrus is a mock of the web login pages and the Cirrus API.
type MockCirrus struct {
	server *httptest.Server
	mu     sync.RWMutex

	// Username and Password are the accepted sign-in credentials.
	Username string
	Password string

	// PlayerPage overrides the authenticated player page body.
	PlayerPage string

	operations  map[string]OperationHandler
	searchPages []SearchPage
	searchCalls int

	requests     []APIRequest
	signInFields url.Values
}

// NewMockCirrus starts a mock server accepting user@example.com / secret.
func NewMockCirrus() *MockCirrus {
	mock := &MockCirrus{
		Username:   "user@example.com",
		Password:   "secret",
		operations: make(map[string]OperationHandler),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(PlayerPath, mock.playerHandler)
	mux.HandleFunc(SignInPath, mock.signInHandler)
	mux.HandleFunc(APIPath, mock.apiHandler)
	mock.server = httptest.NewServer(mux)

	return mock
}

// URL returns the mock server URL.
func (m *MockCirrus) URL() string {
	return m.server.URL
}

// PlayerURL returns the player page URL.
func (m *MockCirrus) PlayerURL() string {
	return m.server.URL + PlayerPath
}

// APIURL returns the API endpoint URL.
func (m *MockCirrus) APIURL() string {
	return m.server.URL + APIPath
}

// Close shuts down the mock server.
func (m *MockCirrus) Close() {
	m.server.Close()
}

// SetPlayerPage replaces the authenticated player page body.
func (m *MockCirrus) SetPlayerPage(body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlayerPage = body
}

// SetOperation installs a handler for an API operation.
func (m *MockCirrus) SetOperation(operation string, handler OperationHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[operation] = handler
}

// SetSearchPages scripts searchLibrary: the n-th call gets the n-th page.
func (m *MockCirrus) SetSearchPages(pages []SearchPage) {
	m.mu.Lock()
	m.searchPages = pages
	m.searchCalls = 0
	m.mu.Unlock()

	m.SetOperation("searchLibrary", func(form url.Values) (int, any) {
		m.mu.Lock()
		call := m.searchCalls
		m.searchCalls++
		m.mu.Unlock()

		if call >= len(pages) {
			return http.StatusBadRequest, ErrorBody("unexpected page request", "InvalidToken")
		}
		page := pages[call]
		return http.StatusOK, SearchLibraryBody(page.Items, page.NextToken)
	})
}

// Requests returns the recorded API calls.
func (m *MockCirrus) Requests() []APIRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]APIRequest(nil), m.requests...)
}

// RequestCount returns the number of API calls.
func (m *MockCirrus) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

// SignInFields returns the fields of the last sign-in form submission.
func (m *MockCirrus) SignInFields() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.signInFields
}

// Reset clears recorded calls.
func (m *MockCirrus) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.searchCalls = 0
	m.signInFields = nil
}

// DefaultPlayerPage is an authenticated player page with the four tokens
// scattered among unrelated script lines.
func DefaultPlayerPage() string {
	return strings.Join([]string{
		"<html><head><script>",
		"var amznMusic = amznMusic || {};",
		fmt.Sprintf("  amznMusic.did = '%s';", DeviceID),
		"  amznMusic.appConfig = {};",
		fmt.Sprintf("  amznMusic.customerId = '%s';", CustomerID),
		"  amznMusic.marketplaceId = 'ATVPDKIKX0DER';",
		fmt.Sprintf(`  amznMusic.dtid = "%s";`, DeviceType),
		fmt.Sprintf("  amznMusic.tid = '%s';", ADPToken),
		"</script></head><body>player</body></html>",
	}, "\n")
}

func (m *MockCirrus) playerHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie("at-main"); err != nil {
		http.Redirect(w, r, SignInPath+"?openid.return_to="+url.QueryEscape(PlayerPath), http.StatusFound)
		return
	}

	m.mu.RLock()
	page := m.PlayerPage
	m.mu.RUnlock()
	if page == "" {
		page = DefaultPlayerPage()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, page)
}

func (m *MockCirrus) signInHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		m.mu.Lock()
		m.signInFields = r.PostForm
		user, pass := m.Username, m.Password
		m.mu.Unlock()

		if r.PostForm.Get("email") == user && r.PostForm.Get("password") == pass &&
			r.PostForm.Get("appActionToken") == "tok123" {
			http.SetCookie(w, &http.Cookie{Name: "at-main", Value: "authed", Path: "/"})
			http.Redirect(w, r, PlayerPath, http.StatusFound)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{Name: "session-id", Value: "123-456", Path: "/"})
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, `<html><body>
<form name="signIn" method="POST" action="`+SignInPath+`">
  <input type="hidden" name="appActionToken" value="tok123">
  <input type="email" name="email" value="">
  <input type="password" name="password">
  <input type="radio" name="create" value="0" checked>
  <input type="radio" name="create" value="1">
  <input type="submit" name="signInSubmit" value="Sign in">
</form>
</body></html>`)
}

func (m *MockCirrus) apiHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	operation := r.PostForm.Get("Operation")

	m.mu.Lock()
	m.requests = append(m.requests, APIRequest{
		Operation: operation,
		Form:      r.PostForm,
		Header:    r.Header.Clone(),
		Host:      r.Host,
	})
	handler, ok := m.operations[operation]
	m.mu.Unlock()

	status, body := http.StatusBadRequest, any(ErrorBody("unknown operation "+operation, "InvalidOperation"))
	if ok {
		status, body = handler(r.PostForm)
	}

	WriteJSON(w, status, body)
}

// WriteJSON writes body as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// ErrorBody builds a Cirrus error envelope.
func ErrorBody(message, code string) map[string]any {
	return map[string]any{
		"Error": map[string]any{
			"Message": message,
			"Code":    code,
		},
	}
}

// Envelope wraps result in <op>Response / <op>Result.
func Envelope(operation string, result map[string]any) map[string]any {
	return map[string]any{
		operation + "Response": map[string]any{
			operation + "Result": result,
		},
	}
}

// SearchLibraryBody builds a searchLibrary response page.
func SearchLibraryBody(items []map[string]any, nextToken string) map[string]any {
	list := make([]any, len(items))
	for i, item := range items {
		list[i] = item
	}
	return Envelope("searchLibrary", map[string]any{
		"searchReturnItemList": list,
		"nextResultsToken":     nextToken,
	})
}

// Items builds n song-like items whose objectId is prefix-i.
func Items(prefix string, n int) []map[string]any {
	items := make([]map[string]any, n)
	for i := range items {
		items[i] = map[string]any{
			"objectId":   fmt.Sprintf("%s-%d", prefix, i),
			"title":      fmt.Sprintf("Title %s %d", prefix, i),
			"artistName": "Artist",
			"albumName":  "Album",
			"trackNum":   fmt.Sprint(i + 1),
		}
	}
	return items
}

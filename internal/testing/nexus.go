package testing

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const (
	// TestUser and TestPassword are the credentials FakeNexus accepts
	TestUser     = "deployer"
	TestPassword = "s3cret"

	// DeleteOKBody is a successful coreui_Component.deleteFolder reply
	DeleteOKBody = `{"tid":1,"action":"coreui_Component","method":"deleteFolder","result":{"success":true},"type":"rpc"}`
)

// FakeNexus serves the three endpoints a publish touches and records
// every request in arrival order.
type FakeNexus struct {
	*httptest.Server

	t *testing.T

	mu         sync.Mutex
	events     []string
	bodies     map[string]string
	types      map[string]string
	browse     []int
	browseIdx  int
	deleteCode int
	deleteBody string
	failPutAt  int
	putCount   int
}

// NewFakeNexus starts a server whose browse endpoint answers with the
// given statuses in order, repeating the last one. With none it answers
// 404 straight away.
func NewFakeNexus(t *testing.T, browse ...int) *FakeNexus {
	t.Helper()
	f := &FakeNexus{
		t:          t,
		bodies:     map[string]string{},
		types:      map[string]string{},
		browse:     browse,
		deleteCode: http.StatusOK,
		deleteBody: DeleteOKBody,
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// SetDeleteResponse overrides the extdirect reply
func (f *FakeNexus) SetDeleteResponse(code int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCode = code
	f.deleteBody = body
}

// FailPutAt makes the n-th upload (1-based) answer 500
func (f *FakeNexus) FailPutAt(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPutAt = n
}

func (f *FakeNexus) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, pass, ok := r.BasicAuth()
	if !ok || user != TestUser || pass != TestPassword {
		f.t.Errorf("missing basic auth on %s %s", r.Method, r.URL.Path)
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/service/extdirect":
		_, _ = io.Copy(io.Discard, r.Body)
		f.events = append(f.events, "DELETE")
		w.WriteHeader(f.deleteCode)
		_, _ = io.WriteString(w, f.deleteBody)

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/service/rest/repository/browse/"):
		f.events = append(f.events, "BROWSE "+r.URL.Path)
		code := http.StatusNotFound
		if len(f.browse) > 0 {
			i := f.browseIdx
			if i >= len(f.browse) {
				i = len(f.browse) - 1
			}
			code = f.browse[i]
			f.browseIdx++
		}
		w.WriteHeader(code)

	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/repository/"):
		f.putCount++
		f.events = append(f.events, "PUT "+r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		f.bodies[r.URL.Path] = string(data)
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		if f.failPutAt > 0 && f.putCount == f.failPutAt {
			http.Error(w, "disk quota exceeded", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)

	default:
		f.t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusTeapot)
	}
}

// Events returns a copy of the recorded requests
func (f *FakeNexus) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.events...)
}

// Body returns what was uploaded to path
func (f *FakeNexus) Body(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[path]
}

// ContentType returns the Content-Type sent with the upload to path
func (f *FakeNexus) ContentType(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.types[path]
}

// Count reports how many recorded requests start with prefix
func (f *FakeNexus) Count(prefix string) int {
	n := 0
	for _, e := range f.Events() {
		if strings.HasPrefix(e, prefix) {
			n++
		}
	}
	return n
}

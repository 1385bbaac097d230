package mocks

import (
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/dl-alexandre/nxraw/internal/nexus"
)

// PutCall is one recorded upload
type PutCall struct {
	Repo        string
	Key         string
	Body        string
	Size        int64
	ContentType string
}

// MockRemote is a scripted stand-in for the Nexus client. Nil funcs
// fall back to an empty delete reply, an immediate 404 and an accepted PUT.
type MockRemote struct {
	DeleteFunc func(ctx context.Context, repo, folder string) (*nexus.ExtDirectResponse, error)
	BrowseFunc func(ctx context.Context, repo, folder string) (int, error)
	PutFunc    func(ctx context.Context, call PutCall) error

	mu      sync.Mutex
	deletes int
	browses int
	puts    []PutCall
}

// NewMockRemote creates a mock with default behavior
func NewMockRemote() *MockRemote {
	return &MockRemote{}
}

func (m *MockRemote) DeleteFolder(ctx context.Context, repo, folder string) (*nexus.ExtDirectResponse, error) {
	m.mu.Lock()
	m.deletes++
	m.mu.Unlock()
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, repo, folder)
	}
	return &nexus.ExtDirectResponse{Type: "rpc"}, nil
}

func (m *MockRemote) BrowseFolder(ctx context.Context, repo, folder string) (int, error) {
	m.mu.Lock()
	m.browses++
	m.mu.Unlock()
	if m.BrowseFunc != nil {
		return m.BrowseFunc(ctx, repo, folder)
	}
	return http.StatusNotFound, nil
}

func (m *MockRemote) PutObject(ctx context.Context, repo, key string, body io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	call := PutCall{Repo: repo, Key: key, Body: string(data), Size: size, ContentType: contentType}
	m.mu.Lock()
	m.puts = append(m.puts, call)
	m.mu.Unlock()
	if m.PutFunc != nil {
		return m.PutFunc(ctx, call)
	}
	return nil
}

func (m *MockRemote) ObjectURL(repo, key string) string {
	return "mock://" + repo + "/" + key
}

// Deletes returns the number of DeleteFolder calls
func (m *MockRemote) Deletes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deletes
}

// Browses returns the number of BrowseFolder calls
func (m *MockRemote) Browses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.browses
}

// Puts returns a copy of the recorded uploads
func (m *MockRemote) Puts() []PutCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PutCall(nil), m.puts...)
}

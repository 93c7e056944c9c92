package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "token-1"

// fakeAPI is an in-memory stand-in for the server's JSON contract.
type fakeAPI struct {
	mu       sync.Mutex
	notes    []Note
	seq      int
	requests int
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		assert.NoError(t, json.NewEncoder(w).Encode(v))
	}
	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+testToken {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
				return
			}
			next(w, r)
		}
	}
	user := User{ID: "u-1", Name: "Ada", Email: "ada@example.com"}

	mux.HandleFunc("POST /api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["email"] == "taken@example.com" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Registration failed"})
			return
		}
		writeJSON(w, http.StatusCreated, authResponse{Message: "User created successfully", User: user, Token: testToken})
	})
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "Password123" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, authResponse{Message: "Login successful", User: user, Token: testToken})
	})
	mux.HandleFunc("GET /api/auth/profile", authed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
	}))
	mux.HandleFunc("GET /api/notes", authed(func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		list := make([]Note, len(f.notes))
		for i := range f.notes {
			list[i] = f.notes[len(f.notes)-1-i]
		}
		writeJSON(w, http.StatusOK, map[string]any{"notes": list})
	}))
	mux.HandleFunc("POST /api/notes", authed(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["title"] == "" || body["content"] == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Title and content are required"})
			return
		}
		f.mu.Lock()
		f.seq++
		n := Note{ID: fmt.Sprintf("n-%d", f.seq), Title: body["title"], Content: body["content"], UserID: user.ID, CreatedAt: time.Now().UTC()}
		f.notes = append(f.notes, n)
		f.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Note created successfully", "note": n})
	}))
	mux.HandleFunc("DELETE /api/notes/{id}", authed(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, n := range f.notes {
			if n.ID == r.PathValue("id") {
				f.notes = append(f.notes[:i], f.notes[i+1:]...)
				writeJSON(w, http.StatusOK, map[string]string{"message": "Note deleted successfully"})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Note not found"})
	}))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests++
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	})
}

func (f *fakeAPI) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func newTestClient(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()

	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	return New(srv.URL+"/api/", WithHTTPClient(srv.Client())), api
}

func TestSignUpAndLogin(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	s, err := c.SignUp(ctx, "Ada", "ada@example.com", "Password123")
	require.NoError(t, err)
	assert.True(t, s.Active())
	assert.Equal(t, "ada@example.com", s.User().Email)

	_, err = c.SignUp(ctx, "Ada", "taken@example.com", "Password123")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Registration failed", apiErr.Message)

	_, err = c.Login(ctx, "ada@example.com", "wrong")
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	s, err = c.Login(ctx, "ada@example.com", "Password123")
	require.NoError(t, err)

	u, err := c.Profile(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
}

func TestNotesRoundTrip(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	s, err := c.Login(ctx, "ada@example.com", "Password123")
	require.NoError(t, err)

	list, err := c.ListNotes(ctx, s)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	first, err := c.CreateNote(ctx, s, "one", "1")
	require.NoError(t, err)
	second, err := c.CreateNote(ctx, s, "two", "2")
	require.NoError(t, err)

	list, err = c.ListNotes(ctx, s)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	_, err = c.CreateNote(ctx, s, "", "x")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Title and content are required", apiErr.Message)

	require.NoError(t, c.DeleteNote(ctx, s, first.ID))
	err = c.DeleteNote(ctx, s, first.ID)
	assert.True(t, IsStatus(err, http.StatusNotFound))
}

func TestLogoutInvalidatesSessionWithoutIO(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	s, err := c.Login(ctx, "ada@example.com", "Password123")
	require.NoError(t, err)
	before := api.requestCount()

	c.Logout(s)
	assert.False(t, s.Active())

	_, err = c.ListNotes(ctx, s)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = c.CreateNote(ctx, s, "a", "b")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.ErrorIs(t, c.DeleteNote(ctx, s, "n-1"), ErrNoSession)
	_, err = c.Profile(ctx, s)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = c.ListNotes(ctx, nil)
	assert.ErrorIs(t, err, ErrNoSession)

	assert.Equal(t, before, api.requestCount())
}

func TestErrorFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{name: "server message", status: http.StatusNotFound, body: `{"error":"Note not found"}`, message: "Note not found"},
		{name: "json without message", status: http.StatusInternalServerError, body: `{}`, message: msgRequestFailed},
		{name: "not json", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, message: msgNetworkError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(srv.URL)
			_, err := c.Login(context.Background(), "a@example.com", "x")

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.True(t, strings.Contains(apiErr.Error(), tt.message))
		})
	}
}

func TestNotebook(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	s, err := c.Login(ctx, "ada@example.com", "Password123")
	require.NoError(t, err)

	_, err = c.CreateNote(ctx, s, "existing", "x")
	require.NoError(t, err)

	nb := NewNotebook(c, s)
	require.NoError(t, nb.Refresh(ctx))
	require.Equal(t, 1, nb.Len())

	created, err := nb.Create(ctx, "fresh", "y")
	require.NoError(t, err)
	assert.Equal(t, created.ID, nb.Notes()[0].ID, "new notes go first")

	require.NoError(t, nb.Delete(ctx, created.ID))
	assert.Equal(t, 1, nb.Len())

	err = nb.Delete(ctx, "missing")
	assert.True(t, IsStatus(err, http.StatusNotFound))
	assert.Equal(t, 1, nb.Len(), "failed delete leaves the local list alone")

	snapshot := nb.Notes()
	snapshot[0].Title = "mutated"
	assert.Equal(t, "existing", nb.Notes()[0].Title)
}

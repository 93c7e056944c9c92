// Package client is a Go client for the NoteKeeper HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// User mirrors the server's user representation.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Note mirrors the server's note representation.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type authResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
	Token   string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client talks to one NoteKeeper server. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:8080/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SignUp registers an account and opens a session for it.
func (c *Client) SignUp(ctx context.Context, name, email, password string) (*Session, error) {
	var resp authResponse
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/signup", "", body, &resp); err != nil {
		return nil, err
	}
	return newSession(resp.Token, resp.User), nil
}

// Login opens a session for an existing account.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &resp); err != nil {
		return nil, err
	}
	return newSession(resp.Token, resp.User), nil
}

// Logout invalidates s locally. Tokens are stateless, so the server is not
// contacted.
func (c *Client) Logout(s *Session) {
	if s != nil {
		s.invalidate()
	}
}

// Profile returns the account behind s.
func (c *Client) Profile(ctx context.Context, s *Session) (*User, error) {
	token, err := s.bearer()
	if err != nil {
		return nil, err
	}
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/profile", token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ListNotes returns the caller's notes, newest first.
func (c *Client) ListNotes(ctx context.Context, s *Session) ([]Note, error) {
	token, err := s.bearer()
	if err != nil {
		return nil, err
	}
	var resp struct {
		Notes []Note `json:"notes"`
	}
	if err := c.do(ctx, http.MethodGet, "/notes", token, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Notes == nil {
		resp.Notes = []Note{}
	}
	return resp.Notes, nil
}

// CreateNote stores a note owned by the session's user.
func (c *Client) CreateNote(ctx context.Context, s *Session, title, content string) (*Note, error) {
	token, err := s.bearer()
	if err != nil {
		return nil, err
	}
	var resp struct {
		Note Note `json:"note"`
	}
	body := map[string]string{"title": title, "content": content}
	if err := c.do(ctx, http.MethodPost, "/notes", token, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Note, nil
}

// DeleteNote removes one of the caller's notes.
func (c *Client) DeleteNote(ctx context.Context, s *Session, id string) error {
	token, err := s.bearer()
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, "/notes/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// decodeAPIError prefers the server's error field. A body that is not JSON
// reads as a network problem; JSON without a message as a generic failure.
func decodeAPIError(resp *http.Response) error {
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		return &APIError{Status: resp.StatusCode, Message: msgNetworkError}
	}
	if e.Error == "" {
		e.Error = msgRequestFailed
	}
	return &APIError{Status: resp.StatusCode, Message: e.Error}
}

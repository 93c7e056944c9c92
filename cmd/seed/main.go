// Command seed fills a NoteKeeper account with fake notes through the
// public API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"
	"unicode/utf8"

	"note-keeper/internal/config"
	"note-keeper/internal/logger"
	"note-keeper/pkg/client"

	"github.com/brianvoe/gofakeit/v6"
)

// Server-side limits, in characters.
const (
	maxTitle   = 100
	maxContent = 1000
)

var (
	baseURL = flag.String("url", env("API_BASE_URL", "http://localhost:8080/api"), "API base URL")
	name    = flag.String("name", env("SEED_NAME", "Demo User"), "Account name")
	email   = flag.String("email", env("EMAIL", "demo@example.com"), "Account e-mail")
	pass    = flag.String("pass", env("PASSWORD", "Password123"), "Account password")
	nNotes  = flag.Int("n", envInt("COUNT", 50), "How many notes to create")
	seed    = flag.Int64("seed", 0, "Faker seed; 0 picks one from the clock")
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return def
}

func main() {
	flag.Parse()

	log := logger.New(config.Config{LogLevel: "info", LogFormat: "pretty"}, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	faker := gofakeit.New(*seed)
	c := client.New(*baseURL)

	log.Info("seeding", "email", *email, "notes", *nNotes, "url", *baseURL, "seed", *seed)

	s, err := openSession(ctx, c, *name, *email, *pass)
	if err != nil {
		log.Error("open session", "error", err)
		os.Exit(1)
	}
	defer c.Logout(s)

	created, err := createNotes(ctx, c, s, faker, *nNotes, func(done int) {
		if done%10 == 0 || done == *nNotes {
			log.Info("progress", "created", done, "total", *nNotes)
		}
	})
	if err != nil {
		log.Error("create notes", "created", created, "error", err)
		os.Exit(1)
	}

	log.Info("done", "created", created)
}

// openSession signs up, falling back to login when the account exists.
func openSession(ctx context.Context, c *client.Client, name, email, pass string) (*client.Session, error) {
	s, err := c.SignUp(ctx, name, email, pass)
	if err == nil {
		return s, nil
	}
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		return nil, err
	}
	return c.Login(ctx, email, pass)
}

func createNotes(ctx context.Context, c *client.Client, s *client.Session, f *gofakeit.Faker, total int, progress func(int)) (int, error) {
	for i := 1; i <= total; i++ {
		title, content := fakeNote(f)
		if _, err := c.CreateNote(ctx, s, title, content); err != nil {
			return i - 1, fmt.Errorf("note %d: %w", i, err)
		}
		progress(i)
	}
	return total, nil
}

// fakeNote returns a title and body that always pass server validation.
func fakeNote(f *gofakeit.Faker) (string, string) {
	title := truncate(f.Sentence(f.Number(2, 6)), maxTitle)
	content := truncate(f.Paragraph(1, f.Number(1, 4), f.Number(8, 20), " "), maxContent)
	return title, content
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

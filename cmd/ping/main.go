// Command ping probes the local /healthz endpoint. Intended for Docker
// HEALTHCHECK:
//
//	HEALTHCHECK CMD ["/ping"]
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"note-keeper/internal/config"
	"note-keeper/internal/logger"
)

const (
	defaultPort          = 8080
	healthEndpoint       = "/healthz"
	expectedHealthStatus = "ok"
	requestTimeout       = 2 * time.Second

	// exit codes
	codeRequestFailed     = 2
	codeBadHTTPStatus     = 3
	codeDecodeError       = 4
	codeReportedUnhealthy = 5
)

type healthResp struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func main() {
	port := defaultPort
	cfg, err := config.Load()
	if err == nil {
		port = cfg.AppPort
	} else {
		// the probe must work even where the server config is incomplete
		cfg = config.Config{LogLevel: "info", LogFormat: "text"}
	}
	log := logger.New(cfg, os.Stderr)

	url := fmt.Sprintf("http://localhost:%d%s", port, healthEndpoint)
	client := &http.Client{Timeout: requestTimeout}

	resp, err := client.Get(url)
	if err != nil {
		log.Error("health request failed", "url", url, "error", err)
		os.Exit(codeRequestFailed)
	}
	defer func() { _ = resp.Body.Close() }()

	var h healthResp
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil && !errors.Is(err, io.EOF) {
		log.Error("health response decode", "error", err)
		os.Exit(codeDecodeError)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("unexpected HTTP status", "status", resp.StatusCode, "reason", h.Error)
		os.Exit(codeBadHTTPStatus)
	}
	if h.Status != "" && h.Status != expectedHealthStatus {
		log.Error("service reported unhealthy", "status", h.Status)
		os.Exit(codeReportedUnhealthy)
	}

	log.Info("service healthy", "port", port)
}

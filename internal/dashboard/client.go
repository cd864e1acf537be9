// v0
// internal/dashboard/client.go
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"nrgchamp/noc-dashboard/internal/telemetry"
)

// StatusError is returned for any non-200 response from the API.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api returned %d", e.Code)
	}
	return fmt.Sprintf("api returned %d: %s", e.Code, e.Message)
}

// IsAuth reports whether the API rejected the session token.
func (e *StatusError) IsAuth() bool {
	return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden
}

// Client talks to the NOC API and carries the session token on every
// protected request.
type Client struct {
	base string
	h    *http.Client
	log  *slog.Logger

	mu    sync.RWMutex
	token string
}

func NewClient(base string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		h:    &http.Client{Timeout: timeout},
		log:  log,
	}
}

type apiMessage struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Login exchanges credentials for a session token and keeps it for
// subsequent requests.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(req, &out); err != nil {
		return err
	}
	if out.Token == "" {
		return errors.New("login response without token")
	}
	c.mu.Lock()
	c.token = out.Token
	c.mu.Unlock()
	if c.log != nil {
		c.log.Info("login_ok", slog.String("user", username), slog.String("base_url", c.base))
	}
	return nil
}

func (c *Client) Sensor1(ctx context.Context) (*telemetry.ClimateSample, error) {
	var s telemetry.ClimateSample
	if err := c.get(ctx, "/api/sensor1", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Sensor2(ctx context.Context) (*telemetry.ClimateSample, error) {
	var s telemetry.ClimateSample
	if err := c.get(ctx, "/api/sensor2", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Hazard(ctx context.Context) (*telemetry.HazardSample, error) {
	var s telemetry.HazardSample
	if err := c.get(ctx, "/api/fire-smoke", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Electrical(ctx context.Context) (*telemetry.ElectricalSample, error) {
	var s telemetry.ElectricalSample
	if err := c.get(ctx, "/api/electricity", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Export downloads the full stored series of ch, newest first.
func (c *Client) Export(ctx context.Context, ch telemetry.Channel) ([]telemetry.Record, error) {
	if !ch.Valid() {
		return nil, fmt.Errorf("unknown channel %q", ch)
	}
	var rows []telemetry.Record
	if err := c.get(ctx, "/api/export/"+string(ch), &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []telemetry.Record{}
	}
	return rows, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.h.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var msg apiMessage
		if json.Unmarshal(b, &msg) != nil || msg.Message == "" {
			msg.Message = strings.TrimSpace(string(b))
		}
		return &StatusError{Code: resp.StatusCode, Message: msg.Message}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}

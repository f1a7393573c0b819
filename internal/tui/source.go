package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/1broseidon/winserv/internal/server"
)

// Source supplies the data shown by the views.
type Source interface {
	Clients(ctx context.Context) ([]server.ClientInfo, error)
	Windows(ctx context.Context, clientID int) ([]server.WindowInfo, error)
}

// HTTPSource reads the server's /debug endpoints.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource accepts "host:port" or a full http URL.
func NewHTTPSource(addr string) *HTTPSource {
	base := addr
	if u, err := url.Parse(addr); err != nil || u.Scheme == "" || u.Host == "" {
		base = "http://" + addr
	}
	return &HTTPSource{
		BaseURL: base,
		Client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (h *HTTPSource) Clients(ctx context.Context) ([]server.ClientInfo, error) {
	var out []server.ClientInfo
	err := h.get(ctx, "/debug/clients", &out)
	return out, err
}

func (h *HTTPSource) Windows(ctx context.Context, clientID int) ([]server.WindowInfo, error) {
	path := "/debug/windows"
	if clientID != 0 {
		path += "?client=" + strconv.Itoa(clientID)
	}
	var out []server.WindowInfo
	err := h.get(ctx, path, &out)
	return out, err
}

func (h *HTTPSource) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: invalid response: %w", path, err)
	}
	return nil
}

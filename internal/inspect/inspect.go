// Package inspect exposes read-only MCP tools over the live connection
// directory.
package inspect

import (
	"context"
	"net/http"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/winserv/internal/server"
)

const (
	ServerName    = "winserv"
	ServerVersion = "0.1.0"
)

// Source answers queries about connected clients. *server.Server implements
// it.
type Source interface {
	Clients(ctx context.Context) ([]server.ClientInfo, error)
	Windows(ctx context.Context, clientID int) ([]server.WindowInfo, error)
	Window(ctx context.Context, id int32) (server.WindowInfo, error)
}

// ListClientsInput is the input for the list_clients tool.
type ListClientsInput struct{}

// ClientSummary describes one connected client.
type ClientSummary struct {
	ID          int    `json:"id"`
	Peer        string `json:"peer"`
	ConnectedAt string `json:"connected_at"`
	Greeted     bool   `json:"greeted"`
	Responsive  bool   `json:"responsive"`
	DisplayLink bool   `json:"display_link"`
	Windows     int    `json:"windows"`
	Menus       int    `json:"menus"`
	Menubars    int    `json:"menubars"`
}

// ListClientsOutput is the output for the list_clients tool.
type ListClientsOutput struct {
	Clients []ClientSummary `json:"clients"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	ClientID int `json:"client_id,omitempty" jsonschema:"Only list windows of this client (default: all clients)"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []server.WindowInfo `json:"windows"`
}

// GetWindowInput is the input for the get_window tool.
type GetWindowInput struct {
	WindowID int32 `json:"window_id" jsonschema:"required,Id of the window to describe"`
}

// GetWindowOutput is the output for the get_window tool.
type GetWindowOutput struct {
	Window server.WindowInfo `json:"window"`
}

// Server is the MCP introspection server.
type Server struct {
	mcpServer *mcpsdk.Server
	source    Source
}

// NewServer registers the inspection tools over source.
func NewServer(source Source) *Server {
	s := &Server{source: source}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// MCP returns the underlying SDK server.
func (s *Server) MCP() *mcpsdk.Server { return s.mcpServer }

// Handler serves the tools over streamable HTTP.
func (s *Server) Handler() http.Handler {
	return mcpsdk.NewStreamableHTTPHandler(func(*http.Request) *mcpsdk.Server {
		return s.mcpServer
	}, nil)
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_clients",
		Description: "List connected client processes with their responsiveness and resource counts.",
	}, s.handleListClients)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List windows with geometry and state. Pass client_id to restrict the listing to one client.",
	}, s.handleListWindows)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "get_window",
		Description: "Describe a single window by id.",
	}, s.handleGetWindow)
}

func (s *Server) handleListClients(ctx context.Context, _ *mcpsdk.CallToolRequest, _ ListClientsInput) (*mcpsdk.CallToolResult, ListClientsOutput, error) {
	clients, err := s.source.Clients(ctx)
	if err != nil {
		return nil, ListClientsOutput{}, err
	}
	out := ListClientsOutput{Clients: make([]ClientSummary, 0, len(clients))}
	for _, c := range clients {
		out.Clients = append(out.Clients, ClientSummary{
			ID:          c.ID,
			Peer:        c.Peer,
			ConnectedAt: c.ConnectedAt.UTC().Format(time.RFC3339),
			Greeted:     c.Greeted,
			Responsive:  c.Responsive,
			DisplayLink: c.DisplayLink,
			Windows:     c.Windows,
			Menus:       c.Menus,
			Menubars:    c.Menubars,
		})
	}
	return nil, out, nil
}

func (s *Server) handleListWindows(ctx context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	windows, err := s.source.Windows(ctx, args.ClientID)
	if err != nil {
		return nil, ListWindowsOutput{}, err
	}
	if windows == nil {
		windows = []server.WindowInfo{}
	}
	return nil, ListWindowsOutput{Windows: windows}, nil
}

func (s *Server) handleGetWindow(ctx context.Context, _ *mcpsdk.CallToolRequest, args GetWindowInput) (*mcpsdk.CallToolResult, GetWindowOutput, error) {
	w, err := s.source.Window(ctx, args.WindowID)
	if err != nil {
		return nil, GetWindowOutput{}, err
	}
	return nil, GetWindowOutput{Window: w}, nil
}

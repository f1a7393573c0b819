package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/winserv/internal/server"
)

type snapshotMsg struct {
	clients []server.ClientInfo
	windows []server.WindowInfo
	at      time.Time
	err     error
}

type tickMsg time.Time

// model is the root bubbletea model of `winserv top`.
type model struct {
	source   Source
	interval time.Duration
	keys     keyMap
	help     help.Model

	clients  []server.ClientInfo
	windows  []server.WindowInfo
	selected int
	updated  time.Time
	err      error

	width  int
	height int
}

func newModel(source Source, interval time.Duration) model {
	if interval <= 0 {
		interval = time.Second
	}
	return model{
		source:   source,
		interval: interval,
		keys:     defaultKeyMap(),
		help:     help.New(),
	}
}

func (m model) selectedClientID() int {
	if m.selected < 0 || m.selected >= len(m.clients) {
		return 0
	}
	return m.clients[m.selected].ID
}

// fetch loads clients and the windows of the selected client.
func (m model) fetch() tea.Cmd {
	source, clientID, timeout := m.source, m.selectedClientID(), m.interval
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		clients, err := source.Clients(ctx)
		if err != nil {
			return snapshotMsg{err: err, at: time.Now()}
		}
		msg := snapshotMsg{clients: clients, at: time.Now()}
		if clientID == 0 && len(clients) > 0 {
			clientID = clients[0].ID
		}
		if clientID != 0 {
			// The client may have gone away between the two requests.
			if windows, err := source.Windows(ctx, clientID); err == nil {
				msg.windows = windows
			}
		}
		return msg
	}
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return m.fetch()
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.selected > 0 {
				m.selected--
				return m, m.fetch()
			}
		case key.Matches(msg, m.keys.Down):
			if m.selected < len(m.clients)-1 {
				m.selected++
				return m, m.fetch()
			}
		case key.Matches(msg, m.keys.Refresh):
			return m, m.fetch()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		return m, m.fetch()

	case snapshotMsg:
		m.updated = msg.at
		m.err = msg.err
		if msg.err == nil {
			prev := m.selectedClientID()
			m.clients = msg.clients
			m.windows = msg.windows
			m.selected = 0
			for i, c := range m.clients {
				if c.ID == prev {
					m.selected = i
				}
			}
		}
		return m, m.tick()
	}
	return m, nil
}

// View implements tea.Model.
func (m model) View() string {
	status := renderStatusBar(m.err, len(m.clients), m.updated, m.width)

	var body string
	if m.err != nil && len(m.clients) == 0 {
		body = warnStyle.Render(m.err.Error())
	} else {
		title := "windows"
		if id := m.selectedClientID(); id != 0 {
			title = fmt.Sprintf("windows of client %d", id)
		}
		body = lipgloss.JoinVertical(lipgloss.Left,
			RenderClients(m.clients, m.selected, time.Now()),
			"",
			dimStyle.Render(title),
			RenderWindows(m.windows),
		)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		status,
		"",
		body,
		"",
		renderHelpBar(m.help.View(m.keys), m.width),
	)
}

func renderStatusBar(err error, clients int, updated time.Time, width int) string {
	var status string
	if err != nil {
		dot := warnStyle.Render("●")
		status = dot + " server unreachable"
	} else {
		dot := okStyle.Render("●")
		status = fmt.Sprintf("%s %d client(s)  updated %s", dot, clients, updated.Format("15:04:05"))
	}
	style := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("250")).
		Padding(0, 1)
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(status)
}

func renderHelpBar(help string, width int) string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Padding(0, 1)
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(help)
}

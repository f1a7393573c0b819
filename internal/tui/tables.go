package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/winserv/internal/server"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("236"))

	cellStyle = lipgloss.NewStyle().PaddingRight(2)

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// renderTable lays out rows in padded columns. selected is the highlighted
// row index, or -1.
func renderTable(headers []string, rows [][]string, selected int) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = cellStyle.Width(widths[i] + 2).Render(cell)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	}

	lines := []string{headerStyle.Render(line(headers))}
	for i, row := range rows {
		l := line(row)
		if i == selected {
			l = selectedRowStyle.Render(l)
		}
		lines = append(lines, l)
	}
	return strings.Join(lines, "\n")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "-"
}

// RenderClients renders the client table printed by `winserv clients` and
// shown by `winserv top`.
func RenderClients(clients []server.ClientInfo, selected int, now time.Time) string {
	if len(clients) == 0 {
		return dimStyle.Render("no clients connected")
	}
	headers := []string{"ID", "PEER", "UP", "STATE", "WINDOWS", "MENUS", "MENUBARS", "DISPLAY LINK"}
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		state := okStyle.Render("responsive")
		if !c.Responsive {
			state = warnStyle.Render("not responding")
		} else if !c.Greeted {
			state = dimStyle.Render("connecting")
		}
		rows = append(rows, []string{
			fmt.Sprint(c.ID),
			c.Peer,
			formatUptime(now.Sub(c.ConnectedAt)),
			state,
			fmt.Sprint(c.Windows),
			fmt.Sprint(c.Menus),
			fmt.Sprint(c.Menubars),
			yesNo(c.DisplayLink),
		})
	}
	return renderTable(headers, rows, selected)
}

// RenderWindows renders a window table.
func RenderWindows(windows []server.WindowInfo) string {
	if len(windows) == 0 {
		return dimStyle.Render("no windows")
	}
	headers := []string{"ID", "CLIENT", "TYPE", "TITLE", "RECT", "FLAGS"}
	rows := make([][]string, 0, len(windows))
	for _, w := range windows {
		rows = append(rows, []string{
			fmt.Sprint(w.ID),
			fmt.Sprint(w.ClientID),
			w.Type,
			truncate(w.Title, 32),
			w.Rect.String(),
			windowFlags(w),
		})
	}
	return renderTable(headers, rows, -1)
}

func windowFlags(w server.WindowInfo) string {
	var flags []string
	if w.Fullscreen {
		flags = append(flags, "fullscreen")
	}
	if w.Maximized {
		flags = append(flags, "maximized")
	}
	if w.Frameless {
		flags = append(flags, "frameless")
	}
	if w.Modal {
		flags = append(flags, fmt.Sprintf("modal(%d)", w.ParentID))
	}
	if w.MenubarID != 0 {
		flags = append(flags, fmt.Sprintf("menubar(%d)", w.MenubarID))
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

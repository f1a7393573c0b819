// Package tui renders the client tables of `winserv clients` and the live
// `winserv top` view.
package tui

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Run starts the live view and blocks until the user quits.
func Run(source Source, interval time.Duration) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("top requires an interactive terminal (stdin/stdout must be TTYs)")
	}
	p := tea.NewProgram(newModel(source, interval), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

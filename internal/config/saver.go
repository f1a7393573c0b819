package config

import (
	"log/slog"
	"sync"

	"github.com/1broseidon/winserv/internal/desktop"
)

// Saver writes desktop settings back to the config file from its own
// goroutine. Queue never blocks; only the latest pending settings are
// written.
type Saver struct {
	cfg     *Config
	logger  *slog.Logger
	pending chan desktop.Settings
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewSaver starts a saver that owns cfg until Close returns.
func NewSaver(cfg *Config, logger *slog.Logger) *Saver {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Saver{
		cfg:     cfg,
		logger:  logger.With("component", "config"),
		pending: make(chan desktop.Settings, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Queue schedules settings for saving, replacing any not yet written.
func (s *Saver) Queue(settings desktop.Settings) {
	for {
		select {
		case s.pending <- settings:
			return
		default:
		}
		select {
		case <-s.pending:
		default:
		}
	}
}

// Close writes any pending settings and stops the saver.
func (s *Saver) Close() {
	s.once.Do(func() { close(s.quit) })
	<-s.done
}

func (s *Saver) run() {
	defer close(s.done)
	for {
		select {
		case settings := <-s.pending:
			s.save(settings)
		case <-s.quit:
			select {
			case settings := <-s.pending:
				s.save(settings)
			default:
			}
			return
		}
	}
}

func (s *Saver) save(settings desktop.Settings) {
	s.cfg.ApplyDesktop(settings)
	if err := s.cfg.Save(); err != nil {
		s.logger.Warn("failed to save config", "error", err)
		return
	}
	s.logger.Debug("config saved", "path", s.cfg.Path())
}

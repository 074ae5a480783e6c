package cmd

import (
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newLogger returns a text logger writing to path. With no path the
// logger discards everything, since the terminal belongs to the UI.
func newLogger(path, level string) (*slog.Logger, io.Closer, error) {
	lvl, err := ResolveLogLevel(level)
	if err != nil {
		return nil, nil, err
	}
	if path == "" {
		return slog.New(slog.DiscardHandler), nopCloser{}, nil
	}
	f, err := tea.LogToFile(path, "gridseq")
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler), f, nil
}

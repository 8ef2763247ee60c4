package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"vaultfire/internal/engine"
)

func RunBoard(ctx context.Context, svc *engine.Service, user string, out io.Writer) error {
	m := newBoardModel(ctx, svc, user)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

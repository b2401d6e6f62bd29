package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the planner and blocks until the user quits or ctx is canceled.
func Run(ctx context.Context, opts ...Option) error {
	p := tea.NewProgram(New(ctx, opts...),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("planner failed: %w", err)
	}
	return nil
}

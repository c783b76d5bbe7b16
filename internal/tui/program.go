package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the view until the user quits or ctx is canceled. Messages
// from updates (ReloadMsg, ErrMsg) are forwarded into the program.
func Run(ctx context.Context, opts Options, updates <-chan tea.Msg) error {
	p := tea.NewProgram(New(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	done := make(chan struct{})
	defer close(done)
	if updates != nil {
		go func() {
			for {
				select {
				case msg, ok := <-updates:
					if !ok {
						return
					}
					p.Send(msg)
				case <-done:
					return
				}
			}
		}()
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

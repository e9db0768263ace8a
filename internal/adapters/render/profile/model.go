package profile

import (
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/curascan/cli/internal/domain"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

type model struct {
	actor  domain.Actor
	opts   RenderOptions
	styles styles
	output string
}

func newModel(actor domain.Actor, opts RenderOptions) model {
	return model{
		actor:  actor,
		opts:   opts,
		styles: newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = renderView(m.actor, m.opts, m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

// Render produces the profile card through a one-shot bubbletea program
// so color handling matches the interactive surfaces.
func Render(actor domain.Actor, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(actor, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}

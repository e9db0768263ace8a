package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/curascan/cli/internal/domain"
)

type consentAction int

const (
	consentNone consentAction = iota
	consentAccept
	consentDecline
)

const (
	consentFocusCheckbox = iota
	consentFocusChallenge
)

// consentModel is the high-friction acknowledgment gate. It arms fresh
// for every subject: nothing is pre-checked and the challenge field is
// empty, no matter what the user accepted before.
type consentModel struct {
	subject   string
	affirmed  bool
	challenge textinput.Model
	focus     int
	hint      string
}

func newConsentModel(subject string) consentModel {
	challenge := textinput.New()
	challenge.Placeholder = domain.ConsentChallenge
	challenge.CharLimit = 64
	challenge.Width = 32

	return consentModel{
		subject:   subject,
		challenge: challenge,
	}
}

func (m consentModel) record() domain.ConsentRecord {
	return domain.ConsentRecord{
		SubjectName:   m.subject,
		Affirmed:      m.affirmed,
		ChallengeText: m.challenge.Value(),
	}
}

func (m consentModel) satisfied() bool {
	return m.record().Satisfied()
}

func (m consentModel) isEditing() bool {
	return m.focus == consentFocusChallenge
}

// Update returns the action the user resolved the gate with, if any.
// An enter on an unsatisfied gate is refused with an inline hint; it
// never advances.
func (m consentModel) Update(msg tea.KeyMsg) (consentModel, consentAction) {
	switch msg.String() {
	case "esc":
		return m, consentDecline

	case "tab", "shift+tab":
		if m.focus == consentFocusCheckbox {
			m.focus = consentFocusChallenge
			m.challenge.Focus()
		} else {
			m.focus = consentFocusCheckbox
			m.challenge.Blur()
		}
		return m, consentNone

	case "enter":
		if m.satisfied() {
			return m, consentAccept
		}
		m.hint = "check the box and type exactly \"I understand\" to proceed"
		return m, consentNone

	case " ":
		if m.focus == consentFocusCheckbox {
			m.affirmed = !m.affirmed
			m.hint = ""
			return m, consentNone
		}
	}

	if m.focus == consentFocusChallenge {
		m.hint = ""
		var cmd tea.Cmd
		m.challenge, cmd = m.challenge.Update(msg)
		_ = cmd
	}
	return m, consentNone
}

func (m consentModel) View() string {
	checkbox := "[ ]"
	if m.affirmed {
		checkbox = okStyle.Render("[x]")
	}
	if m.focus == consentFocusCheckbox {
		checkbox = selectedStyle.Render(checkbox)
	}

	body := titleStyle.Render("AI analysis consent — "+m.subject) + "\n\n" +
		valueStyle.Render("This sends the staged image to the AI scoring service.") + "\n" +
		valueStyle.Render("The result is decision support, not a diagnosis.") + "\n\n" +
		checkbox + " " + valueStyle.Render("I have read the above and take responsibility") + "\n\n" +
		labelStyle.Render("Type \"I understand\" to confirm:") + "\n" +
		m.challenge.View() + "\n"

	if m.hint != "" {
		body += "\n" + errorStyle.Render(m.hint) + "\n"
	}

	status := errorStyle.Render("consent incomplete")
	if m.satisfied() {
		status = okStyle.Render("ready — press enter to proceed")
	}
	body += "\n" + status + "\n\n" +
		helpStyle.Render("tab focus · space check · enter proceed · esc decline")

	return consentStyle.Render(body)
}

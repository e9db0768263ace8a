package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/curascan/cli/internal/application"
	"github.com/curascan/cli/internal/domain"
)

type phase int

const (
	phaseVerifying phase = iota
	phaseDashboard
	phaseDenied
	phaseExpired
)

// verifiedMsg carries the outcome of startup token verification.
type verifiedMsg struct {
	err error
}

// sessionExpiredMsg is emitted when any authenticated call comes back
// 401. The whole app tears down to the logged-out terminal view.
type sessionExpiredMsg struct{}

// App is the root bubbletea model. It holds the session in the
// Verifying suspension until the backend confirms or rejects the stored
// token; no dashboard renders before that resolves.
type App struct {
	sessions *application.SessionManager
	workflow *application.ScreeningWorkflow

	phase      phase
	dashboard  domain.Dashboard
	actor      domain.Actor
	screening  screeningModel
	spinner    spinner.Model
	expiredFor string
	width      int
	height     int
}

func NewApp(sessions *application.SessionManager, workflow *application.ScreeningWorkflow) App {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(accentStyle),
	)

	return App{
		sessions:  sessions,
		workflow:  workflow,
		phase:     phaseVerifying,
		screening: newScreeningModel(workflow),
		spinner:   s,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.verifyCmd())
}

func (a App) verifyCmd() tea.Cmd {
	sessions := a.sessions
	return func() tea.Msg {
		return verifiedMsg{err: sessions.Verify(context.Background())}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.screening, _ = a.screening.Update(msg)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		var screeningCmd tea.Cmd
		a.screening, screeningCmd = a.screening.Update(msg)
		return a, tea.Batch(cmd, screeningCmd)

	case verifiedMsg:
		return a.applyVerification(msg)

	case sessionExpiredMsg:
		a.phase = phaseExpired
		a.expiredFor = "Your session has expired. Please log in again with `cura login`."
		return a, nil

	case tea.KeyMsg:
		return a.updateKeys(msg)
	}

	if a.phase == phaseDashboard && a.dashboard == domain.DashboardClinical {
		var cmd tea.Cmd
		a.screening, cmd = a.screening.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) applyVerification(msg verifiedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.phase = phaseExpired
		if errors.Is(msg.err, domain.ErrUnauthorized) || errors.Is(msg.err, domain.ErrSessionNotFound) {
			a.expiredFor = "Your session has expired. Please log in again with `cura login`."
		} else {
			a.expiredFor = "Could not verify your session: " + msg.err.Error()
		}
		return a, nil
	}

	session, ok := a.sessions.Current()
	if !ok {
		a.phase = phaseExpired
		a.expiredFor = "Your session has expired. Please log in again with `cura login`."
		return a, nil
	}
	a.actor = session.Actor

	dashboard, err := domain.DashboardForRole(session.Actor.Role)
	if err != nil {
		a.phase = phaseDenied
		return a, nil
	}

	a.phase = phaseDashboard
	a.dashboard = dashboard
	if dashboard == domain.DashboardClinical {
		return a, a.screening.Init()
	}
	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.phase {
	case phaseVerifying:
		// No shortcuts while suspended; the session must resolve first.
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, nil

	case phaseDenied, phaseExpired:
		switch msg.String() {
		case "q", "enter", "esc", "ctrl+c":
			return a, tea.Quit
		}
		return a, nil
	}

	if !a.screening.isEditing() {
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		}
	} else if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if a.dashboard == domain.DashboardClinical {
		var cmd tea.Cmd
		a.screening, cmd = a.screening.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) View() string {
	switch a.phase {
	case phaseVerifying:
		return "\n " + a.spinner.View() + headerStyle.Render("Checking session...") + "\n"

	case phaseDenied:
		return accessDeniedView()

	case phaseExpired:
		return "\n " + errorStyle.Render("Signed out") + "\n\n " +
			valueStyle.Render(a.expiredFor) + "\n\n " +
			helpStyle.Render("press enter to close") + "\n"
	}

	header := a.headerView()
	switch a.dashboard {
	case domain.DashboardClinical:
		return header + "\n" + a.screening.View()
	default:
		return header + "\n" + dashboardPlaceholderView(a.dashboard)
	}
}

func (a App) headerView() string {
	title := titleStyle.Render("CuraScan")
	who := headerStyle.Render(a.actor.DisplayName() + " · " + string(a.actor.Role))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", who)
}

// accessDeniedView is the terminal view for roles this client does not
// recognize. Its single affordance is returning to login.
func accessDeniedView() string {
	return "\n " + errorStyle.Render("Access denied") + "\n\n " +
		valueStyle.Render("Your account's role is not recognized by this client.") + "\n " +
		valueStyle.Render("Log in with a different account with `cura login`.") + "\n\n " +
		helpStyle.Render("press enter to close") + "\n"
}

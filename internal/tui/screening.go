package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/curascan/cli/internal/application"
	"github.com/curascan/cli/internal/domain"
)

type screeningStep int

const (
	stepPatients screeningStep = iota
	stepImage
	stepConsent
	stepReview
	stepSubmitting
	stepResult
	stepFailed
)

type patientsLoadedMsg struct {
	patients []domain.Patient
	err      error
}

// analyzeDoneMsg carries the submission outcome tagged with the attempt
// it belongs to. A message whose attempt has been superseded is dropped
// without touching the new attempt.
type analyzeDoneMsg struct {
	attemptID int64
	err       error
}

// screeningModel drives the consent-gated clinical workflow: pick a
// patient, stage an image, satisfy the gate, submit, read the verdict.
type screeningModel struct {
	workflow *application.ScreeningWorkflow

	step        screeningStep
	search      textinput.Model
	patients    []domain.Patient
	cursor      int
	listFocused bool
	loading     bool
	imagePath   textinput.Model
	notes       textinput.Model
	consent     consentModel
	spinner     spinner.Model
	inlineErr   string
	width       int
	height      int
}

func newScreeningModel(workflow *application.ScreeningWorkflow) screeningModel {
	search := textinput.New()
	search.Placeholder = "search by name or MRN"
	search.CharLimit = 80
	search.Width = 36
	search.Focus()

	imagePath := textinput.New()
	imagePath.Placeholder = "/path/to/scan.jpg"
	imagePath.CharLimit = 255
	imagePath.Width = 48

	notes := textinput.New()
	notes.Placeholder = "clinical notes (optional)"
	notes.CharLimit = 500
	notes.Width = 56

	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(accentStyle),
	)

	return screeningModel{
		workflow:  workflow,
		step:      stepPatients,
		search:    search,
		imagePath: imagePath,
		notes:     notes,
		spinner:   s,
	}
}

func (m screeningModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.searchCmd(""))
}

func (m screeningModel) searchCmd(query string) tea.Cmd {
	workflow := m.workflow
	return func() tea.Msg {
		patients, err := workflow.SearchPatients(context.Background(), query)
		return patientsLoadedMsg{patients: patients, err: err}
	}
}

func (m screeningModel) submitCmd(attemptID int64, notes string) tea.Cmd {
	workflow := m.workflow
	return func() tea.Msg {
		_, err := workflow.Submit(context.Background(), notes)
		return analyzeDoneMsg{attemptID: attemptID, err: err}
	}
}

func (m screeningModel) isEditing() bool {
	switch m.step {
	case stepPatients:
		return !m.listFocused
	case stepImage, stepReview:
		return true
	case stepConsent:
		return m.consent.isEditing()
	}
	return false
}

func (m screeningModel) Update(msg tea.Msg) (screeningModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case patientsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			if errors.Is(msg.err, domain.ErrUnauthorized) {
				return m, func() tea.Msg { return sessionExpiredMsg{} }
			}
			m.inlineErr = msg.err.Error()
			return m, nil
		}
		m.inlineErr = ""
		m.patients = msg.patients
		m.cursor = 0
		return m, nil

	case analyzeDoneMsg:
		return m.applyAnalyzeDone(msg)

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m screeningModel) applyAnalyzeDone(msg analyzeDoneMsg) (screeningModel, tea.Cmd) {
	current := m.workflow.Current()
	if current == nil || current.ID != msg.attemptID {
		// Response for an abandoned or superseded attempt; drop it.
		return m, nil
	}

	if msg.err != nil {
		if errors.Is(msg.err, domain.ErrUnauthorized) {
			return m, func() tea.Msg { return sessionExpiredMsg{} }
		}
		if errors.Is(msg.err, domain.ErrStaleAttempt) {
			return m, nil
		}
		m.step = stepFailed
		return m, nil
	}

	m.step = stepResult
	return m, nil
}

func (m screeningModel) updateKeys(msg tea.KeyMsg) (screeningModel, tea.Cmd) {
	switch m.step {
	case stepPatients:
		return m.updatePatientKeys(msg)
	case stepImage:
		return m.updateImageKeys(msg)
	case stepConsent:
		return m.updateConsentKeys(msg)
	case stepReview:
		return m.updateReviewKeys(msg)
	case stepSubmitting:
		// The submit affordance is gone; only abandoning is possible.
		if msg.String() == "esc" {
			m.workflow.Abandon()
			m.step = stepPatients
		}
		return m, nil
	case stepFailed:
		return m.updateFailedKeys(msg)
	case stepResult:
		switch msg.String() {
		case "n", "enter":
			m.workflow.Abandon()
			m.step = stepPatients
			m.listFocused = false
			m.search.Focus()
		}
		return m, nil
	}
	return m, nil
}

func (m screeningModel) updatePatientKeys(msg tea.KeyMsg) (screeningModel, tea.Cmd) {
	switch msg.String() {
	case "tab":
		if len(m.patients) > 0 {
			m.listFocused = !m.listFocused
			if m.listFocused {
				m.search.Blur()
			} else {
				m.search.Focus()
			}
		}
		return m, nil

	case "enter":
		if m.listFocused && len(m.patients) > 0 {
			return m.selectPatient(m.patients[m.cursor])
		}
		m.loading = true
		return m, m.searchCmd(m.search.Value())

	case "down", "j":
		if m.listFocused && m.cursor < len(m.patients)-1 {
			m.cursor++
			return m, nil
		}
	case "up", "k":
		if m.listFocused && m.cursor > 0 {
			m.cursor--
			return m, nil
		}
	}

	if !m.listFocused {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// selectPatient always starts a fresh attempt, even if one is mid-
// flight; the superseded attempt's response is discarded by ID.
func (m screeningModel) selectPatient(patient domain.Patient) (screeningModel, tea.Cmd) {
	m.workflow.SelectPatient(patient)
	if err := m.workflow.RequestImage(); err != nil {
		m.inlineErr = err.Error()
		return m, nil
	}

	m.inlineErr = ""
	m.imagePath.SetValue("")
	m.imagePath.Focus()
	m.step = stepImage
	return m, nil
}

func (m screeningModel) updateImageKeys(msg tea.KeyMsg) (screeningModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.workflow.Abandon()
		m.inlineErr = ""
		m.step = stepPatients
		m.listFocused = false
		m.search.Focus()
		return m, nil

	case "enter":
		if err := m.workflow.StageImageFile(m.imagePath.Value()); err != nil {
			m.inlineErr = err.Error()
			return m, nil
		}
		if err := m.workflow.OpenConsent(); err != nil {
			m.inlineErr = err.Error()
			return m, nil
		}
		m.inlineErr = ""
		attempt := m.workflow.Current()
		m.consent = newConsentModel(attempt.Patient.FullName)
		m.step = stepConsent
		return m, nil
	}

	var cmd tea.Cmd
	m.imagePath, cmd = m.imagePath.Update(msg)
	return m, cmd
}

func (m screeningModel) updateConsentKeys(msg tea.KeyMsg) (screeningModel, tea.Cmd) {
	var action consentAction
	m.consent, action = m.consent.Update(msg)

	switch action {
	case consentAccept:
		if err := m.workflow.AcceptConsent(m.consent.record()); err != nil {
			m.inlineErr = err.Error()
			return m, nil
		}
		m.inlineErr = ""
		m.notes.SetValue("")
		m.notes.Focus()
		m.step = stepReview
		return m, nil

	case consentDecline:
		// Declining cancels the staged image, not just the dialog.
		if err := m.workflow.DeclineConsent(); err != nil {
			m.inlineErr = err.Error()
			return m, nil
		}
		_ = m.workflow.RequestImage()
		m.imagePath.SetValue("")
		m.imagePath.Focus()
		m.step = stepImage
		return m, nil
	}
	return m, nil
}

func (m screeningModel) updateReviewKeys(msg tea.KeyMsg) (screeningModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.workflow.Abandon()
		m.step = stepPatients
		m.listFocused = false
		m.search.Focus()
		return m, nil

	case "enter":
		attempt := m.workflow.Current()
		if attempt == nil {
			m.step = stepPatients
			return m, nil
		}
		m.step = stepSubmitting
		return m, tea.Batch(m.spinner.Tick, m.submitCmd(attempt.ID, m.notes.Value()))
	}

	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	return m, cmd
}

func (m screeningModel) updateFailedKeys(msg tea.KeyMsg) (screeningModel, tea.Cmd) {
	switch msg.String() {
	case "r":
		// Same attempt, same image, same accepted consent.
		if err := m.workflow.Retry(); err != nil {
			m.inlineErr = err.Error()
			return m, nil
		}
		m.step = stepReview
		return m, nil

	case "esc":
		m.workflow.Abandon()
		m.step = stepPatients
		m.listFocused = false
		m.search.Focus()
		return m, nil
	}
	return m, nil
}

func (m screeningModel) View() string {
	switch m.step {
	case stepPatients:
		return m.patientsView()
	case stepImage:
		return m.imageView()
	case stepConsent:
		return "\n" + m.consent.View() + "\n"
	case stepReview:
		return m.reviewView()
	case stepSubmitting:
		return "\n " + m.spinner.View() + headerStyle.Render("Analyzing image...") + "\n\n " +
			helpStyle.Render("esc abandon") + "\n"
	case stepResult:
		return m.resultView()
	case stepFailed:
		return m.failedView()
	}
	return ""
}

func (m screeningModel) patientsView() string {
	out := "\n " + titleStyle.Render("New screening") + "\n\n " +
		labelStyle.Render("Patient: ") + m.search.View() + "\n\n"

	switch {
	case m.loading:
		out += " " + m.spinner.View() + dimStyle.Render("searching...") + "\n"
	case len(m.patients) == 0:
		out += " " + dimStyle.Render("no patients found") + "\n"
	default:
		for i, p := range m.patients {
			line := p.Label()
			if p.DateOfBirth != "" {
				line += "  " + dimStyle.Render(p.DateOfBirth)
			}
			if m.listFocused && i == m.cursor {
				out += " " + selectedStyle.Render("> "+line) + "\n"
			} else {
				out += "   " + valueStyle.Render(line) + "\n"
			}
		}
	}

	if m.inlineErr != "" {
		out += "\n " + errorStyle.Render(m.inlineErr) + "\n"
	}
	return out + "\n " + helpStyle.Render("enter search · tab focus list · enter select · q quit") + "\n"
}

func (m screeningModel) imageView() string {
	attempt := m.workflow.Current()
	patient := ""
	if attempt != nil {
		patient = attempt.Patient.Label()
	}

	out := "\n " + titleStyle.Render("Stage image") + "  " + headerStyle.Render(patient) + "\n\n " +
		labelStyle.Render("File: ") + m.imagePath.View() + "\n"

	if m.inlineErr != "" {
		out += "\n " + errorStyle.Render(m.inlineErr) + "\n"
	}
	return out + "\n " + helpStyle.Render("enter stage · esc back to patients") + "\n"
}

func (m screeningModel) reviewView() string {
	attempt := m.workflow.Current()
	if attempt == nil {
		return ""
	}

	out := "\n " + titleStyle.Render("Ready to submit") + "\n\n" +
		" " + labelStyle.Render("patient: ") + valueStyle.Render(attempt.Patient.Label()) + "\n" +
		" " + labelStyle.Render("image:   ") + valueStyle.Render(attempt.ImageName) + "\n" +
		" " + labelStyle.Render("consent: ") + okStyle.Render("accepted") + "\n\n" +
		" " + labelStyle.Render("Notes: ") + m.notes.View() + "\n"

	if m.inlineErr != "" {
		out += "\n " + errorStyle.Render(m.inlineErr) + "\n"
	}
	return out + "\n " + helpStyle.Render("enter submit · esc abandon") + "\n"
}

func (m screeningModel) resultView() string {
	attempt := m.workflow.Current()
	if attempt == nil || attempt.Result == nil {
		return ""
	}
	result := *attempt.Result

	verdict := okStyle
	if result.PredictedClass == domain.ClassMalignant {
		verdict = errorStyle
	}

	out := "\n " + titleStyle.Render("Analysis result") + "  " + headerStyle.Render(attempt.Patient.Label()) + "\n\n" +
		" " + verdict.Render(result.Summary()) + "\n" +
		" " + labelStyle.Render("risk:          ") + riskStyle(result.RiskLevel.Label()).Render(result.RiskLevel.Label()) + "\n" +
		" " + labelStyle.Render("benign:        ") + valueStyle.Render(domain.FormatPercent(result.BenignProbability)) + "\n" +
		" " + labelStyle.Render("malignant:     ") + valueStyle.Render(domain.FormatPercent(result.MalignantProbability)) + "\n"

	if result.ScanID != "" {
		out += " " + labelStyle.Render("scan id:       ") + valueStyle.Render(result.ScanID) + "\n"
	}
	if result.IntegritySuspect() {
		out += "\n " + warningStyle.Render("[!] class probabilities do not sum to 100 — integrity warning") + "\n"
	}

	return out + "\n " + helpStyle.Render("n new scan · q quit") + "\n"
}

func (m screeningModel) failedView() string {
	attempt := m.workflow.Current()
	reason := "analysis failed"
	if attempt != nil && attempt.FailedFor != "" {
		reason = attempt.FailedFor
	}

	return "\n " + errorStyle.Render("Analysis failed") + "\n\n " +
		valueStyle.Render(reason) + "\n\n " +
		fmt.Sprintf("%s\n", helpStyle.Render("r retry same image · esc abandon"))
}

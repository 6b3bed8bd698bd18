package tui

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/callmetuna/padhneyAI/internal/domain"
	"github.com/callmetuna/padhneyAI/internal/usecase"
)

// Form fields in display order.
const (
	fieldFullName = iota
	fieldEmail
	fieldPassword
	fieldConfirm
	fieldCount
)

var fieldNames = [fieldCount]string{"FullName", "Email", "Password", "ConfirmPassword"}

var fieldLabels = [fieldCount]string{"Full name", "Email address", "Password", "Confirm password"}

type model struct {
	theme Theme
	deps  Deps
	keys  keyMap
	log   *slog.Logger

	inputs  []textinput.Model
	focus   int
	spinner spinner.Model

	state     domain.SubmitState
	result    domain.RegistrationResult
	fieldErrs map[string]string
	toast     string

	workspaceFound bool
	workspaceRoot  string
}

func Run(deps Deps) error {
	m := newModel(deps)
	p := tea.NewProgram(wrapSafe(m, m.log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(deps Deps) model {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		ti := textinput.New()
		ti.Prompt = "› "
		ti.CharLimit = 128
		ti.Width = 40
		inputs[i] = ti
	}
	inputs[fieldFullName].Placeholder = "Ada Lovelace"
	inputs[fieldEmail].Placeholder = "ada@example.com"
	for _, i := range []int{fieldPassword, fieldConfirm} {
		inputs[i].EchoMode = textinput.EchoPassword
		inputs[i].EchoCharacter = '•'
	}
	inputs[fieldFullName].Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return model{
		theme:     DefaultTheme(),
		deps:      deps,
		keys:      defaultKeys(),
		log:       log,
		inputs:    inputs,
		spinner:   sp,
		state:     domain.StateIdle,
		fieldErrs: map[string]string{},
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, cmdRefreshWorkspace(m.deps))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w := msg.Width - 12
		if w > 60 {
			w = 60
		}
		if w > 10 {
			for i := range m.inputs {
				m.inputs[i].Width = w
			}
		}
		return m, nil

	case workspaceRefreshedMsg:
		m.workspaceFound = msg.found
		m.workspaceRoot = msg.root
		if msg.err != nil && !domain.IsKind(msg.err, domain.KindNotFound) {
			m.log.Warn("tui.workspace.refresh_failed", "err", msg.err.Error())
		}
		return m, nil

	case initWorkspaceDoneMsg:
		if msg.err != nil {
			m.log.Error("tui.workspace.init_failed", "root", msg.root, "err", msg.err.Error())
			m.toast = userMessage(msg.err)
			return m, nil
		}
		m.toast = "Workspace created at " + msg.root
		return m, cmdRefreshWorkspace(m.deps)

	case submitDoneMsg:
		return m.finishSubmit(msg), nil

	case spinner.TickMsg:
		if m.state != domain.StateSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case m.state == domain.StateSubmitting:
			// The form is frozen until the response arrives.
			return m, nil

		case key.Matches(msg, m.keys.Submit):
			return m.submit()

		case key.Matches(msg, m.keys.Enter):
			if m.focus == fieldCount-1 {
				return m.submit()
			}
			return m.setFocus(m.focus + 1)

		case key.Matches(msg, m.keys.Next):
			return m.setFocus((m.focus + 1) % fieldCount)

		case key.Matches(msg, m.keys.Prev):
			return m.setFocus((m.focus + fieldCount - 1) % fieldCount)

		case key.Matches(msg, m.keys.Init):
			if m.workspaceFound || m.deps.StartDir == "" {
				return m, nil
			}
			return m, cmdInitWorkspaceHere(m.deps, m.deps.StartDir)
		}
	}

	if m.state == domain.StateSubmitting {
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m model) setFocus(i int) (tea.Model, tea.Cmd) {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m, m.inputs[m.focus].Focus()
}

func (m model) form() domain.RegistrationForm {
	return usecase.NormalizeForm(domain.RegistrationForm{
		FullName:        m.inputs[fieldFullName].Value(),
		Email:           m.inputs[fieldEmail].Value(),
		Password:        m.inputs[fieldPassword].Value(),
		ConfirmPassword: m.inputs[fieldConfirm].Value(),
	})
}

// canSubmit gates the sign-up action.
func (m model) canSubmit() bool {
	return m.state != domain.StateSubmitting && m.deps.Submitter != nil
}

func (m model) submit() (tea.Model, tea.Cmd) {
	if !m.canSubmit() {
		return m, nil
	}

	m.toast = ""
	m.fieldErrs = map[string]string{}

	form := m.form()
	if err := usecase.ValidateForm(form); err != nil {
		var fe *usecase.FormError
		if errors.As(err, &fe) {
			for _, f := range fe.Fields {
				m.fieldErrs[f.Field] = f.Message()
			}
			return m.focusFirstError()
		}
		m.toast = userMessage(err)
		return m, nil
	}

	m.state = domain.StateSubmitting
	m.result = domain.RegistrationResult{}
	return m, tea.Batch(m.spinner.Tick, cmdSubmit(m.deps, form, m.log))
}

func (m model) focusFirstError() (tea.Model, tea.Cmd) {
	for i, name := range fieldNames {
		if _, ok := m.fieldErrs[name]; ok {
			return m.setFocus(i)
		}
	}
	return m, nil
}

func (m model) finishSubmit(msg submitDoneMsg) model {
	if msg.err != nil {
		m.toast = userMessage(msg.err)
		if !domain.IsKind(msg.err, domain.KindBusy) {
			m.state = domain.StateFailed
		}
		return m
	}

	m.result = msg.res
	if msg.res.OK {
		m.state = domain.StateSucceeded
		m.resetInputs()
		return m
	}

	m.state = domain.StateFailed
	m.inputs[fieldPassword].SetValue("")
	m.inputs[fieldConfirm].SetValue("")
	return m
}

func (m *model) resetInputs() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.focus = fieldFullName
	m.inputs[m.focus].Focus()
}

func (m model) View() string {
	wrap := lipgloss.NewStyle().Padding(1, 2)
	header := m.theme.Title.Render("Sign up") + "\n" +
		m.theme.Subtitle.Render("Create your padhneyAI account") + "\n"

	var banner string
	if m.workspaceFound {
		banner = m.theme.Help.Render(fmt.Sprintf("Workspace: %s", m.workspaceRoot))
	} else {
		banner = m.theme.Help.Render("No workspace found (ctrl+w to create one here)")
	}
	if m.deps.Endpoint != "" {
		banner += "\n" + m.theme.Help.Render("Endpoint:  "+m.deps.Endpoint)
	}

	var b strings.Builder
	for i := range m.inputs {
		b.WriteString(renderField(m.theme, fieldLabels[i], m.inputs[i].View(), m.fieldErrs[fieldNames[i]], i == m.focus))
		b.WriteString("\n")
	}
	b.WriteString(m.renderButton())
	if status := m.renderStatus(); status != "" {
		b.WriteString("\n\n")
		b.WriteString(status)
	}

	help := m.theme.Help.Render("tab/shift+tab move • enter next/sign up • ctrl+s sign up • esc quit")
	return wrap.Render(header + "\n" + banner + "\n\n" + m.theme.Card.Render(b.String()) + "\n" + help)
}

func (m model) renderButton() string {
	switch {
	case m.state == domain.StateSubmitting:
		return m.theme.ButtonMuted.Render(m.spinner.View() + " Signing up…")
	case m.focus == fieldCount-1:
		return m.theme.ButtonActive.Render("Sign up")
	default:
		return m.theme.Button.Render("Sign up")
	}
}

func (m model) renderStatus() string {
	var lines []string
	switch m.state {
	case domain.StateSucceeded:
		lines = append(lines, m.theme.Success.Render("✓ "+m.result.UserMessage()))
	case domain.StateFailed:
		if msg := m.result.UserMessage(); msg != "" {
			lines = append(lines, m.theme.Failure.Render("✗ "+msg))
		}
	}
	if m.toast != "" {
		lines = append(lines, m.theme.Help.Render(clampString(m.toast, 120)))
	}
	return strings.Join(lines, "\n")
}

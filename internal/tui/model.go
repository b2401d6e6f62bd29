// Package tui implements the interactive retirement planner.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/nestegg/internal/auth"
	"github.com/Veraticus/nestegg/internal/common"
	"github.com/Veraticus/nestegg/internal/model"
	"github.com/Veraticus/nestegg/internal/projection"
	"github.com/Veraticus/nestegg/internal/service"
	"github.com/Veraticus/nestegg/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// State represents the current screen of the TUI.
type State int

const (
	StateLogin State = iota
	StateForm
	StateRunning
	StateResults
)

// Model holds the planner state, including the signed-in session.
type Model struct {
	ctx         context.Context
	err         error
	gate        Authenticator
	plans       service.PlanStore
	simulator   *projection.Simulator
	session     *auth.Session
	analysis    *projection.Analysis
	now         func() time.Time
	theme       themes.Theme
	status      string
	keymap      KeyMap
	credentials []textinput.Model
	inputs      []textinput.Model
	help        help.Model
	spinner     spinner.Model
	plan        model.RetirementPlan
	focus       int
	width       int
	height      int
	state       State
	quitting    bool
}

// New creates the planner model. Without a gate the login screen is skipped.
func New(ctx context.Context, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cfg.Theme.Title.UnsetMargins()

	m := Model{
		ctx:         ctx,
		gate:        cfg.Gate,
		plans:       cfg.Plans,
		simulator:   cfg.Simulator,
		now:         time.Now,
		theme:       cfg.Theme,
		keymap:      DefaultKeyMap(),
		credentials: newCredentialInputs(),
		inputs:      newPlanInputs(cfg.Plan),
		help:        help.New(),
		spinner:     sp,
		plan:        cfg.Plan,
		width:       cfg.Width,
		height:      cfg.Height,
		state:       StateForm,
	}
	if m.gate != nil {
		m.state = StateLogin
	}
	m.focusField(0)
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		return m.handleKey(msg)

	case loginResultMsg:
		return m.handleLogin(msg)

	case analysisDoneMsg:
		if msg.err != nil {
			m.state = StateForm
			m.err = msg.err
			return m, nil
		}
		m.analysis = msg.analysis
		m.state = StateResults
		return m, nil

	case planSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("Saved plan %q", msg.plan.Name)
		return m, nil

	case spinner.TickMsg:
		if m.state != StateRunning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StateLogin:
		switch {
		case key.Matches(msg, m.keymap.Next), key.Matches(msg, m.keymap.Prev):
			return m, m.focusField((m.focus + 1) % len(m.credentials))
		case key.Matches(msg, m.keymap.Submit):
			if m.focus == 0 {
				return m, m.focusField(1)
			}
			return m, m.login(m.credentials[0].Value(), m.credentials[1].Value())
		case key.Matches(msg, m.keymap.Back):
			m.quitting = true
			return m, tea.Quit
		}

	case StateForm:
		switch {
		case key.Matches(msg, m.keymap.Next):
			return m, m.focusField((m.focus + 1) % len(m.inputs))
		case key.Matches(msg, m.keymap.Prev):
			return m, m.focusField((m.focus + len(m.inputs) - 1) % len(m.inputs))
		case key.Matches(msg, m.keymap.Submit):
			return m.submit()
		case key.Matches(msg, m.keymap.Save):
			return m.save()
		case key.Matches(msg, m.keymap.Back):
			m.quitting = true
			return m, tea.Quit
		}

	case StateRunning:
		return m, nil

	case StateResults:
		switch {
		case key.Matches(msg, m.keymap.Save):
			return m.save()
		case key.Matches(msg, m.keymap.Back), key.Matches(msg, m.keymap.Submit):
			m.state = StateForm
			m.status = ""
			return m, m.focusField(m.focus)
		}
		return m, nil
	}

	return m.updateFocused(msg)
}

func (m Model) handleLogin(msg loginResultMsg) (tea.Model, tea.Cmd) {
	m.credentials[1].SetValue("")
	if msg.err != nil {
		m.err = msg.err
		return m, m.focusField(1)
	}

	m.session = msg.session
	m.err = nil
	m.status = "Signed in as " + msg.session.Username
	m.state = StateForm
	return m, m.focusField(0)
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	plan, err := planFromInputs(m.inputs)
	if err == nil {
		err = plan.Validate(false)
	}
	if err != nil {
		m.err = err
		return m, nil
	}

	m.plan = plan
	m.err = nil
	m.status = ""
	m.state = StateRunning
	return m, tea.Batch(m.analyze(plan), m.spinner.Tick)
}

func (m Model) save() (tea.Model, tea.Cmd) {
	if m.plans == nil {
		m.err = errors.New("saving is disabled: no plan store configured")
		return m, nil
	}
	if m.gate != nil && !m.session.Valid(m.now()) {
		m.session = nil
		m.err = errors.New("session expired, please sign in again")
		m.state = StateLogin
		return m, m.focusField(0)
	}

	plan, err := planFromInputs(m.inputs)
	if err == nil {
		err = plan.Validate(true)
	}
	if err != nil {
		m.err = err
		return m, nil
	}

	m.err = nil
	m.status = "Saving..."
	return m, m.savePlan(plan)
}

// activeInputs returns the inputs of the current screen.
func (m *Model) activeInputs() []textinput.Model {
	if m.state == StateLogin {
		return m.credentials
	}
	return m.inputs
}

// focusField moves focus to input i of the current screen.
func (m *Model) focusField(i int) tea.Cmd {
	inputs := m.activeInputs()
	for j := range inputs {
		inputs[j].Blur()
	}
	m.focus = i
	return inputs[i].Focus()
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state != StateLogin && m.state != StateForm {
		return m, nil
	}
	inputs := m.activeInputs()
	var cmd tea.Cmd
	inputs[m.focus], cmd = inputs[m.focus].Update(msg)
	return m, cmd
}

// Session returns the signed-in session, if any.
func (m Model) Session() *auth.Session {
	return m.session
}

// State returns the current screen.
func (m Model) State() State {
	return m.state
}

func describeError(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid username or password"
	case errors.Is(err, common.ErrDuplicateEntry):
		return "A plan with that name already exists; pick another name"
	case errors.Is(err, context.Canceled):
		return "Simulation canceled"
	default:
		return common.UserMessage(err)
	}
}

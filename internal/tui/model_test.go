package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/nestegg/internal/auth"
	"github.com/Veraticus/nestegg/internal/common"
	"github.com/Veraticus/nestegg/internal/model"
	"github.com/Veraticus/nestegg/internal/projection"
	"github.com/Veraticus/nestegg/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("planner-test-secret-123")

type stubGate struct {
	session *auth.Session
	err     error
}

func (s stubGate) Login(_ context.Context, _, _ string) (*auth.Session, error) {
	return s.session, s.err
}

func testSimulator() *projection.Simulator {
	return projection.NewSimulator(projection.WithSeed(3), projection.WithTrials(200))
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	got, ok := next.(Model)
	require.True(t, ok)
	return got, cmd
}

// settle runs cmd and feeds the planner's own result messages back into m.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case loginResultMsg, analysisDoneMsg, planSavedMsg:
			next, _ := m.Update(msg)
			m = next.(Model)
		}
	}
	return m
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	save  = tea.KeyMsg{Type: tea.KeyCtrlS}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestPlanner_RunProjection(t *testing.T) {
	m := New(context.Background(), WithSimulator(testSimulator()), WithSize(140, 60))
	require.Equal(t, StateForm, m.State())

	m, cmd := press(t, m, enter)
	assert.Equal(t, StateRunning, m.State())
	assert.Contains(t, m.View(), "Simulating 200 market paths over 25 years")

	m = settle(t, m, cmd)
	require.Equal(t, StateResults, m.State())
	require.NotNil(t, m.analysis)
	assert.Len(t, m.analysis.Scenarios, len(projection.DefaultScenarios))

	view := m.View()
	assert.Contains(t, view, "Scenarios")
	assert.Contains(t, view, "Monte Carlo outlook")
	assert.Contains(t, view, "Distribution of 200 outcomes")

	m, _ = press(t, m, esc)
	assert.Equal(t, StateForm, m.State())
}

func TestPlanner_InvalidInput(t *testing.T) {
	m := New(context.Background(), WithSimulator(testSimulator()))
	m.inputs[1].SetValue("forty")

	m, cmd := press(t, m, enter)
	assert.Nil(t, cmd)
	assert.Equal(t, StateForm, m.State())
	assert.ErrorIs(t, m.err, common.ErrInvalidInput)
	assert.Contains(t, m.View(), "Current age must be a whole number")

	m.inputs[1].SetValue("70")
	m, _ = press(t, m, enter)
	assert.Equal(t, StateForm, m.State())
	assert.Contains(t, m.View(), "retirement age must be after current age")
}

func TestPlanner_Login(t *testing.T) {
	store := testutil.SetupTestDB(t)
	testutil.SeedUser(t, store, "ada", "correct horse")
	gate, err := auth.NewGate(store, testSecret)
	require.NoError(t, err)

	m := New(context.Background(), WithGate(gate), WithSimulator(testSimulator()))
	require.Equal(t, StateLogin, m.State())

	m.credentials[0].SetValue("ada")
	m, _ = press(t, m, enter)
	assert.Equal(t, 1, m.focus)

	m.credentials[1].SetValue("wrong password")
	m, cmd := press(t, m, enter)
	m = settle(t, m, cmd)
	assert.Equal(t, StateLogin, m.State())
	assert.Nil(t, m.Session())
	assert.Empty(t, m.credentials[1].Value())
	assert.Contains(t, m.View(), "Invalid username or password")

	m.credentials[1].SetValue("correct horse")
	m, cmd = press(t, m, enter)
	m = settle(t, m, cmd)
	require.Equal(t, StateForm, m.State())
	require.NotNil(t, m.Session())
	assert.Equal(t, "ada", m.Session().Username)
	assert.Contains(t, m.View(), "signed in as ada")
}

func TestPlanner_LoginTabCyclesFields(t *testing.T) {
	m := New(context.Background(), WithGate(stubGate{err: auth.ErrInvalidCredentials}))
	m, _ = press(t, m, tab)
	assert.Equal(t, 1, m.focus)
	m, _ = press(t, m, tab)
	assert.Equal(t, 0, m.focus)
}

func TestPlanner_SavePlan(t *testing.T) {
	store := testutil.SetupTestDB(t)
	m := New(context.Background(), WithPlanStore(store), WithSimulator(testSimulator()))

	m, cmd := press(t, m, save)
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.err, common.ErrInvalidInput)

	m.inputs[0].SetValue("early bird")
	m, cmd = press(t, m, save)
	m = settle(t, m, cmd)
	assert.NoError(t, m.err)
	assert.Contains(t, m.View(), `Saved plan "early bird"`)

	stored, err := store.GetRetirementPlan(context.Background(), "early bird")
	require.NoError(t, err)
	assert.Equal(t, 40, stored.CurrentAge)
	assert.InDelta(t, 0.07, stored.ExpectedReturn, 1e-12)

	m, cmd = press(t, m, save)
	m = settle(t, m, cmd)
	assert.ErrorIs(t, m.err, common.ErrDuplicateEntry)
	assert.Contains(t, m.View(), "already exists")
}

func TestPlanner_SaveWithoutStore(t *testing.T) {
	m := New(context.Background())
	m.inputs[0].SetValue("x")

	m, cmd := press(t, m, save)
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "saving is disabled")
}

func TestPlanner_SaveWithExpiredSession(t *testing.T) {
	store := testutil.SetupTestDB(t)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	session := &auth.Session{Username: "ada", IssuedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}

	m := New(context.Background(), WithGate(stubGate{session: session}), WithPlanStore(store))
	m.now = func() time.Time { return now }

	m, _ = press(t, m, enter)
	m, cmd := press(t, m, enter)
	m = settle(t, m, cmd)
	require.Equal(t, StateForm, m.State())

	m.inputs[0].SetValue("late")
	m, _ = press(t, m, save)
	assert.Equal(t, StateLogin, m.State())
	assert.Nil(t, m.Session())
	assert.Contains(t, m.View(), "session expired")

	_, err := store.GetRetirementPlan(context.Background(), "late")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPlanner_AnalysisError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := New(ctx, WithSimulator(testSimulator()))
	m, cmd := press(t, m, enter)
	m = settle(t, m, cmd)

	assert.Equal(t, StateForm, m.State())
	assert.True(t, errors.Is(m.err, context.Canceled))
	assert.Contains(t, m.View(), "Simulation canceled")
}

func TestPlanner_Quit(t *testing.T) {
	m := New(context.Background())
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestPlanFormRoundTrip(t *testing.T) {
	plan := model.DefaultRetirementPlan()
	plan.Name = "baseline"

	got, err := planFromInputs(newPlanInputs(plan))
	require.NoError(t, err)
	assert.Equal(t, plan, got)

	inputs := newPlanInputs(plan)
	inputs[3].SetValue("$250,000")
	inputs[6].SetValue("6.5%")
	got, err = planFromInputs(inputs)
	require.NoError(t, err)
	assert.InDelta(t, 250000, got.CurrentBalance, 0)
	assert.InDelta(t, 0.065, got.ExpectedReturn, 1e-12)
}

func TestCompactBins(t *testing.T) {
	bins := make([]model.HistogramBin, 50)
	for i := range bins {
		bins[i] = model.HistogramBin{Lower: float64(i), Upper: float64(i + 1), Count: 1}
	}

	got := compactBins(bins, 10)
	require.Len(t, got, 10)
	assert.InDelta(t, 0, got[0].Lower, 0)
	assert.InDelta(t, 5, got[0].Upper, 0)
	assert.Equal(t, 5, got[0].Count)
	assert.InDelta(t, 50, got[9].Upper, 0)

	assert.Equal(t, bins, compactBins(bins, 0))
	assert.Len(t, compactBins(bins[:3], 10), 3)
}

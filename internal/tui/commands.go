package tui

import (
	"context"
	"time"

	"github.com/Veraticus/nestegg/internal/model"
	tea "github.com/charmbracelet/bubbletea"
)

const storageTimeout = 10 * time.Second

func (m Model) login(username, password string) tea.Cmd {
	gate, ctx := m.gate, m.ctx
	return func() tea.Msg {
		session, err := gate.Login(ctx, username, password)
		return loginResultMsg{session: session, err: err}
	}
}

func (m Model) analyze(plan model.RetirementPlan) tea.Cmd {
	sim, ctx := m.simulator, m.ctx
	return func() tea.Msg {
		analysis, err := sim.Analyze(ctx, plan)
		return analysisDoneMsg{analysis: analysis, err: err}
	}
}

func (m Model) savePlan(plan model.RetirementPlan) tea.Cmd {
	plans, parent := m.plans, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(parent, storageTimeout)
		defer cancel()

		err := plans.SaveRetirementPlan(ctx, &plan)
		return planSavedMsg{plan: plan, err: err}
	}
}

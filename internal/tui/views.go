package tui

import (
	"fmt"
	"strings"

	"github.com/Veraticus/nestegg/internal/cli"
	"github.com/Veraticus/nestegg/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// wideLayout is the width from which results are shown side by side.
const wideLayout = 120

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.state {
	case StateLogin:
		body = m.renderLogin()
	case StateForm:
		body = m.renderForm()
	case StateRunning:
		body = m.renderRunning()
	case StateResults:
		body = m.renderResults()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatus(),
		m.help.View(m.keymap),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render(cli.EggIcon + " nestegg retirement planner")
	if m.session == nil {
		return title
	}
	who := m.theme.Muted.Render("signed in as " + m.session.Username)
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", who)
}

func (m Model) renderLogin() string {
	labels := []string{"Username", "Password"}
	rows := make([]string, 0, len(labels)+1)
	rows = append(rows, m.theme.Subtitle.Render("Sign in to continue"), "")
	for i, label := range labels {
		rows = append(rows, m.renderField(label, m.credentials[i].View(), i == m.focus))
	}
	return m.theme.RoundedBox.Render(strings.Join(rows, "\n"))
}

func (m Model) renderForm() string {
	rows := make([]string, 0, len(planFields))
	for i, field := range planFields {
		rows = append(rows, m.renderField(field.label, m.inputs[i].View(), i == m.focus))
	}
	return m.theme.RoundedBox.Render(strings.Join(rows, "\n"))
}

func (m Model) renderField(label, input string, focused bool) string {
	style := m.theme.Label
	marker := "  "
	if focused {
		style = m.theme.Focused
		marker = "› "
	}
	return marker + style.Render(label) + input
}

func (m Model) renderRunning() string {
	trials := 0
	if m.simulator != nil {
		trials = m.simulator.Trials
	}
	return m.theme.RoundedBox.Render(fmt.Sprintf("%s Simulating %d market paths over %d years...",
		m.spinner.View(), trials, m.plan.HorizonYears()))
}

func (m Model) renderResults() string {
	if m.analysis == nil {
		return ""
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		cli.RenderPlan(m.plan),
		cli.RenderScenarios(m.analysis.Scenarios),
	)
	right := lipgloss.JoinVertical(lipgloss.Left,
		cli.RenderOutlook(m.analysis.Outlook),
		m.theme.Subtitle.Render(fmt.Sprintf("Distribution of %d outcomes", m.analysis.Trials)),
		cli.RenderHistogram(compactBins(m.analysis.Histogram, m.histogramRows())),
	)

	if m.width >= wideLayout {
		return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
	}
	return lipgloss.JoinVertical(lipgloss.Left, left, right)
}

func (m Model) histogramRows() int {
	if m.width >= wideLayout {
		return max(5, m.height-24)
	}
	return 10
}

func (m Model) renderStatus() string {
	switch {
	case m.err != nil:
		return m.theme.Error.Render(cli.ErrorIcon + " " + describeError(m.err))
	case m.status != "":
		return m.theme.Success.Render(m.status)
	case m.state == StateResults && m.analysis != nil && m.analysis.Outlook.OnTrack:
		return m.theme.Success.Render("On track")
	case m.state == StateResults:
		return m.theme.Warning.Render("Off track")
	default:
		return ""
	}
}

// compactBins merges adjacent bins so at most rows remain.
func compactBins(bins []model.HistogramBin, rows int) []model.HistogramBin {
	if rows <= 0 || len(bins) <= rows {
		return bins
	}

	size := (len(bins) + rows - 1) / rows
	out := make([]model.HistogramBin, 0, rows)
	for start := 0; start < len(bins); start += size {
		end := min(start+size, len(bins))
		merged := model.HistogramBin{Lower: bins[start].Lower, Upper: bins[end-1].Upper}
		for _, b := range bins[start:end] {
			merged.Count += b.Count
		}
		out = append(out, merged)
	}
	return out
}

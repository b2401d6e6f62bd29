package tui

import (
	"github.com/Veraticus/nestegg/internal/auth"
	"github.com/Veraticus/nestegg/internal/model"
	"github.com/Veraticus/nestegg/internal/projection"
)

type loginResultMsg struct {
	session *auth.Session
	err     error
}

type analysisDoneMsg struct {
	analysis *projection.Analysis
	err      error
}

type planSavedMsg struct {
	err  error
	plan model.RetirementPlan
}

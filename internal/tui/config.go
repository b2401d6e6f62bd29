package tui

import (
	"context"

	"github.com/Veraticus/nestegg/internal/auth"
	"github.com/Veraticus/nestegg/internal/model"
	"github.com/Veraticus/nestegg/internal/projection"
	"github.com/Veraticus/nestegg/internal/service"
	"github.com/Veraticus/nestegg/internal/tui/themes"
)

// Authenticator opens sessions for the login screen.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*auth.Session, error)
}

// Config holds TUI configuration.
type Config struct {
	Theme     themes.Theme
	Plans     service.PlanStore
	Gate      Authenticator
	Simulator *projection.Simulator
	Plan      model.RetirementPlan
	Width     int
	Height    int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:     themes.Default,
		Simulator: projection.NewSimulator(),
		Plan:      model.DefaultRetirementPlan(),
		Width:     80,
		Height:    24,
	}
}

// WithPlanStore enables saving plans with ctrl+s.
func WithPlanStore(plans service.PlanStore) Option {
	return func(c *Config) {
		c.Plans = plans
	}
}

// WithGate puts a login screen in front of the planner.
func WithGate(gate Authenticator) Option {
	return func(c *Config) {
		c.Gate = gate
	}
}

// WithSimulator sets the Monte Carlo settings used for results.
func WithSimulator(sim *projection.Simulator) Option {
	return func(c *Config) {
		if sim != nil {
			c.Simulator = sim
		}
	}
}

// WithPlan pre-fills the form.
func WithPlan(plan model.RetirementPlan) Option {
	return func(c *Config) {
		c.Plan = plan
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

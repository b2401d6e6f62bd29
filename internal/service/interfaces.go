// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/nestegg/internal/model"
)

// ReportStore persists uploaded rental P&L exports.
type ReportStore interface {
	SaveRentalReport(ctx context.Context, report *model.RentalReport) error
	GetRentalReport(ctx context.Context, id int64) (*model.RentalReport, error)
	ListRentalReports(ctx context.Context) ([]model.RentalReport, error)
	DeleteRentalReport(ctx context.Context, id int64) error
}

// PlanStore persists named retirement plans.
type PlanStore interface {
	SaveRetirementPlan(ctx context.Context, plan *model.RetirementPlan) error
	GetRetirementPlan(ctx context.Context, name string) (*model.RetirementPlan, error)
	ListRetirementPlans(ctx context.Context) ([]model.RetirementPlan, error)
	DeleteRetirementPlan(ctx context.Context, name string) error
}

// UserStore persists the accounts allowed past the login gate.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, username string) (*model.User, error)
	CountUsers(ctx context.Context) (int, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	ReportStore
	PlanStore
	UserStore

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

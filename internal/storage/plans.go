package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/nestegg/internal/common"
	"github.com/Veraticus/nestegg/internal/model"
)

const planColumns = `name, current_age, retirement_age, current_balance, monthly_savings,
	expected_return, inflation_rate, desired_monthly_income, ideal_monthly_savings, created_at`

// SaveRetirementPlan stores a new named plan. A name that is already taken
// yields common.ErrDuplicateEntry and nothing is written.
func (s *SQLiteStorage) SaveRetirementPlan(ctx context.Context, plan *model.RetirementPlan) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePlan(plan); err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO retirement_plans (`+planColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.Name, plan.CurrentAge, plan.RetirementAge, plan.CurrentBalance, plan.MonthlySavings,
		plan.ExpectedReturn, plan.InflationRate, plan.DesiredMonthlyIncome, plan.IdealMonthlySavings, now)
	if err != nil {
		return wrapConflict(err, "retirement plan", plan.Name)
	}

	plan.CreatedAt = now
	slog.Info("Saved retirement plan", "name", plan.Name)
	return nil
}

// GetRetirementPlan returns the plan stored under name.
func (s *SQLiteStorage) GetRetirementPlan(ctx context.Context, name string) (*model.RetirementPlan, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+planColumns+` FROM retirement_plans WHERE name = ?`, name)
	plan, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: retirement plan %q", common.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query retirement plan: %w", err)
	}
	return plan, nil
}

// ListRetirementPlans returns all stored plans ordered by name.
func (s *SQLiteStorage) ListRetirementPlans(ctx context.Context) ([]model.RetirementPlan, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+planColumns+` FROM retirement_plans ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query retirement plans: %w", err)
	}
	defer rows.Close()

	var plans []model.RetirementPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan retirement plan: %w", err)
		}
		plans = append(plans, *plan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating retirement plans: %w", err)
	}

	slog.Debug("retrieved retirement plans", "count", len(plans))
	return plans, nil
}

// DeleteRetirementPlan removes the plan stored under name.
func (s *SQLiteStorage) DeleteRetirementPlan(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM retirement_plans WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete retirement plan: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("retirement plan %q", name))
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlan(row scanner) (*model.RetirementPlan, error) {
	var p model.RetirementPlan
	err := row.Scan(
		&p.Name, &p.CurrentAge, &p.RetirementAge, &p.CurrentBalance, &p.MonthlySavings,
		&p.ExpectedReturn, &p.InflationRate, &p.DesiredMonthlyIncome, &p.IdealMonthlySavings, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

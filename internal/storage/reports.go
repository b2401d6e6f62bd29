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

// SaveRentalReport stores an uploaded export verbatim and sets its ID.
func (s *SQLiteStorage) SaveRentalReport(ctx context.Context, report *model.RentalReport) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateReport(report); err != nil {
		return err
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO rental_reports (property, year, raw_csv, created_at)
		VALUES (?, ?, ?, ?)`,
		report.Property, report.Year, report.RawCSV, now)
	if err != nil {
		return fmt.Errorf("failed to save rental report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get rental report ID: %w", err)
	}

	report.ID = id
	report.CreatedAt = now

	slog.Info("Saved rental report", "id", id, "property", report.Property, "year", report.Year)
	return nil
}

// GetRentalReport returns a stored report including its raw CSV.
func (s *SQLiteStorage) GetRentalReport(ctx context.Context, id int64) (*model.RentalReport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var r model.RentalReport
	err := s.db.QueryRowContext(ctx, `
		SELECT id, property, year, raw_csv, created_at
		FROM rental_reports
		WHERE id = ?`, id).Scan(&r.ID, &r.Property, &r.Year, &r.RawCSV, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: rental report %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query rental report: %w", err)
	}

	return &r, nil
}

// ListRentalReports returns report headers, newest year first. RawCSV is not loaded.
func (s *SQLiteStorage) ListRentalReports(ctx context.Context) ([]model.RentalReport, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, property, year, created_at
		FROM rental_reports
		ORDER BY year DESC, property, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rental reports: %w", err)
	}
	defer rows.Close()

	var reports []model.RentalReport
	for rows.Next() {
		var r model.RentalReport
		if err := rows.Scan(&r.ID, &r.Property, &r.Year, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rental report: %w", err)
		}
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rental reports: %w", err)
	}

	return reports, nil
}

// DeleteRentalReport removes a stored report.
func (s *SQLiteStorage) DeleteRentalReport(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM rental_reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rental report: %w", err)
	}
	return requireAffected(result, fmt.Sprintf("rental report %d", id))
}

func requireAffected(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", common.ErrNotFound, what)
	}
	return nil
}

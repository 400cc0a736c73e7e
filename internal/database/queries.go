package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"newsbrief/internal/domain"
)

func (d *Database) GetSummary(ctx context.Context, url string) (domain.SummaryRecord, bool, error) {
	query := "select url, points, created_at from summaries where url = ?"

	var (
		record     domain.SummaryRecord
		pointsJSON string
		createdAt  int64
	)

	err := d.db.QueryRowContext(ctx, query, url).Scan(&record.URL, &pointsJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SummaryRecord{}, false, nil
	}
	if err != nil {
		return domain.SummaryRecord{}, false, fmt.Errorf("failed to execute query: %w", err)
	}

	if err = json.Unmarshal([]byte(pointsJSON), &record.Points); err != nil {
		return domain.SummaryRecord{}, false, fmt.Errorf("failed to decode points: %w", err)
	}

	record.CreatedAt = time.UnixMilli(createdAt).UTC()

	return record, true, nil
}

// PutSummary inserts the record unless the URL is already stored, in which
// case it returns domain.ErrDuplicateKey.
func (d *Database) PutSummary(ctx context.Context, record domain.SummaryRecord) error {
	if strings.TrimSpace(record.URL) == "" {
		return errors.New("summary URL is empty")
	}

	if len(record.Points) == 0 {
		return errors.New("summary points are empty")
	}

	pointsJSON, err := json.Marshal(record.Points)
	if err != nil {
		return fmt.Errorf("failed to encode points: %w", err)
	}

	query := "insert or ignore into summaries (url, points, created_at) values (?, ?, ?)"

	res, err := d.db.ExecContext(ctx, query, record.URL, string(pointsJSON), record.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return domain.ErrDuplicateKey
	}

	return nil
}

func (d *Database) DeleteSummariesBefore(ctx context.Context, before time.Time) (int64, error) {
	query := "delete from summaries where created_at < ?"

	res, err := d.db.ExecContext(ctx, query, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to execute query: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return deleted, nil
}

package database

import (
	"context"
	"fmt"
	"time"
)

// DatasetReloadRow is one load attempt of the tariff dataset.
type DatasetReloadRow struct {
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
	Rows      int       `json:"rows"`
	Shadowed  int       `json:"shadowed"`
	Error     string    `json:"error,omitempty"`
}

func (d *Database) SaveDatasetReload(ctx context.Context, r DatasetReloadRow) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	_, err := d.write.ExecContext(ctx, `
		INSERT INTO dataset_reload (timestamp, path, rows, shadowed, error)
		VALUES (?, ?, ?, ?, ?)`,
		r.Timestamp.UTC().Format(time.RFC3339),
		r.Path,
		r.Rows,
		r.Shadowed,
		r.Error)
	if err != nil {
		return fmt.Errorf("saving dataset reload: %w", err)
	}
	return nil
}

// GetDatasetReloads returns the latest reload attempts, newest first.
func (d *Database) GetDatasetReloads(ctx context.Context, limit int) ([]DatasetReloadRow, error) {
	if limit < 1 {
		limit = 10
	}

	rows, err := d.read.QueryContext(ctx, `
		SELECT timestamp, path, rows, shadowed, error
		FROM dataset_reload
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching dataset reloads: %w", err)
	}
	defer rows.Close()

	var ts string
	result := []DatasetReloadRow{}
	for rows.Next() {
		var r DatasetReloadRow
		if err := rows.Scan(&ts, &r.Path, &r.Rows, &r.Shadowed, &r.Error); err != nil {
			return nil, err
		}
		r.Timestamp, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading dataset reload rows: %w", err)
	}
	return result, nil
}

// PurgeDatasetReloads deletes reload history older than retentionDays.
func (d *Database) PurgeDatasetReloads(ctx context.Context, retentionDays int) error {
	if retentionDays < 1 {
		return nil
	}
	before := time.Now().Add(-24 * time.Hour * time.Duration(retentionDays))
	res, err := d.write.ExecContext(ctx, `DELETE FROM dataset_reload WHERE timestamp < ?`,
		before.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("error when purging dataset_reload: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil {
		d.logger.Debug(fmt.Sprintf("purged %d rows from dataset_reload", n))
	}
	return nil
}

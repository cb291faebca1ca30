package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/kloir-z/gantt/internal/codec"
	"github.com/kloir-z/gantt/internal/db"
	"github.com/kloir-z/gantt/internal/domain"
)

// SQLiteChartRepo implements ChartRepo using a SQLite database.
type SQLiteChartRepo struct {
	db db.DBTX
}

// NewSQLiteChartRepo creates a new SQLiteChartRepo. conn may be a
// transaction.
func NewSQLiteChartRepo(conn db.DBTX) *SQLiteChartRepo {
	return &SQLiteChartRepo{db: conn}
}

const chartColumns = `id, name, settings, snapshot, created_at, updated_at`

func (r *SQLiteChartRepo) Create(ctx context.Context, c *domain.Chart) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = nowUTC()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	settings, snapshot, fp, err := encodeChart(c)
	if err != nil {
		return err
	}
	query := `INSERT INTO charts (id, name, settings, snapshot, fingerprint, row_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		settings,
		snapshot,
		fp,
		c.Snapshot.Document.Len(),
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("chart %q already exists", c.Name)
		}
		return fmt.Errorf("inserting chart: %w", err)
	}
	return nil
}

func (r *SQLiteChartRepo) GetByID(ctx context.Context, id string) (*domain.Chart, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+chartColumns+` FROM charts WHERE id = ?`, id)
	return r.scanChart(row, id)
}

// GetByName looks a chart up by name, falling back to an id prefix.
func (r *SQLiteChartRepo) GetByName(ctx context.Context, name string) (*domain.Chart, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+chartColumns+` FROM charts WHERE name = ?`, name)
	c, err := r.scanChart(row, name)
	if !errors.Is(err, ErrChartNotFound) {
		return c, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT id FROM charts WHERE id LIKE ? || '%' LIMIT 2`, name)
	if err != nil {
		return nil, fmt.Errorf("resolving chart prefix: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning chart id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	switch len(ids) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrChartNotFound, name)
	case 1:
		return r.GetByID(ctx, ids[0])
	default:
		return nil, fmt.Errorf("chart prefix %q is ambiguous", name)
	}
}

func (r *SQLiteChartRepo) List(ctx context.Context) ([]ChartSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, row_count, fingerprint, updated_at FROM charts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing charts: %w", err)
	}
	defer rows.Close()

	var out []ChartSummary
	for rows.Next() {
		var s ChartSummary
		var updatedAt string
		if err := rows.Scan(&s.ID, &s.Name, &s.RowCount, &s.Fingerprint, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning chart: %w", err)
		}
		s.UpdatedAt = parseTime(updatedAt)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating charts: %w", err)
	}
	return out, nil
}

func (r *SQLiteChartRepo) Update(ctx context.Context, c *domain.Chart) error {
	c.UpdatedAt = nowUTC()
	settings, snapshot, fp, err := encodeChart(c)
	if err != nil {
		return err
	}
	query := `UPDATE charts SET name = ?, settings = ?, snapshot = ?, fingerprint = ?, row_count = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		c.Name,
		settings,
		snapshot,
		fp,
		c.Snapshot.Document.Len(),
		formatTime(c.UpdatedAt),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating chart: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrChartNotFound, c.ID)
	}
	return nil
}

func (r *SQLiteChartRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM charts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting chart: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrChartNotFound, id)
	}
	return nil
}

func (r *SQLiteChartRepo) scanChart(row *sql.Row, key string) (*domain.Chart, error) {
	var c domain.Chart
	var settings, snapshot []byte
	var createdAt, updatedAt string
	if err := row.Scan(&c.ID, &c.Name, &settings, &snapshot, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrChartNotFound, key)
		}
		return nil, fmt.Errorf("scanning chart: %w", err)
	}

	raw, err := codec.Decompress(settings)
	if err != nil {
		return nil, fmt.Errorf("chart %s settings: %w", c.ID, err)
	}
	if c.Settings, err = codec.DecodeSettings(raw); err != nil {
		return nil, fmt.Errorf("chart %s: %w", c.ID, err)
	}
	if c.Snapshot, err = codec.UnpackSnapshot(snapshot); err != nil {
		return nil, fmt.Errorf("chart %s: %w", c.ID, err)
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

func encodeChart(c *domain.Chart) (settings, snapshot []byte, fingerprint string, err error) {
	raw, err := codec.EncodeSettings(c.Settings)
	if err != nil {
		return nil, nil, "", err
	}
	snapshot, err = codec.PackSnapshot(c.Snapshot)
	if err != nil {
		return nil, nil, "", err
	}
	fp, err := codec.SnapshotFingerprint(c.Snapshot)
	if err != nil {
		return nil, nil, "", err
	}
	return codec.Compress(raw), snapshot, fp.String(), nil
}

package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"teardown-leads/internal/domain"
)

// ScanRunRepository registra corridas del pipeline y agrega estadisticas.
type ScanRunRepository interface {
	Create(ctx context.Context, run domain.ScanRun) error
	Complete(ctx context.Context, run domain.ScanRun) error
	Stats(ctx context.Context, since time.Time, highScore, excellentROI float64) (domain.Stats, error)
}

type PgScanRunRepository struct {
	pool *pgxpool.Pool
}

func NewPgScanRunRepository(pool *pgxpool.Pool) *PgScanRunRepository {
	return &PgScanRunRepository{pool: pool}
}

func (r *PgScanRunRepository) Create(ctx context.Context, run domain.ScanRun) error {
	const query = `
		INSERT INTO scan_runs (id, run_type, query, location, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.RunType,
		run.Query,
		run.Location,
		run.Status,
		run.StartedAt,
	)
	return err
}

func (r *PgScanRunRepository) Complete(ctx context.Context, run domain.ScanRun) error {
	const query = `
		UPDATE scan_runs SET
			status = $2, total_listings = $3, new_listings = $4, opportunities = $5,
			high_value = $6, duration_seconds = $7, error_message = $8, completed_at = $9
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Status,
		run.TotalListings,
		run.NewListings,
		run.Opportunities,
		run.HighValue,
		run.DurationSeconds,
		nullableString(run.ErrorMessage),
		run.CompletedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrScanRunNotFound
	}
	return nil
}

// Stats agrega actividad desde since. highScore y excellentROI son los cortes de
// development score y roi score que cuentan como alto valor.
func (r *PgScanRunRepository) Stats(ctx context.Context, since time.Time, highScore, excellentROI float64) (domain.Stats, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM listings),
			(SELECT COUNT(*) FROM listings WHERE first_seen_at >= $1),
			(SELECT COUNT(*) FROM scan_runs WHERE started_at >= $1),
			(SELECT AVG(duration_seconds) FROM scan_runs WHERE started_at >= $1 AND status = 'completed'),
			(SELECT MAX(started_at) FROM scan_runs),
			COUNT(c.id),
			COUNT(DISTINCT c.listing_id) FILTER (WHERE c.development_score >= $2),
			COUNT(DISTINCT c.listing_id) FILTER (WHERE c.roi_score >= $3),
			AVG(c.development_score),
			MIN(c.development_score),
			MAX(c.development_score)
		FROM classifications c
		WHERE c.created_at >= $1
	`
	var s domain.Stats
	err := r.pool.QueryRow(ctx, query, since, highScore, excellentROI).Scan(
		&s.TotalListings,
		&s.RecentListings,
		&s.ScanRuns,
		&s.AvgRunDuration,
		&s.LastScan,
		&s.Classifications,
		&s.HighValueCount,
		&s.ExcellentROICount,
		&s.AvgDevelopmentScore,
		&s.MinDevelopmentScore,
		&s.MaxDevelopmentScore,
	)
	return s, err
}

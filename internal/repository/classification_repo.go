package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"teardown-leads/internal/domain"
)

// ClassificationRepository guarda el historial de clasificaciones y puntajes.
type ClassificationRepository interface {
	Create(ctx context.Context, rec domain.ClassificationRecord) error
	ListByListing(ctx context.Context, listingID string, limit int) ([]domain.ClassificationRecord, error)
	Recent(ctx context.Context, since time.Time, minScore float64, limit int) ([]domain.RecentOpportunity, error)
}

type PgClassificationRepository struct {
	pool *pgxpool.Pool
}

func NewPgClassificationRepository(pool *pgxpool.Pool) *PgClassificationRepository {
	return &PgClassificationRepository{pool: pool}
}

const classificationColumns = `
	c.id, c.listing_id, c.scan_run_id, c.label, c.confidence, c.explanation, c.development_score,
	c.buildable_sqft, c.estimated_profit, c.roi_percentage, c.roi_score, c.roi_confidence,
	c.roi_reasoning, c.model_version, c.created_at`

func (r *PgClassificationRepository) Create(ctx context.Context, rec domain.ClassificationRecord) error {
	const query = `
		INSERT INTO classifications (
			id, listing_id, scan_run_id, label, confidence, explanation, development_score,
			buildable_sqft, estimated_profit, roi_percentage, roi_score, roi_confidence,
			roi_reasoning, model_version, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.ListingID,
		nullableString(rec.ScanRunID),
		string(rec.Label),
		rec.Confidence,
		rec.Explanation,
		rec.DevelopmentScore,
		rec.BuildableSqft,
		rec.EstimatedProfit,
		rec.ROIPercentage,
		rec.ROIScore,
		rec.ROIConfidence,
		rec.ROIReasoning,
		rec.ModelVersion,
		rec.CreatedAt,
	)
	return err
}

func (r *PgClassificationRepository) ListByListing(ctx context.Context, listingID string, limit int) ([]domain.ClassificationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + classificationColumns + `
		FROM classifications c
		WHERE c.listing_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2`
	rows, err := r.pool.Query(ctx, query, listingID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ClassificationRecord
	for rows.Next() {
		rec, err := scanClassification(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Recent devuelve la ultima clasificacion por listing desde since con score >= minScore.
func (r *PgClassificationRepository) Recent(ctx context.Context, since time.Time, minScore float64, limit int) ([]domain.RecentOpportunity, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT * FROM (
			SELECT DISTINCT ON (c.listing_id) ` + classificationColumns + `,` + prefixed("l", listingColumns) + `
			FROM classifications c
			JOIN listings l ON l.id = c.listing_id
			WHERE c.created_at >= $1
			ORDER BY c.listing_id, c.created_at DESC
		) latest
		WHERE latest.development_score >= $2
		ORDER BY latest.development_score DESC
		LIMIT $3`
	rows, err := r.pool.Query(ctx, query, since, minScore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RecentOpportunity
	for rows.Next() {
		var opp domain.RecentOpportunity
		var listing domain.Listing
		rec, err := scanClassification(func(dest ...interface{}) error {
			var scanErr error
			listing, scanErr = scanListing(func(ldest ...interface{}) error {
				return rows.Scan(append(dest, ldest...)...)
			})
			return scanErr
		})
		if err != nil {
			return nil, err
		}
		opp.Classification = rec
		opp.Listing = listing
		out = append(out, opp)
	}
	return out, rows.Err()
}

func scanClassification(scan func(...interface{}) error) (domain.ClassificationRecord, error) {
	var rec domain.ClassificationRecord
	var label string
	var scanRunID, explanation, reasoning, model sql.NullString
	err := scan(
		&rec.ID,
		&rec.ListingID,
		&scanRunID,
		&label,
		&rec.Confidence,
		&explanation,
		&rec.DevelopmentScore,
		&rec.BuildableSqft,
		&rec.EstimatedProfit,
		&rec.ROIPercentage,
		&rec.ROIScore,
		&rec.ROIConfidence,
		&reasoning,
		&model,
		&rec.CreatedAt,
	)
	if err != nil {
		return domain.ClassificationRecord{}, err
	}
	rec.Label = scoringLabel(label)
	rec.ScanRunID = scanRunID.String
	rec.Explanation = explanation.String
	rec.ROIReasoning = reasoning.String
	rec.ModelVersion = model.String
	return rec, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"teardown-leads/internal/db"
	"teardown-leads/internal/domain"
)

// UpsertResult describe que paso con un listing al persistirlo.
type UpsertResult struct {
	ID         string
	Created    bool
	PricePoint *domain.PricePoint
}

// ListingRepository define el contrato de persistencia para listings e historial de precios.
type ListingRepository interface {
	Upsert(ctx context.Context, listing domain.Listing, scanRunID string, now time.Time) (UpsertResult, error)
	GetByID(ctx context.Context, id string) (domain.Listing, error)
	PriceHistory(ctx context.Context, listingID string) ([]domain.PricePoint, error)
}

// PgListingRepository implementa ListingRepository usando pgxpool.
type PgListingRepository struct {
	pool *pgxpool.Pool
}

func NewPgListingRepository(pool *pgxpool.Pool) *PgListingRepository {
	return &PgListingRepository{pool: pool}
}

const listingColumns = `
	id, address, city, state, zip_code, price, last_price, bedrooms, bathrooms, sqft, lot_size,
	year_built, zoning, land_value, assessed_value, latitude, longitude, description, status,
	url, source, first_seen_at, last_seen_at`

// Upsert inserta o actualiza por direccion normalizada y registra el precio cuando es
// el primero o cambio respecto al ultimo registrado. Todo en una transaccion.
func (r *PgListingRepository) Upsert(ctx context.Context, l domain.Listing, scanRunID string, now time.Time) (UpsertResult, error) {
	var res UpsertResult
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const selectQuery = `
			SELECT id FROM listings WHERE normalized_address = $1 FOR UPDATE
		`
		err := tx.QueryRow(ctx, selectQuery, l.NormalizedAddress()).Scan(&res.ID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			res.ID = uuid.NewString()
			res.Created = true
			if err := insertListing(ctx, tx, res.ID, l, now); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := updateListing(ctx, tx, res.ID, l, now); err != nil {
				return err
			}
		}

		price := l.PurchasePrice()
		if price == nil || *price <= 0 {
			return nil
		}
		point, err := trackPrice(ctx, tx, res.ID, scanRunID, *price, now)
		if err != nil {
			return err
		}
		res.PricePoint = point
		return nil
	})
	return res, err
}

func insertListing(ctx context.Context, tx pgx.Tx, id string, l domain.Listing, now time.Time) error {
	const query = `
		INSERT INTO listings (
			id, address, normalized_address, city, state, zip_code, price, last_price, bedrooms, bathrooms,
			sqft, lot_size, year_built, zoning, land_value, assessed_value, latitude, longitude,
			description, status, url, source, first_seen_at, last_seen_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $23)
	`
	_, err := tx.Exec(ctx, query,
		id,
		l.Address,
		l.NormalizedAddress(),
		l.City,
		l.State,
		l.ZipCode,
		l.Price,
		l.PurchasePrice(),
		l.Bedrooms,
		l.Bathrooms,
		l.Sqft,
		l.LotSize,
		l.YearBuilt,
		l.Zoning,
		l.LandValue,
		l.AssessedValue,
		l.Latitude,
		l.Longitude,
		l.Description,
		l.Status,
		l.URL,
		l.Source,
		now,
	)
	return err
}

func updateListing(ctx context.Context, tx pgx.Tx, id string, l domain.Listing, now time.Time) error {
	const query = `
		UPDATE listings SET
			city = $2, state = $3, zip_code = $4, price = $5,
			last_price = COALESCE($6, last_price),
			bedrooms = $7, bathrooms = $8, sqft = $9, lot_size = $10, year_built = $11, zoning = $12,
			land_value = $13, assessed_value = $14, latitude = $15, longitude = $16,
			description = $17, status = $18, url = $19, source = $20, last_seen_at = $21
		WHERE id = $1
	`
	_, err := tx.Exec(ctx, query,
		id,
		l.City,
		l.State,
		l.ZipCode,
		l.Price,
		l.PurchasePrice(),
		l.Bedrooms,
		l.Bathrooms,
		l.Sqft,
		l.LotSize,
		l.YearBuilt,
		l.Zoning,
		l.LandValue,
		l.AssessedValue,
		l.Latitude,
		l.Longitude,
		l.Description,
		l.Status,
		l.URL,
		l.Source,
		now,
	)
	return err
}

// trackPrice devuelve nil si el precio no cambio respecto al ultimo punto.
func trackPrice(ctx context.Context, tx pgx.Tx, listingID, scanRunID string, price float64, now time.Time) (*domain.PricePoint, error) {
	const lastQuery = `
		SELECT price FROM price_history
		WHERE listing_id = $1
		ORDER BY recorded_at DESC
		LIMIT 1
	`
	var previous *float64
	var last float64
	err := tx.QueryRow(ctx, lastQuery, listingID).Scan(&last)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, err
	default:
		if last == price {
			return nil, nil
		}
		previous = &last
	}

	point := domain.NewPricePoint(uuid.NewString(), listingID, price, previous, now)
	const insertQuery = `
		INSERT INTO price_history (id, listing_id, scan_run_id, price, price_change, price_change_percent, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := tx.Exec(ctx, insertQuery,
		point.ID,
		point.ListingID,
		nullableString(scanRunID),
		point.Price,
		point.Change,
		point.ChangePercent,
		point.RecordedAt,
	); err != nil {
		return nil, err
	}
	return &point, nil
}

func (r *PgListingRepository) GetByID(ctx context.Context, id string) (domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return domain.Listing{}, err
	}
	defer rows.Close()

	listings, err := scanListings(rows)
	if err != nil {
		return domain.Listing{}, err
	}
	if len(listings) == 0 {
		return domain.Listing{}, ErrListingNotFound
	}
	return listings[0], nil
}

func (r *PgListingRepository) PriceHistory(ctx context.Context, listingID string) ([]domain.PricePoint, error) {
	const query = `
		SELECT id, listing_id, price, price_change, price_change_percent, recorded_at
		FROM price_history
		WHERE listing_id = $1
		ORDER BY recorded_at ASC
	`
	rows, err := r.pool.Query(ctx, query, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.ID, &p.ListingID, &p.Price, &p.Change, &p.ChangePercent, &p.RecordedAt); err != nil {
			return nil, err
		}
		if p.Change != nil {
			prev := p.Price - *p.Change
			p.PreviousPrice = &prev
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func scanListings(rows pgxRows) ([]domain.Listing, error) {
	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows.Scan)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

// scanListing lee las columnas de listingColumns; dest permite anexar columnas extra al final.
func scanListing(scan func(...interface{}) error, extra ...interface{}) (domain.Listing, error) {
	var l domain.Listing
	var city, state, zip, description, status, url, source sql.NullString
	dest := []interface{}{
		&l.ID,
		&l.Address,
		&city,
		&state,
		&zip,
		&l.Price,
		&l.LastPrice,
		&l.Bedrooms,
		&l.Bathrooms,
		&l.Sqft,
		&l.LotSize,
		&l.YearBuilt,
		&l.Zoning,
		&l.LandValue,
		&l.AssessedValue,
		&l.Latitude,
		&l.Longitude,
		&description,
		&status,
		&url,
		&source,
		&l.FirstSeenAt,
		&l.LastSeenAt,
	}
	if err := scan(append(dest, extra...)...); err != nil {
		return domain.Listing{}, err
	}
	l.City = city.String
	l.State = state.String
	l.ZipCode = zip.String
	l.Description = description.String
	l.Status = status.String
	l.URL = url.String
	l.Source = source.String
	return l, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

package destination

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/kailas-cloud/wisata/internal/domain"
	domdest "github.com/kailas-cloud/wisata/internal/domain/destination"
)

const selectDestinations = `
	SELECT p.place_id::text,
	       p.name,
	       COALESCE(c.name, ''),
	       COALESCE(p.description, ''),
	       COALESCE(p.facilities, ''),
	       p.rating,
	       COALESCE(p.review_count, 0),
	       COALESCE(p.image, ''),
	       COALESCE(p.address, ''),
	       COALESCE(p.coordinates, ''),
	       COALESCE(p.opening_hours, ''),
	       COALESCE(p.ticket_info, '')
	FROM rekomendasi_place p
	LEFT JOIN rekomendasi_category c ON c.id = p.category_id`

// PoolConfig bounds the connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresRepo reads destinations from the places/categories tables.
type PostgresRepo struct {
	db *sql.DB
}

// OpenPostgres opens a pool. Connectivity is checked separately via Ping.
func OpenPostgres(dsn string, pool PoolConfig) (*PostgresRepo, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	return &PostgresRepo{db: conn}, nil
}

// Ping checks connectivity.
func (r *PostgresRepo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the database responds or timeout expires.
func (r *PostgresRepo) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := r.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close closes the pool.
func (r *PostgresRepo) Close() {
	_ = r.db.Close()
}

// List returns all destinations ordered by row id.
func (r *PostgresRepo) List(ctx context.Context) ([]domdest.Destination, error) {
	rows, err := r.db.QueryContext(ctx, selectDestinations+" ORDER BY p.id")
	if err != nil {
		return nil, fmt.Errorf("query destinations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domdest.Destination
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate destinations: %w", err)
	}
	return out, nil
}

// Get returns one destination by place id or domain.ErrNotFound.
func (r *PostgresRepo) Get(ctx context.Context, id string) (domdest.Destination, error) {
	row := r.db.QueryRowContext(ctx, selectDestinations+" WHERE p.place_id = $1", id)
	d, err := scanDestination(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domdest.Destination{}, fmt.Errorf("destination %s: %w", id, domain.ErrNotFound)
	}
	return d, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDestination(sc rowScanner) (domdest.Destination, error) {
	var (
		id     string
		a      domdest.Attributes
		rating sql.NullFloat64
	)
	err := sc.Scan(&id, &a.Name, &a.Category, &a.Description, &a.Facilities, &rating,
		&a.ReviewCount, &a.Image, &a.Address, &a.Coordinates, &a.OpeningHours, &a.TicketInfo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domdest.Destination{}, err
		}
		return domdest.Destination{}, fmt.Errorf("scan destination: %w", err)
	}
	if rating.Valid {
		a.Rating = rating.Float64
	}
	return domdest.Reconstruct(id, a), nil
}

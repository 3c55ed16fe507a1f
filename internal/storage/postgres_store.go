package storage

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq"

	"github.com/example/ride-service/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	// quick ping
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

const rideColumns = `id, name, phone, pickup_location, dropoff_location, service_type,
	requested_date, requested_time, hours_needed, start_time, estimated_total, notes,
	quote_price, pickup_eta, ride_duration, distance_miles, duration_minutes,
	status, created_at`

func (p *PostgresStore) CreateRide(ctx context.Context, r *models.Ride) error {
	row := p.db.QueryRowContext(ctx, `
		INSERT INTO rides (
			name, phone, pickup_location, dropoff_location, service_type,
			requested_date, requested_time, hours_needed, start_time, estimated_total, notes,
			status, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,NOW())
		RETURNING id, created_at`,
		r.Name, r.Phone, r.PickupLocation, r.DropoffLocation, r.ServiceType,
		r.RequestedDate, r.RequestedTime, r.HoursNeeded, r.StartTime, r.EstimatedTotal, r.Notes,
		r.Status,
	)
	return row.Scan(&r.ID, &r.CreatedAt)
}

func (p *PostgresStore) GetRide(ctx context.Context, id int64) (*models.Ride, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+rideColumns+` FROM rides WHERE id = $1`, id)
	return scanRide(row)
}

func (p *PostgresStore) ListRides(ctx context.Context, status models.Status) ([]*models.Ride, error) {
	query := `SELECT ` + rideColumns + ` FROM rides WHERE status <> 'deleted' ORDER BY id DESC`
	args := []any{}
	if status != "" {
		query = `SELECT ` + rideColumns + ` FROM rides WHERE status = $1 ORDER BY id DESC`
		args = append(args, status)
	}
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpdateStatus writes the new status and any provided quote fields in a
// single statement. COALESCE keeps absent fields at their stored value,
// so a reversion to pending never clears an earlier quote.
func (p *PostgresStore) UpdateStatus(ctx context.Context, id int64, status models.Status, qf *QuoteFields) (*models.Ride, error) {
	var price, distance, duration *float64
	var eta, rideDur *int
	if qf != nil {
		v := qf.Price
		price = &v
		eta = qf.PickupEta
		rideDur = qf.RideDuration
		distance = qf.DistanceMiles
		duration = qf.DurationMinutes
	}
	row := p.db.QueryRowContext(ctx, `
		UPDATE rides
		SET status = $1,
		    quote_price = COALESCE($2, quote_price),
		    pickup_eta = COALESCE($3, pickup_eta),
		    ride_duration = COALESCE($4, ride_duration),
		    distance_miles = COALESCE($5, distance_miles),
		    duration_minutes = COALESCE($6, duration_minutes)
		WHERE id = $7
		RETURNING `+rideColumns,
		status, price, eta, rideDur, distance, duration, id,
	)
	return scanRide(row)
}

func (p *PostgresStore) DeleteRide(ctx context.Context, id int64) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM rides WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*models.Ride, error) {
	var r models.Ride
	var dropoff, startTime, notes sql.NullString
	var hours sql.NullInt64
	var estTotal sql.NullFloat64
	var quote, distance, duration sql.NullFloat64
	var eta, rideDur sql.NullInt64

	err := row.Scan(
		&r.ID, &r.Name, &r.Phone, &r.PickupLocation, &dropoff, &r.ServiceType,
		&r.RequestedDate, &r.RequestedTime, &hours, &startTime, &estTotal, &notes,
		&quote, &eta, &rideDur, &distance, &duration,
		&r.Status, &r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	r.DropoffLocation = dropoff.String
	r.StartTime = startTime.String
	r.Notes = notes.String
	r.HoursNeeded = int(hours.Int64)
	r.EstimatedTotal = estTotal.Float64
	if quote.Valid {
		r.QuotePrice = &quote.Float64
	}
	if eta.Valid {
		v := int(eta.Int64)
		r.PickupEta = &v
	}
	if rideDur.Valid {
		v := int(rideDur.Int64)
		r.RideDuration = &v
	}
	if distance.Valid {
		r.DistanceMiles = &distance.Float64
	}
	if duration.Valid {
		r.DurationMinutes = &duration.Float64
	}
	return &r, nil
}

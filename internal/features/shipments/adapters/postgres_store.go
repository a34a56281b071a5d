package adapters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"shipone/internal/features/shipments/domain"
	"shipone/internal/features/shipments/ports"
)

const pgUniqueViolation = "23505"

// OpenPostgres opens a pooled Postgres connection using the pgx stdlib
// driver and verifies it with a short ping.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return db, nil
}

// PostgresShipmentStore implements ports.ShipmentStore on Postgres.
// Per-shipment serialization of appends uses SELECT ... FOR UPDATE on the
// shipment row, so the terminal check and the event insert commit together.
// The status column is a materialized view over tracking_events, rewritten
// from a fresh derivation inside the same transaction as every append.
type PostgresShipmentStore struct {
	db *sql.DB
}

// NewPostgresShipmentStore creates a store backed by the given connection.
func NewPostgresShipmentStore(db *sql.DB) *PostgresShipmentStore {
	return &PostgresShipmentStore{db: db}
}

// Migrate creates the schema if it does not exist.
func (s *PostgresShipmentStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS shipments (
			tracking_number     TEXT PRIMARY KEY,
			recipient_name      TEXT NOT NULL,
			recipient_email     TEXT NOT NULL DEFAULT '',
			recipient_phone     TEXT NOT NULL DEFAULT '',
			origin_address      TEXT NOT NULL DEFAULT '',
			destination_address TEXT NOT NULL DEFAULT '',
			origin_city         TEXT NOT NULL,
			destination_city    TEXT NOT NULL,
			origin_country      TEXT NOT NULL,
			destination_country TEXT NOT NULL,
			weight              DOUBLE PRECISION NOT NULL,
			dimensions          TEXT NOT NULL DEFAULT '',
			package_type        TEXT NOT NULL,
			service_type        TEXT NOT NULL,
			cost                DOUBLE PRECISION NOT NULL DEFAULT 0,
			currency            TEXT NOT NULL DEFAULT 'USD',
			status              TEXT NOT NULL,
			estimated_delivery  TIMESTAMPTZ NOT NULL,
			actual_delivery     TIMESTAMPTZ,
			created_at          TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tracking_events (
			id              TEXT PRIMARY KEY,
			tracking_number TEXT NOT NULL REFERENCES shipments(tracking_number) ON DELETE CASCADE,
			seq             BIGINT NOT NULL,
			event_type      TEXT NOT NULL,
			description     TEXT NOT NULL,
			location        TEXT NOT NULL DEFAULT '',
			ts              TIMESTAMPTZ NOT NULL,
			UNIQUE (tracking_number, seq)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Insert persists a new shipment and its synthetic created event in one
// transaction.
func (s *PostgresShipmentStore) Insert(ctx context.Context, shipment *domain.Shipment, initial domain.TrackingEvent) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO shipments (
			tracking_number, recipient_name, recipient_email, recipient_phone,
			origin_address, destination_address,
			origin_city, destination_city, origin_country, destination_country,
			weight, dimensions, package_type, service_type,
			cost, currency, status, estimated_delivery, actual_delivery, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
	`,
		shipment.TrackingNumber, shipment.RecipientName, shipment.RecipientEmail, shipment.RecipientPhone,
		shipment.OriginAddress, shipment.DestinationAddress,
		shipment.OriginCity, shipment.DestinationCity, shipment.OriginCountry, shipment.DestinationCountry,
		shipment.Weight, shipment.Dimensions, string(shipment.PackageType), string(shipment.ServiceType),
		shipment.Cost, shipment.Currency, string(shipment.Status),
		shipment.EstimatedDelivery, shipment.ActualDelivery, shipment.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrDuplicateTrackingNumber
		}
		return fmt.Errorf("failed to insert shipment: %w", err)
	}

	initial.TrackingNumber = shipment.TrackingNumber
	initial.Sequence = 1
	if err := insertEvent(ctx, tx, initial); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit insert: %w", err)
	}
	return nil
}

// Append admits an event. The shipment row is locked for the duration of
// the transaction, so the terminal check cannot be bypassed by a race.
func (s *PostgresShipmentStore) Append(ctx context.Context, trackingNumber string, event domain.TrackingEvent) (ports.AppendResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ports.AppendResult{}, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	shipment, err := scanShipment(tx.QueryRowContext(ctx,
		selectShipment+` WHERE tracking_number = $1 FOR UPDATE`, trackingNumber))
	if err != nil {
		return ports.AppendResult{}, err
	}
	if shipment.Status.Terminal() {
		return ports.AppendResult{}, domain.ErrShipmentTerminal
	}

	previous := shipment.Status

	var seq int64
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) + 1 FROM tracking_events WHERE tracking_number = $1
	`, trackingNumber).Scan(&seq)
	if err != nil {
		return ports.AppendResult{}, fmt.Errorf("failed to assign sequence: %w", err)
	}

	event.TrackingNumber = trackingNumber
	event.Sequence = seq
	if err := insertEvent(ctx, tx, event); err != nil {
		return ports.AppendResult{}, err
	}

	events, err := queryEvents(ctx, tx, trackingNumber)
	if err != nil {
		return ports.AppendResult{}, err
	}

	d := domain.Derive(events)
	shipment.Status = d.Status
	shipment.ActualDelivery = d.ActualDelivery

	_, err = tx.ExecContext(ctx, `
		UPDATE shipments SET status = $1, actual_delivery = $2 WHERE tracking_number = $3
	`, string(d.Status), d.ActualDelivery, trackingNumber)
	if err != nil {
		return ports.AppendResult{}, fmt.Errorf("failed to update derived status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return ports.AppendResult{}, fmt.Errorf("failed to commit append: %w", err)
	}

	return ports.AppendResult{
		Sequence: seq,
		Previous: previous,
		Current:  d.Status,
		Shipment: shipment,
	}, nil
}

// ListOrdered returns the shipment's events ordered for derivation.
func (s *PostgresShipmentStore) ListOrdered(ctx context.Context, trackingNumber string) ([]domain.TrackingEvent, error) {
	if err := s.exists(ctx, trackingNumber); err != nil {
		return nil, err
	}
	return queryEvents(ctx, s.db, trackingNumber)
}

// Get returns the shipment and its ordered event log.
func (s *PostgresShipmentStore) Get(ctx context.Context, trackingNumber string) (*domain.Shipment, []domain.TrackingEvent, error) {
	shipment, err := scanShipment(s.db.QueryRowContext(ctx,
		selectShipment+` WHERE tracking_number = $1`, trackingNumber))
	if err != nil {
		return nil, nil, err
	}

	events, err := queryEvents(ctx, s.db, trackingNumber)
	if err != nil {
		return nil, nil, err
	}
	return shipment, events, nil
}

// List returns shipments matching the filter, newest first.
func (s *PostgresShipmentStore) List(ctx context.Context, filter string) ([]domain.Shipment, error) {
	query := selectShipment
	args := []any{}
	if filter != "" {
		query += ` WHERE tracking_number ILIKE $1 OR recipient_name ILIKE $1 OR destination_city ILIKE $1`
		args = append(args, "%"+filter+"%")
	}
	query += ` ORDER BY created_at DESC, tracking_number ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Shipment, 0)
	for rows.Next() {
		shipment, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *shipment)
	}
	return out, rows.Err()
}

// All returns every shipment with its event log.
func (s *PostgresShipmentStore) All(ctx context.Context) ([]ports.StoredShipment, error) {
	shipments, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}

	out := make([]ports.StoredShipment, 0, len(shipments))
	for _, shipment := range shipments {
		events, err := queryEvents(ctx, s.db, shipment.TrackingNumber)
		if err != nil {
			return nil, err
		}
		out = append(out, ports.StoredShipment{Shipment: shipment, Events: events})
	}
	return out, nil
}

func (s *PostgresShipmentStore) exists(ctx context.Context, trackingNumber string) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM shipments WHERE tracking_number = $1`, trackingNumber).Scan(&one)
	if err == sql.ErrNoRows {
		return domain.ErrShipmentNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check shipment: %w", err)
	}
	return nil
}

const selectShipment = `
	SELECT
		tracking_number, recipient_name, recipient_email, recipient_phone,
		origin_address, destination_address,
		origin_city, destination_city, origin_country, destination_country,
		weight, dimensions, package_type, service_type,
		cost, currency, status, estimated_delivery, actual_delivery, created_at
	FROM shipments`

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanShipment(row rowScanner) (*domain.Shipment, error) {
	var shipment domain.Shipment
	var packageType, serviceType, status string
	var actualDelivery sql.NullTime

	err := row.Scan(
		&shipment.TrackingNumber, &shipment.RecipientName, &shipment.RecipientEmail, &shipment.RecipientPhone,
		&shipment.OriginAddress, &shipment.DestinationAddress,
		&shipment.OriginCity, &shipment.DestinationCity, &shipment.OriginCountry, &shipment.DestinationCountry,
		&shipment.Weight, &shipment.Dimensions, &packageType, &serviceType,
		&shipment.Cost, &shipment.Currency, &status,
		&shipment.EstimatedDelivery, &actualDelivery, &shipment.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrShipmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan shipment: %w", err)
	}

	shipment.PackageType = domain.PackageType(packageType)
	shipment.ServiceType = domain.ServiceType(serviceType)
	shipment.Status = domain.Status(status)
	if actualDelivery.Valid {
		t := actualDelivery.Time
		shipment.ActualDelivery = &t
	}
	return &shipment, nil
}

// execer covers both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func insertEvent(ctx context.Context, db execer, event domain.TrackingEvent) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO tracking_events (id, tracking_number, seq, event_type, description, location, ts)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		event.ID, event.TrackingNumber, event.Sequence,
		string(event.Type), event.Description, event.Location, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tracking event: %w", err)
	}
	return nil
}

func queryEvents(ctx context.Context, db execer, trackingNumber string) ([]domain.TrackingEvent, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, tracking_number, seq, event_type, description, location, ts
		FROM tracking_events
		WHERE tracking_number = $1
		ORDER BY ts ASC, seq ASC
	`, trackingNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracking events: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TrackingEvent, 0)
	for rows.Next() {
		var ev domain.TrackingEvent
		var eventType string
		if err := rows.Scan(&ev.ID, &ev.TrackingNumber, &ev.Sequence,
			&eventType, &ev.Description, &ev.Location, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan tracking event: %w", err)
		}
		ev.Type = domain.EventType(eventType)
		out = append(out, ev)
	}
	return out, rows.Err()
}

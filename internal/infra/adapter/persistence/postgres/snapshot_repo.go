// Package postgres stores published timetable datasets in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"flight-timetable/internal/domain/entity"
)

// SnapshotRepo keeps one row set per dataset version.
type SnapshotRepo struct{ db *sql.DB }

// NewSnapshotRepo creates a SnapshotRepo over db.
func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Save replaces the snapshot for meta.Version with flights and airports in one transaction.
// Flights and airports keep their input position.
func (repo *SnapshotRepo) Save(ctx context.Context, meta entity.Metadata, flights []entity.FlightEntry, airports []entity.CatalogEntry) (err error) {
	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Save: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const deleteSnapshot = `DELETE FROM timetable_snapshots WHERE version = $1`
	if _, err = tx.ExecContext(ctx, deleteSnapshot, meta.Version); err != nil {
		return fmt.Errorf("Save: delete: %w", err)
	}

	const insertSnapshot = `
INSERT INTO timetable_snapshots (version, valid_from, valid_to, flight_count)
VALUES ($1, $2, $3, $4)`
	if _, err = tx.ExecContext(ctx, insertSnapshot, meta.Version, meta.ValidFrom, meta.ValidTo, meta.FlightCount); err != nil {
		return fmt.Errorf("Save: insert snapshot: %w", err)
	}

	if err = insertFlights(ctx, tx, meta.Version, flights); err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	if err = insertAirports(ctx, tx, meta.Version, airports); err != nil {
		return fmt.Errorf("Save: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("Save: commit: %w", err)
	}
	return nil
}

func insertFlights(ctx context.Context, tx *sql.Tx, version int, flights []entity.FlightEntry) error {
	const query = `
INSERT INTO timetable_flights (
    version, position, flight_number, airline,
    departure_code, departure_name, departure_time,
    arrival_code, arrival_name, arrival_time,
    operating_days
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::smallint[])`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare flights: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, f := range flights {
		if _, err := stmt.ExecContext(ctx,
			version, i, f.FlightNumber, f.Airline,
			f.Departure.AirportCode, f.Departure.Airport, f.Departure.Time,
			f.Arrival.AirportCode, f.Arrival.Airport, f.Arrival.Time,
			intArray(f.OperatingDays),
		); err != nil {
			return fmt.Errorf("insert flight %s: %w", f.FlightNumber, err)
		}
	}
	return nil
}

func insertAirports(ctx context.Context, tx *sql.Tx, version int, airports []entity.CatalogEntry) error {
	const query = `
INSERT INTO timetable_airports (version, position, code, name, full_name, region)
VALUES ($1, $2, $3, $4, $5, $6)`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare airports: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, a := range airports {
		if _, err := stmt.ExecContext(ctx, version, i, a.Code, a.ShortName, a.FullName, a.Region); err != nil {
			return fmt.Errorf("insert airport %s: %w", a.Code, err)
		}
	}
	return nil
}

// LatestVersion returns the newest stored version, or 0 when nothing is stored.
func (repo *SnapshotRepo) LatestVersion(ctx context.Context) (int, error) {
	const query = `SELECT COALESCE(MAX(version), 0) FROM timetable_snapshots`
	var version int
	if err := repo.db.QueryRowContext(ctx, query).Scan(&version); err != nil {
		return 0, fmt.Errorf("LatestVersion: %w", err)
	}
	return version, nil
}

// Flights returns the stored flights of version in the order they were saved.
// Every stored flight operates daily, so OperatingDays is always the full week.
func (repo *SnapshotRepo) Flights(ctx context.Context, version int) ([]entity.FlightEntry, error) {
	const query = `
SELECT flight_number, airline,
       departure_code, departure_name, departure_time,
       arrival_code, arrival_name, arrival_time
FROM timetable_flights
WHERE version = $1
ORDER BY position`
	rows, err := repo.db.QueryContext(ctx, query, version)
	if err != nil {
		return nil, fmt.Errorf("Flights: %w", err)
	}
	defer func() { _ = rows.Close() }()

	flights := make([]entity.FlightEntry, 0, 256)
	for rows.Next() {
		var f entity.FlightEntry
		if err := rows.Scan(
			&f.FlightNumber, &f.Airline,
			&f.Departure.AirportCode, &f.Departure.Airport, &f.Departure.Time,
			&f.Arrival.AirportCode, &f.Arrival.Airport, &f.Arrival.Time,
		); err != nil {
			return nil, fmt.Errorf("Flights: %w", err)
		}
		f.OperatingDays = entity.FullWeek()
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

// intArray renders days as a PostgreSQL array literal.
func intArray(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

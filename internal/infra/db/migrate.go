package db

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS timetable_snapshots (
    version      INTEGER PRIMARY KEY,
    valid_from   DATE NOT NULL,
    valid_to     DATE NOT NULL,
    flight_count INTEGER NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS timetable_flights (
    version          INTEGER NOT NULL REFERENCES timetable_snapshots(version) ON DELETE CASCADE,
    position         INTEGER NOT NULL,
    flight_number    TEXT NOT NULL,
    airline          TEXT NOT NULL,
    departure_code   CHAR(3) NOT NULL,
    departure_name   TEXT NOT NULL,
    departure_time   TEXT NOT NULL,
    arrival_code     CHAR(3) NOT NULL,
    arrival_name     TEXT NOT NULL,
    arrival_time     TEXT NOT NULL,
    operating_days   SMALLINT[] NOT NULL,
    PRIMARY KEY (version, flight_number, departure_time)
)`,
	`CREATE TABLE IF NOT EXISTS timetable_airports (
    version    INTEGER NOT NULL REFERENCES timetable_snapshots(version) ON DELETE CASCADE,
    position   INTEGER NOT NULL,
    code       CHAR(3) NOT NULL,
    name       TEXT NOT NULL,
    full_name  TEXT NOT NULL,
    region     TEXT NOT NULL,
    PRIMARY KEY (version, code)
)`,
	`ALTER TABLE timetable_flights ADD COLUMN IF NOT EXISTS position INTEGER NOT NULL DEFAULT 0`,
	`CREATE INDEX IF NOT EXISTS idx_timetable_flights_departure ON timetable_flights(version, departure_code)`,
	`CREATE INDEX IF NOT EXISTS idx_timetable_flights_arrival ON timetable_flights(version, arrival_code)`,
}

// MigrateUp creates the snapshot tables and indexes. It is safe to run repeatedly.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}

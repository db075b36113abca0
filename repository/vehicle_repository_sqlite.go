package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"talktotoyota/domain"
)

// SQLiteVehicleRepository backs the catalog with a SQLite database.
// Columns hold the queryable fields; the full vehicle record is kept as a
// JSON document so nested specs survive round-trips without a wide schema.
type SQLiteVehicleRepository struct {
	db *sql.DB
}

// NewSQLiteVehicleRepository opens (or creates) the database, runs
// migrations and seeds the catalog from the embedded data when empty.
func NewSQLiteVehicleRepository(dbPath string) (*SQLiteVehicleRepository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so catalog reads don't block on writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteVehicleRepository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := r.seedIfEmpty(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed: %w", err)
	}
	return r, nil
}

func (r *SQLiteVehicleRepository) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS vehicles (
			id       TEXT PRIMARY KEY,
			name     TEXT NOT NULL,
			price    REAL NOT NULL,
			msrp     REAL NOT NULL,
			category TEXT NOT NULL,
			type     TEXT NOT NULL,
			document TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_category ON vehicles(category)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteVehicleRepository) seedIfEmpty() error {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM vehicles`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	vehicles, err := SeedVehicles()
	if err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, v := range vehicles {
		doc, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode vehicle %s: %w", v.ID, err)
		}
		if _, err := tx.Exec(`INSERT INTO vehicles (id, name, price, msrp, category, type, document)
			VALUES (?,?,?,?,?,?,?)`,
			v.ID, v.Name, v.Price, v.MSRP, v.Category, v.Type, string(doc),
		); err != nil {
			return fmt.Errorf("insert vehicle %s: %w", v.ID, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteVehicleRepository) List(ctx context.Context, category string) ([]domain.Vehicle, error) {
	query := `SELECT document FROM vehicles ORDER BY price`
	args := []any{}
	if category != "" {
		query = `SELECT document FROM vehicles WHERE category = ? ORDER BY price`
		args = append(args, category)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var out []domain.Vehicle
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var v domain.Vehicle
		if err := json.Unmarshal([]byte(doc), &v); err != nil {
			return nil, fmt.Errorf("decode vehicle document: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *SQLiteVehicleRepository) Get(ctx context.Context, id string) (domain.Vehicle, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT document FROM vehicles WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Vehicle{}, ErrVehicleNotFound
	}
	if err != nil {
		return domain.Vehicle{}, fmt.Errorf("get vehicle: %w", err)
	}

	var v domain.Vehicle
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		return domain.Vehicle{}, fmt.Errorf("decode vehicle document: %w", err)
	}
	return v, nil
}

func (r *SQLiteVehicleRepository) Close() error {
	return r.db.Close()
}

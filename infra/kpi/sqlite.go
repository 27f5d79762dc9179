package kpi

import (
	"database/sql"

	core "github.com/gridsmith/powerplan/core/metrics/fuel"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists fuel KPI records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS fuel_kpi (
        run_id TEXT,
        year INTEGER,
        delivered_mwh REAL,
        fuel_mmbtu REAL,
        gas_mcf REAL,
        PRIMARY KEY(run_id, year)
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Add inserts or updates the KPI record.
func (s *SQLiteStore) Add(r core.Record) error {
	_, err := s.db.Exec(`INSERT INTO fuel_kpi (run_id, year, delivered_mwh, fuel_mmbtu, gas_mcf)
        VALUES (?, ?, ?, ?, ?)
        ON CONFLICT(run_id, year) DO UPDATE SET
            delivered_mwh = delivered_mwh + excluded.delivered_mwh,
            fuel_mmbtu = fuel_mmbtu + excluded.fuel_mmbtu,
            gas_mcf = gas_mcf + excluded.gas_mcf`,
		r.RunID, r.Year, r.DeliveredMWh, r.FuelMMBtu, r.GasMCF)
	return err
}

// Query returns records in the range [startYear,endYear].
func (s *SQLiteStore) Query(runID string, startYear, endYear int) ([]core.Record, error) {
	rows, err := s.db.Query(`SELECT run_id, year, delivered_mwh, fuel_mmbtu, gas_mcf
        FROM fuel_kpi WHERE run_id = ? AND year >= ? AND year <= ? ORDER BY year`,
		runID, startYear, endYear)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []core.Record
	for rows.Next() {
		var r core.Record
		if err := rows.Scan(&r.RunID, &r.Year, &r.DeliveredMWh, &r.FuelMMBtu, &r.GasMCF); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

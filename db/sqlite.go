package db

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver registration

	"dive-roast/dive"
	"dive-roast/utils"
)

type SQLiteClient struct {
	db *sql.DB
}

func NewSQLiteClient(dataSourceName string) (*SQLiteClient, error) {
	// Extract the file path before query parameters
	dbPath := dataSourceName
	if idx := strings.Index(dataSourceName, "?"); idx != -1 {
		dbPath = dataSourceName[:idx]
	}

	dbDir := filepath.Dir(dbPath)
	if dbDir != "." && dbDir != "" {
		if err := utils.CreateFolder(dbDir); err != nil {
			return nil, fmt.Errorf("error creating database directory: %s", err)
		}
	}

	// Add busy timeout param to DSN (milliseconds)
	if !strings.Contains(dataSourceName, "_busy_timeout") {
		if strings.Contains(dataSourceName, "?") {
			dataSourceName += "&_busy_timeout=5000" // 5 seconds
		} else {
			dataSourceName += "?_busy_timeout=5000"
		}
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("error connecting to SQLite: %s", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("error creating tables: %s", err)
	}

	return &SQLiteClient{db: db}, nil
}

func createTables(db *sql.DB) error {
	createSamplesTable := `
    CREATE TABLE IF NOT EXISTS dive_samples (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT NOT NULL,
        dive_number TEXT NOT NULL,
        time REAL NOT NULL,
        depth REAL NOT NULL,
        temperature REAL,
        pressure REAL,
        rbt REAL,
        ndl REAL,
        sac_rate REAL,
        rating INTEGER,
        dive_site_name TEXT,
        trip_name TEXT,
        latitude REAL,
        longitude REAL
    );
    CREATE INDEX IF NOT EXISTS idx_dive_samples_session ON dive_samples(session_id);
    CREATE INDEX IF NOT EXISTS idx_dive_samples_dive ON dive_samples(session_id, dive_number);
    `

	createPromptsTable := `
    CREATE TABLE IF NOT EXISTS prompts (
        name TEXT PRIMARY KEY,
        text TEXT NOT NULL
    );
    `

	if _, err := db.Exec(createSamplesTable); err != nil {
		return fmt.Errorf("error creating dive_samples table: %s", err)
	}
	if _, err := db.Exec(createPromptsTable); err != nil {
		return fmt.Errorf("error creating prompts table: %s", err)
	}
	return nil
}

func (c *SQLiteClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// StoreDiveLog persists one session's sample rows in a single transaction.
func (c *SQLiteClient) StoreDiveLog(sessionID string, samples []dive.Sample) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %s", err)
	}

	stmt, err := tx.Prepare(`
        INSERT INTO dive_samples (
            session_id, dive_number, time, depth, temperature, pressure,
            rbt, ndl, sac_rate, rating, dive_site_name, trip_name,
            latitude, longitude
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("error preparing statement: %s", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		_, err := stmt.Exec(
			sessionID, s.DiveNumber, s.Time, s.Depth,
			s.Temperature, s.Pressure, s.RBT, s.NDL,
			s.SACRate, s.Rating,
			nullableString(s.DiveSiteName), nullableString(s.TripName),
			s.Latitude, s.Longitude,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("error executing statement: %s", err)
		}
	}

	return tx.Commit()
}

func (c *SQLiteClient) GetDiveLog(sessionID string) ([]dive.Sample, error) {
	rows, err := c.db.Query(`
        SELECT dive_number, time, depth, temperature, pressure, rbt, ndl,
               sac_rate, rating, dive_site_name, trip_name, latitude, longitude
        FROM dive_samples
        WHERE session_id = ?
        ORDER BY id
    `, sessionID)
	if err != nil {
		return nil, fmt.Errorf("error querying dive samples: %s", err)
	}
	defer rows.Close()

	var samples []dive.Sample
	for rows.Next() {
		var s dive.Sample
		var siteName, tripName sql.NullString
		err := rows.Scan(
			&s.DiveNumber, &s.Time, &s.Depth,
			&s.Temperature, &s.Pressure, &s.RBT, &s.NDL,
			&s.SACRate, &s.Rating,
			&siteName, &tripName, &s.Latitude, &s.Longitude,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning dive sample: %s", err)
		}
		s.DiveSiteName = siteName.String
		s.TripName = tripName.String
		samples = append(samples, s)
	}

	return samples, rows.Err()
}

func (c *SQLiteClient) DeleteDiveLog(sessionID string) error {
	if _, err := c.db.Exec("DELETE FROM dive_samples WHERE session_id = ?", sessionID); err != nil {
		return fmt.Errorf("error deleting dive log: %s", err)
	}
	return nil
}

func (c *SQLiteClient) GetPrompt(name string) (string, bool, error) {
	var text string
	err := c.db.QueryRow("SELECT text FROM prompts WHERE name = ?", name).Scan(&text)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("error retrieving prompt: %s", err)
	}
	return text, true, nil
}

func (c *SQLiteClient) StorePrompt(name, text string) error {
	if _, err := c.db.Exec("INSERT OR REPLACE INTO prompts (name, text) VALUES (?, ?)", name, text); err != nil {
		return fmt.Errorf("error storing prompt: %s", err)
	}
	return nil
}

func nullableString(s string) interface{} {
	if s == "" || s == "N/A" {
		return nil
	}
	return s
}

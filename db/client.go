package db

import (
	"strings"

	"dive-roast/dive"
	"dive-roast/utils"
)

// DBClient persists uploaded dive logs and system prompts. Two
// implementations exist: sqlite (default) and mongo, selected by DB_TYPE.
type DBClient interface {
	Close() error

	StoreDiveLog(sessionID string, samples []dive.Sample) error
	GetDiveLog(sessionID string) ([]dive.Sample, error)
	DeleteDiveLog(sessionID string) error

	// GetPrompt is the remote tier of prompt resolution; callers fall back
	// to the compiled-in constants when it reports no row.
	GetPrompt(name string) (string, bool, error)
	StorePrompt(name, text string) error
}

// NewDBClient instantiates the configured database client.
func NewDBClient() (DBClient, error) {
	dbType := strings.ToLower(utils.GetEnv("DB_TYPE", "sqlite"))
	if dbType == "mongo" {
		return NewMongoClient(utils.GetEnv("DB_URI", "mongodb://localhost:27017"))
	}
	return NewSQLiteClient(utils.GetEnv("DB_URI", "db/dive-roast.db"))
}

package config

const (
	// DefaultDatabasePath is where the SQLite database lives unless
	// DATABASE_PATH is set.
	DefaultDatabasePath = "./athena.db"

	// DefaultCoversDir is where downloaded cover images are cached unless
	// COVERS_DIR is set.
	DefaultCoversDir = "./covers"
)

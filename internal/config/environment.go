package config

import (
	"database/sql"
	"log/slog"
	"time"
)

// Environment bundles the process-wide dependencies built once in main and
// handed to the server and tools.
type Environment struct {
	Config *Config
	DB     *sql.DB
	Logger *slog.Logger
	Now    func() time.Time
}

package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectDriver(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Driver
	}{
		{"empty url defaults to sqlite", "", DriverSQLite},
		{"postgres scheme", "postgres://localhost:5432/subtrack", DriverPostgres},
		{"postgresql scheme", "postgresql://localhost:5432/subtrack", DriverPostgres},
		{"sqlite scheme", "sqlite:///tmp/subtrack.db", DriverSQLite},
		{"file prefix", "file:subtrack.db", DriverSQLite},
		{"db suffix", "/home/user/.subtrack/subtrack.db", DriverSQLite},
		{"sqlite3 suffix", "data.sqlite3", DriverSQLite},
		{"bare host falls back to postgres", "localhost:5432", DriverPostgres},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDriver(tt.url))
		})
	}
}

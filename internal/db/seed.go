package db

import (
	"database/sql"
	"fmt"

	"github.com/example/nextaction/internal/core/taskcontext"
)

// DefaultPriorities are seeded in rank order.
var DefaultPriorities = []string{"High", "Medium", "Low"}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// SeedDefaults inserts the default contexts and priorities. Rows that already
// exist are left alone, so seeding twice is harmless.
func SeedDefaults(database execer) error {
	for i, name := range taskcontext.Defaults {
		if _, err := database.Exec(
			"INSERT OR IGNORE INTO contexts (id, name) VALUES (?, ?)",
			fmt.Sprintf("CTX-%03d", i+1), name,
		); err != nil {
			return fmt.Errorf("seed contexts: %w", err)
		}
	}

	for i, name := range DefaultPriorities {
		if _, err := database.Exec(
			"INSERT OR IGNORE INTO priorities (id, name, rank) VALUES (?, ?, ?)",
			fmt.Sprintf("PRI-%03d", i+1), name, i+1,
		); err != nil {
			return fmt.Errorf("seed priorities: %w", err)
		}
	}

	return nil
}

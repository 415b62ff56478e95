package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		// IF NOT EXISTS adopts library files written before migrations were
		// tracked, which already carry this exact table.
		_, err := db.Exec(`
			CREATE TABLE IF NOT EXISTS audiobooks (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT NOT NULL,
				author TEXT,
				narrator TEXT,
				duration TEXT,
				genre TEXT,
				description TEXT,
				cover_url TEXT,
				goodreads_url TEXT,
				rating REAL,
				date_added DATETIME DEFAULT CURRENT_TIMESTAMP,
				date_started_listening DATETIME,
				date_end_listened DATETIME,
				notes TEXT,
				status TEXT DEFAULT 'to_listen'
			)
`)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec("DROP TABLE IF EXISTS audiobooks")
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}

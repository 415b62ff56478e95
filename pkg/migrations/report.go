package migrations

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

const audiobooksTable = "audiobooks"

// Report is a snapshot of a library file's schema.
type Report struct {
	Applied []string
	Pending []string

	// HasAudiobooks is false for a brand new file.
	HasAudiobooks bool
	Audiobooks    int

	// Untracked is set when the audiobooks table exists but no migration has
	// been recorded for it. Files written by the old server look like this,
	// and the first migration adopts the table as is.
	Untracked bool
}

// Inspect reads the migration bookkeeping and the audiobooks table without
// changing either.
func Inspect(ctx context.Context, db *bun.DB) (*Report, error) {
	report := &Report{}

	tracked, err := tableExists(ctx, db, "bun_migrations")
	if err != nil {
		return nil, err
	}
	if tracked {
		ms, err := NewMigrator(db).MigrationsWithStatus(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		for _, m := range ms.Applied() {
			report.Applied = append(report.Applied, m.Name)
		}
		for _, m := range ms.Unapplied() {
			report.Pending = append(report.Pending, m.Name)
		}
	} else {
		for _, m := range Migrations.Sorted() {
			report.Pending = append(report.Pending, m.Name)
		}
	}

	report.HasAudiobooks, err = tableExists(ctx, db, audiobooksTable)
	if err != nil {
		return nil, err
	}
	if report.HasAudiobooks {
		report.Audiobooks, err = db.NewSelect().Table(audiobooksTable).Count(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}
	report.Untracked = report.HasAudiobooks && len(report.Applied) == 0

	return report, nil
}

func tableExists(ctx context.Context, db *bun.DB, name string) (bool, error) {
	var n int
	err := db.NewRaw("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(ctx, &n)
	if err != nil {
		return false, errors.WithStack(err)
	}
	return n > 0, nil
}

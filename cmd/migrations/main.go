package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/listenlog/listenlog/pkg/config"
	"github.com/listenlog/listenlog/pkg/database"
	"github.com/listenlog/listenlog/pkg/migrations"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

// newMigrationTemplate follows the layout of the audiobooks migration: raw
// SQLite DDL, errors wrapped with a stack, and a down that undoes the up.
const newMigrationTemplate = `package %s

import (
	"context"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

func init() {
	up := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(` + "`" + `
			ALTER TABLE audiobooks ADD COLUMN ...
` + "`" + `)
		return errors.WithStack(err)
	}

	down := func(_ context.Context, db *bun.DB) error {
		_, err := db.Exec(` + "`" + `
			ALTER TABLE audiobooks DROP COLUMN ...
` + "`" + `)
		return errors.WithStack(err)
	}

	Migrations.MustRegister(up, down)
}
`

type tool struct {
	log logger.Logger
	db  *bun.DB
}

func main() {
	log := logger.New()
	t := &tool{log: log}

	app := &cli.App{
		Name:  "migrations",
		Usage: "inspect and change the schema of a listenlog library file",
		Before: func(*cli.Context) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}
			t.db, err = database.New(cfg)
			if err != nil {
				return err
			}
			log.Info("library opened", logger.Data{"path": cfg.DatabaseFilePath})
			return nil
		},
		After: func(*cli.Context) error {
			if t.db == nil {
				return nil
			}
			return errors.WithStack(t.db.Close())
		},
		Commands: []*cli.Command{
			{Name: "status", Usage: "show applied and pending migrations and the size of the library", Action: t.status},
			{Name: "up", Usage: "apply pending migrations, adopting a library from before migrations were tracked", Action: t.up},
			{Name: "down", Usage: "roll back the most recent migration group", Action: t.down},
			{Name: "new", Usage: "write a new migration file", ArgsUsage: "<words describing the change>", Action: t.create},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Err(err).Error("migrations failed")
		os.Exit(1)
	}
}

func (t *tool) status(c *cli.Context) error {
	report, err := migrations.Inspect(c.Context, t.db)
	if err != nil {
		return err
	}

	fmt.Printf("applied: %s\n", listOrNone(report.Applied))
	fmt.Printf("pending: %s\n", listOrNone(report.Pending))
	switch {
	case !report.HasAudiobooks:
		fmt.Println("audiobooks: no table yet")
	case report.Untracked:
		fmt.Printf("audiobooks: %d rows in a table from before migrations were tracked; \"up\" will adopt it\n", report.Audiobooks)
	default:
		fmt.Printf("audiobooks: %d rows\n", report.Audiobooks)
	}
	return nil
}

func (t *tool) up(c *cli.Context) error {
	before, err := migrations.Inspect(c.Context, t.db)
	if err != nil {
		return err
	}

	group, err := migrations.BringUpToDate(c.Context, t.db)
	if err != nil {
		return err
	}

	if before.Untracked {
		t.log.Info("adopted existing audiobooks table", logger.Data{"rows": before.Audiobooks})
	}
	if group.ID == 0 {
		t.log.Info("schema already up to date")
		return nil
	}
	t.log.Info("applied migrations", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	return nil
}

func (t *tool) down(c *cli.Context) error {
	group, err := migrations.NewMigrator(t.db).Rollback(c.Context)
	if err != nil {
		return errors.WithStack(err)
	}
	if group.ID == 0 {
		t.log.Info("nothing to roll back")
		return nil
	}
	t.log.Warn("rolled back migrations", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	return nil
}

func (t *tool) create(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("describe the migration, e.g. \"new add series column\"")
	}
	name := strings.ToLower(strings.Join(c.Args().Slice(), "_"))

	mf, err := migrations.NewMigrator(t.db).CreateGoMigration(c.Context, name, migrate.WithGoTemplate(newMigrationTemplate))
	if err != nil {
		return errors.WithStack(err)
	}
	t.log.Info("migration written", logger.Data{"name": mf.Name, "path": mf.Path})
	return nil
}

func listOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

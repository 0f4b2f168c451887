package commands

import (
	"github.com/soheilade/atomic-server/am"
	"github.com/soheilade/atomic-server/db"
	"github.com/soheilade/atomic-server/errors"
	"github.com/soheilade/atomic-server/logger"
	"github.com/soheilade/atomic-server/store"
)

// openStore opens and migrates the SQLite store. An empty dbPath falls back
// to store.path from am config. The returned close func must be called.
func openStore(dbPath string) (*store.SQLStore, func(), error) {
	if dbPath == "" {
		cfg, err := am.Load()
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to load configuration")
		}
		dbPath = cfg.GetStorePath()
	}

	database, err := db.OpenWithMigrations(dbPath, logger.ComponentLogger("db"))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open store at %s", dbPath)
	}

	closeFn := func() {
		if err := database.Close(); err != nil {
			logger.Warnw("Failed to close store", logger.FieldPath, dbPath, logger.FieldError, err)
		}
	}
	return store.NewSQLStore(database, logger.ComponentLogger("store")), closeFn, nil
}

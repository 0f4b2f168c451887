package store

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/soheilade/atomic-server/atomic"
	"github.com/soheilade/atomic-server/db"
	"github.com/soheilade/atomic-server/errors"
)

// Query constants
const (
	AtomUpsertQuery = `
		INSERT INTO atoms (subject, property, value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (subject, property) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP`

	AtomSelectQuery = `
		SELECT subject, property, value FROM atoms
		ORDER BY subject, property`

	AtomCountQuery = `
		SELECT COUNT(*), COUNT(DISTINCT subject) FROM atoms`
)

// SQLStore persists atoms in SQLite. Validation runs against the in-memory
// Store that Load hydrates from it.
type SQLStore struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewSQLStore creates a SQL-backed atom store. A nil logger disables logging.
func NewSQLStore(database *sql.DB, logger *zap.SugaredLogger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SQLStore{
		db:     database,
		logger: logger,
	}
}

// AddAtoms upserts every atom in one transaction.
func (s *SQLStore) AddAtoms(ctx context.Context, atoms []atomic.Atom) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		if db.IsDatabaseClosed(err) {
			return errors.Mark(errors.Wrap(err, "begin atom import"), db.ErrDatabaseClosed)
		}
		return errors.Wrap(err, "begin atom import")
	}

	for _, a := range atoms {
		if a.Subject == "" || a.Property == "" {
			tx.Rollback()
			return errors.NewInvalidRequestError("atom %s: subject and property must not be empty", a)
		}
		if _, err := tx.ExecContext(ctx, AtomUpsertQuery, a.Subject, a.Property, a.Value); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "insert atom %s", a)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit atom import")
	}

	s.logger.Infow("Imported atoms", "count", len(atoms))
	return nil
}

// Atoms returns every stored atom ordered by subject, then property.
func (s *SQLStore) Atoms(ctx context.Context) ([]atomic.Atom, error) {
	rows, err := s.db.QueryContext(ctx, AtomSelectQuery)
	if err != nil {
		if db.IsDatabaseClosed(err) {
			return nil, errors.Mark(errors.Wrap(err, "query atoms"), db.ErrDatabaseClosed)
		}
		return nil, errors.Wrap(err, "query atoms")
	}
	defer rows.Close()

	var atoms []atomic.Atom
	for rows.Next() {
		var a atomic.Atom
		if err := rows.Scan(&a.Subject, &a.Property, &a.Value); err != nil {
			return nil, errors.Wrap(err, "scan atom")
		}
		atoms = append(atoms, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate atoms")
	}
	return atoms, nil
}

// Count returns the number of stored atoms and distinct subjects.
func (s *SQLStore) Count(ctx context.Context) (atoms, resources int, err error) {
	if err := s.db.QueryRowContext(ctx, AtomCountQuery).Scan(&atoms, &resources); err != nil {
		return 0, 0, errors.Wrap(err, "count atoms")
	}
	return atoms, resources, nil
}

// Load hydrates a new in-memory Store with every stored atom.
func (s *SQLStore) Load(ctx context.Context) (*Store, error) {
	mem := New()
	if err := s.LoadInto(ctx, mem); err != nil {
		return nil, err
	}
	return mem, nil
}

// LoadInto adds every stored atom to dst, replacing values dst already holds
// for the same (subject, property).
func (s *SQLStore) LoadInto(ctx context.Context, dst *Store) error {
	atoms, err := s.Atoms(ctx)
	if err != nil {
		return err
	}
	if err := dst.AddAtoms(atoms); err != nil {
		return errors.Wrap(err, "hydrate store")
	}

	s.logger.Debugw("Loaded store from database", "atoms", len(atoms), "resources", dst.Len())
	return nil
}

// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/groblegark/confstore/internal/model"
	"github.com/groblegark/confstore/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateConfiguration(ctx context.Context, c *model.Configuration) error {
	return queryCreateConfiguration(ctx, s.db, c)
}

func (s *PostgresStore) GetConfiguration(ctx context.Context, id string) (*model.Configuration, error) {
	return queryGetConfiguration(ctx, s.db, id)
}

func (s *PostgresStore) GetConfigurationWithVersions(ctx context.Context, id string) (*model.Configuration, error) {
	return queryGetConfigurationWithVersions(ctx, s.db, id)
}

func (s *PostgresStore) ConfigurationNameExists(ctx context.Context, userID, name string) (bool, error) {
	return queryConfigurationNameExists(ctx, s.db, userID, name)
}

func (s *PostgresStore) ListConfigurations(ctx context.Context, userID string, filter model.ConfigurationFilter, page model.Page) ([]*model.Configuration, int, error) {
	return queryListConfigurations(ctx, s.db, userID, filter, page)
}

func (s *PostgresStore) UpdateConfiguration(ctx context.Context, id, name string, data json.RawMessage, token time.Time) (time.Time, error) {
	return queryUpdateConfiguration(ctx, s.db, id, name, data, token)
}

func (s *PostgresStore) MaxVersionNumber(ctx context.Context, configurationID string) (int, error) {
	return queryMaxVersionNumber(ctx, s.db, configurationID)
}

func (s *PostgresStore) InsertVersion(ctx context.Context, v *model.ConfigurationVersion) error {
	return queryInsertVersion(ctx, s.db, v)
}

func (s *PostgresStore) GetVersion(ctx context.Context, configurationID string, versionNumber int) (*model.ConfigurationVersion, error) {
	return queryGetVersion(ctx, s.db, configurationID, versionNumber)
}

func (s *PostgresStore) ListVersions(ctx context.Context, configurationID string, filter model.VersionFilter, page model.Page) ([]*model.ConfigurationVersion, int, error) {
	return queryListVersions(ctx, s.db, configurationID, filter, page)
}

func (s *PostgresStore) ListAllConfigurations(ctx context.Context) ([]*model.Configuration, error) {
	return queryListAllConfigurations(ctx, s.db)
}

func (s *PostgresStore) ListAllSubscriptions(ctx context.Context) ([]*model.Subscription, error) {
	return queryListAllSubscriptions(ctx, s.db)
}

func (s *PostgresStore) GetSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	return queryGetSubscription(ctx, s.db, userID)
}

func (s *PostgresStore) UpsertSubscription(ctx context.Context, sub *model.Subscription) error {
	return queryUpsertSubscription(ctx, s.db, sub)
}

func (s *PostgresStore) DeleteSubscriptions(ctx context.Context, userID string) (int, error) {
	return queryDeleteSubscriptions(ctx, s.db, userID)
}

func (s *PostgresStore) MatchSubscribers(ctx context.Context, t model.EventType) ([]string, error) {
	return queryMatchSubscribers(ctx, s.db, t)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateConfiguration(ctx context.Context, c *model.Configuration) error {
	return queryCreateConfiguration(ctx, s.tx, c)
}

func (s *txStore) GetConfiguration(ctx context.Context, id string) (*model.Configuration, error) {
	return queryGetConfiguration(ctx, s.tx, id)
}

func (s *txStore) GetConfigurationWithVersions(ctx context.Context, id string) (*model.Configuration, error) {
	return queryGetConfigurationWithVersions(ctx, s.tx, id)
}

func (s *txStore) ConfigurationNameExists(ctx context.Context, userID, name string) (bool, error) {
	return queryConfigurationNameExists(ctx, s.tx, userID, name)
}

func (s *txStore) ListConfigurations(ctx context.Context, userID string, filter model.ConfigurationFilter, page model.Page) ([]*model.Configuration, int, error) {
	return queryListConfigurations(ctx, s.tx, userID, filter, page)
}

func (s *txStore) UpdateConfiguration(ctx context.Context, id, name string, data json.RawMessage, token time.Time) (time.Time, error) {
	return queryUpdateConfiguration(ctx, s.tx, id, name, data, token)
}

func (s *txStore) MaxVersionNumber(ctx context.Context, configurationID string) (int, error) {
	return queryMaxVersionNumber(ctx, s.tx, configurationID)
}

func (s *txStore) InsertVersion(ctx context.Context, v *model.ConfigurationVersion) error {
	return queryInsertVersion(ctx, s.tx, v)
}

func (s *txStore) GetVersion(ctx context.Context, configurationID string, versionNumber int) (*model.ConfigurationVersion, error) {
	return queryGetVersion(ctx, s.tx, configurationID, versionNumber)
}

func (s *txStore) ListVersions(ctx context.Context, configurationID string, filter model.VersionFilter, page model.Page) ([]*model.ConfigurationVersion, int, error) {
	return queryListVersions(ctx, s.tx, configurationID, filter, page)
}

func (s *txStore) ListAllConfigurations(ctx context.Context) ([]*model.Configuration, error) {
	return queryListAllConfigurations(ctx, s.tx)
}

func (s *txStore) ListAllSubscriptions(ctx context.Context) ([]*model.Subscription, error) {
	return queryListAllSubscriptions(ctx, s.tx)
}

func (s *txStore) GetSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	return queryGetSubscription(ctx, s.tx, userID)
}

func (s *txStore) UpsertSubscription(ctx context.Context, sub *model.Subscription) error {
	return queryUpsertSubscription(ctx, s.tx, sub)
}

func (s *txStore) DeleteSubscriptions(ctx context.Context, userID string) (int, error) {
	return queryDeleteSubscriptions(ctx, s.tx, userID)
}

func (s *txStore) MatchSubscribers(ctx context.Context, t model.EventType) ([]string, error) {
	return queryMatchSubscribers(ctx, s.tx, t)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/groblegark/confstore/internal/model"
	"github.com/groblegark/confstore/internal/store"
)

// executor abstracts over *sql.DB and *sql.Tx so the query functions can be
// shared between PostgresStore and txStore.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const configurationColumns = `id, user_id, name, data, created_at, updated_at`

const versionColumns = `id, configuration_id, version_number, name, data, created_at`

func queryCreateConfiguration(ctx context.Context, ex executor, c *model.Configuration) error {
	err := ex.QueryRowContext(ctx, `
		INSERT INTO configurations (id, user_id, name, data)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`,
		c.ID, c.UserID, c.Name, []byte(c.Data),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return store.ErrDuplicateName
	}
	if err != nil {
		return fmt.Errorf("insert configuration: %w", err)
	}
	return nil
}

func queryGetConfiguration(ctx context.Context, ex executor, id string) (*model.Configuration, error) {
	row := ex.QueryRowContext(ctx, `
		SELECT `+configurationColumns+`
		FROM configurations
		WHERE id = $1`, id)
	return scanConfiguration(row)
}

func queryGetConfigurationWithVersions(ctx context.Context, ex executor, id string) (*model.Configuration, error) {
	c, err := queryGetConfiguration(ctx, ex, id)
	if err != nil {
		return nil, err
	}

	rows, err := ex.QueryContext(ctx, `
		SELECT `+versionColumns+`
		FROM configuration_versions
		WHERE configuration_id = $1
		ORDER BY version_number DESC`, id)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		c.Versions = append(c.Versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return c, nil
}

func queryConfigurationNameExists(ctx context.Context, ex executor, userID, name string) (bool, error) {
	var exists bool
	err := ex.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM configurations
			WHERE user_id = $1 AND lower(name) = lower($2)
		)`, userID, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check configuration name: %w", err)
	}
	return exists, nil
}

func queryListConfigurations(ctx context.Context, ex executor, userID string, filter model.ConfigurationFilter, page model.Page) ([]*model.Configuration, int, error) {
	page = page.Normalize()

	conditions := []string{"user_id = $1"}
	args := []any{userID}

	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := `
		SELECT ` + configurationColumns + `, COUNT(*) OVER() AS total
		FROM configurations
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY name ASC, created_at DESC`
	args = append(args, page.Limit())
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, page.Offset())
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query configurations: %w", err)
	}
	defer rows.Close()

	var (
		configs []*model.Configuration
		total   int
	)
	for rows.Next() {
		c := &model.Configuration{}
		var data []byte
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &data, &c.CreatedAt, &c.UpdatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan configuration: %w", err)
		}
		c.Data = json.RawMessage(data)
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate configurations: %w", err)
	}
	return configs, total, nil
}

func queryUpdateConfiguration(ctx context.Context, ex executor, id, name string, data json.RawMessage, token time.Time) (time.Time, error) {
	var updatedAt time.Time
	err := ex.QueryRowContext(ctx, `
		UPDATE configurations
		SET name = $2, data = $3, updated_at = NOW()
		WHERE id = $1 AND updated_at = $4
		RETURNING updated_at`,
		id, name, []byte(data), token,
	).Scan(&updatedAt)
	if isUniqueViolation(err) {
		return time.Time{}, store.ErrDuplicateName
	}
	if err != nil {
		return time.Time{}, err
	}
	return updatedAt, nil
}

func queryMaxVersionNumber(ctx context.Context, ex executor, configurationID string) (int, error) {
	var max int
	err := ex.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version_number), 0)
		FROM configuration_versions
		WHERE configuration_id = $1`, configurationID).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("query max version number: %w", err)
	}
	return max, nil
}

func queryInsertVersion(ctx context.Context, ex executor, v *model.ConfigurationVersion) error {
	err := ex.QueryRowContext(ctx, `
		INSERT INTO configuration_versions (id, configuration_id, version_number, name, data)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		v.ID, v.ConfigurationID, v.VersionNumber, v.Name, []byte(v.Data),
	).Scan(&v.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}
	return nil
}

func queryGetVersion(ctx context.Context, ex executor, configurationID string, versionNumber int) (*model.ConfigurationVersion, error) {
	row := ex.QueryRowContext(ctx, `
		SELECT `+versionColumns+`
		FROM configuration_versions
		WHERE configuration_id = $1 AND version_number = $2`,
		configurationID, versionNumber)
	return scanVersion(row)
}

func queryListVersions(ctx context.Context, ex executor, configurationID string, filter model.VersionFilter, page model.Page) ([]*model.ConfigurationVersion, int, error) {
	page = page.Normalize()

	conditions := []string{"configuration_id = $1"}
	args := []any{configurationID}

	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := `
		SELECT ` + versionColumns + `, COUNT(*) OVER() AS total
		FROM configuration_versions
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY version_number DESC`
	args = append(args, page.Limit())
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, page.Offset())
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := ex.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	var (
		versions []*model.ConfigurationVersion
		total    int
	)
	for rows.Next() {
		v := &model.ConfigurationVersion{}
		var data []byte
		if err := rows.Scan(&v.ID, &v.ConfigurationID, &v.VersionNumber, &v.Name, &data, &v.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan version: %w", err)
		}
		v.Data = json.RawMessage(data)
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate versions: %w", err)
	}
	return versions, total, nil
}

func queryListAllConfigurations(ctx context.Context, ex executor) ([]*model.Configuration, error) {
	rows, err := ex.QueryContext(ctx, `
		SELECT `+configurationColumns+`
		FROM configurations
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query all configurations: %w", err)
	}
	defer rows.Close()

	var configs []*model.Configuration
	for rows.Next() {
		c, err := scanConfiguration(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate configurations: %w", err)
	}
	return configs, nil
}

func queryListAllSubscriptions(ctx context.Context, ex executor) ([]*model.Subscription, error) {
	rows, err := ex.QueryContext(ctx, `
		SELECT id, user_id, event_types, created_at, updated_at
		FROM notification_subscriptions
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query all subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return subs, nil
}

func queryGetSubscription(ctx context.Context, ex executor, userID string) (*model.Subscription, error) {
	row := ex.QueryRowContext(ctx, `
		SELECT id, user_id, event_types, created_at, updated_at
		FROM notification_subscriptions
		WHERE user_id = $1`, userID)
	return scanSubscription(row)
}

func queryUpsertSubscription(ctx context.Context, ex executor, sub *model.Subscription) error {
	types := make([]string, len(sub.EventTypes))
	for i, t := range sub.EventTypes {
		types[i] = t.String()
	}
	err := ex.QueryRowContext(ctx, `
		INSERT INTO notification_subscriptions (id, user_id, event_types)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET event_types = EXCLUDED.event_types, updated_at = NOW()
		RETURNING id, created_at, updated_at`,
		sub.ID, sub.UserID, pq.Array(types),
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func queryDeleteSubscriptions(ctx context.Context, ex executor, userID string) (int, error) {
	res, err := ex.ExecContext(ctx, `
		DELETE FROM notification_subscriptions
		WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete subscriptions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func queryMatchSubscribers(ctx context.Context, ex executor, t model.EventType) ([]string, error) {
	rows, err := ex.QueryContext(ctx, `
		SELECT DISTINCT user_id
		FROM notification_subscriptions
		WHERE cardinality(event_types) = 0 OR $1 = ANY(event_types)`,
		t.String())
	if err != nil {
		return nil, fmt.Errorf("query subscribers: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", err)
	}
	return userIDs, nil
}

func isUniqueViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505"
}

package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/groblegark/confstore/internal/idgen"
	"github.com/groblegark/confstore/internal/model"
	"github.com/groblegark/confstore/internal/store"
)

// CreateConfigurationInput holds transport-agnostic parameters for creating a
// configuration.
type CreateConfigurationInput struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// UpdateConfigurationInput holds transport-agnostic parameters for updating a
// configuration. Token, when set, is the concurrency token from the caller's
// last read; when nil the current persisted token is used.
type UpdateConfigurationInput struct {
	Name  string          `json:"name"`
	Data  json.RawMessage `json:"data"`
	Token *time.Time      `json:"updated_at,omitempty"`
}

// CreateConfiguration validates input and persists a new configuration for the
// owner. The version history starts empty; the first version row is written by
// the first update or restore.
func (s *Service) CreateConfiguration(ctx context.Context, ownerID string, in CreateConfigurationInput) (*model.Configuration, error) {
	name, err := validateInput(in.Name, in.Data)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.ConfigurationNameExists(ctx, ownerID, name)
	if err != nil {
		return nil, fmt.Errorf("check configuration name: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: configuration named %q already exists", ErrConflict, name)
	}

	id, err := idgen.Generate(idgen.ConfigurationPrefix)
	if err != nil {
		return nil, fmt.Errorf("generate configuration id: %w", err)
	}

	c := &model.Configuration{
		ID:     id,
		UserID: ownerID,
		Name:   name,
		Data:   in.Data,
	}
	if err := s.store.CreateConfiguration(ctx, c); err != nil {
		// The unique index is authoritative; the pre-check above only loses
		// under a concurrent create.
		if errors.Is(err, store.ErrDuplicateName) {
			return nil, fmt.Errorf("%w: configuration named %q already exists", ErrConflict, name)
		}
		return nil, err
	}

	s.notifier.Notify(c.ID, model.EventCreated)
	return c, nil
}

// UpdateConfiguration snapshots the configuration's current state as a new
// version and overwrites its name and data, atomically. The snapshot always
// holds the pre-update state, so restoring it undoes this update.
func (s *Service) UpdateConfiguration(ctx context.Context, ownerID, id string, in UpdateConfigurationInput) (*model.Configuration, error) {
	name, err := validateInput(in.Name, in.Data)
	if err != nil {
		return nil, err
	}

	c, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if err := s.mutate(ctx, c, name, in.Data, in.Token); err != nil {
		return nil, err
	}

	s.notifier.Notify(c.ID, model.EventModified)
	return c, nil
}

// RestoreConfigurationVersion applies a prior version's snapshot to the
// configuration, recording the pre-restore state as a new version first.
// History is append-only: restoring never deletes or rewrites versions.
func (s *Service) RestoreConfigurationVersion(ctx context.Context, ownerID, id string, versionNumber int) (*model.Configuration, error) {
	if versionNumber < 1 {
		return nil, ValidationError("version number must be a positive integer")
	}

	c, err := s.loadOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	target, err := s.store.GetVersion(ctx, id, versionNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: version %d", ErrNotFound, versionNumber)
		}
		return nil, fmt.Errorf("get version: %w", err)
	}

	if err := s.mutate(ctx, c, target.Name, target.Data, nil); err != nil {
		return nil, err
	}

	s.notifier.Notify(c.ID, model.EventRestored)
	return c, nil
}

// GetConfiguration returns the owner's configuration with its full version
// history, newest first.
func (s *Service) GetConfiguration(ctx context.Context, ownerID, id string) (*model.Configuration, error) {
	return s.loadOwned(ctx, ownerID, id)
}

// ListConfigurations returns one page of the owner's configurations plus the
// total match count.
func (s *Service) ListConfigurations(ctx context.Context, ownerID string, filter model.ConfigurationFilter, page model.Page) ([]*model.Configuration, int, error) {
	return s.store.ListConfigurations(ctx, ownerID, filter, page)
}

// ListVersions returns one page of a configuration's version history, ordered
// by version number descending, plus the total match count.
func (s *Service) ListVersions(ctx context.Context, ownerID, id string, filter model.VersionFilter, page model.Page) ([]*model.ConfigurationVersion, int, error) {
	if _, err := s.loadOwned(ctx, ownerID, id); err != nil {
		return nil, 0, err
	}
	return s.store.ListVersions(ctx, id, filter, page)
}

// loadOwned fetches a configuration with its version history and enforces
// ownership.
func (s *Service) loadOwned(ctx context.Context, ownerID, id string) (*model.Configuration, error) {
	c, err := s.store.GetConfigurationWithVersions(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get configuration: %w", err)
	}
	if c.UserID != ownerID {
		return nil, ErrForbidden
	}
	return c, nil
}

// mutate applies newName/newData to c inside one transaction: a guarded
// in-place overwrite, then a version snapshot of the pre-mutation state.
//
// The overwrite runs first because its token guard doubles as a row lock:
// once it succeeds, no concurrent writer can commit against this
// configuration until we do, which makes the max-version read race-free. A
// stale token surfaces as ErrConflict and the rollback leaves no orphan
// snapshot. On success c reflects the committed state.
func (s *Service) mutate(ctx context.Context, c *model.Configuration, newName string, newData json.RawMessage, token *time.Time) error {
	guard := c.UpdatedAt
	if token != nil {
		guard = *token
	}

	var (
		updatedAt time.Time
		snapshot  *model.ConfigurationVersion
	)
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		var err error
		updatedAt, err = tx.UpdateConfiguration(ctx, c.ID, newName, newData, guard)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: configuration was modified concurrently", ErrConflict)
			}
			if errors.Is(err, store.ErrDuplicateName) {
				return fmt.Errorf("%w: configuration named %q already exists", ErrConflict, newName)
			}
			return fmt.Errorf("update configuration: %w", err)
		}

		maxVersion, err := tx.MaxVersionNumber(ctx, c.ID)
		if err != nil {
			return err
		}

		versionID, err := idgen.Generate(idgen.VersionPrefix)
		if err != nil {
			return fmt.Errorf("generate version id: %w", err)
		}
		snapshot = &model.ConfigurationVersion{
			ID:              versionID,
			ConfigurationID: c.ID,
			VersionNumber:   maxVersion + 1,
			Name:            c.Name,
			Data:            c.Data,
		}
		return tx.InsertVersion(ctx, snapshot)
	})
	if err != nil {
		return err
	}

	c.Name = newName
	c.Data = newData
	c.UpdatedAt = updatedAt
	c.Versions = append([]*model.ConfigurationVersion{snapshot}, c.Versions...)
	return nil
}

func validateInput(name string, data json.RawMessage) (string, error) {
	trimmed := strings.TrimSpace(name)
	if err := model.ValidateName(trimmed); err != nil {
		return "", ValidationError(err.Error())
	}
	if err := model.ValidateData(data); err != nil {
		return "", ValidationError(err.Error())
	}
	return trimmed, nil
}

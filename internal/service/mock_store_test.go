package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/groblegark/confstore/internal/model"
	"github.com/groblegark/confstore/internal/store"
)

// mockStore is an in-memory store for service tests. It mirrors the database
// semantics the service relies on: the guarded update compares tokens, and
// version numbers are unique per configuration.
type mockStore struct {
	configs       map[string]*model.Configuration
	versions      map[string][]*model.ConfigurationVersion
	subscriptions map[string]*model.Subscription
	clock         time.Time

	failUpdate error // forced error for the next guarded update
}

func newMockStore() *mockStore {
	return &mockStore{
		configs:       make(map[string]*model.Configuration),
		versions:      make(map[string][]*model.ConfigurationVersion),
		subscriptions: make(map[string]*model.Subscription),
		clock:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// tick advances the mock clock so successive writes get distinct timestamps.
func (m *mockStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *mockStore) CreateConfiguration(_ context.Context, c *model.Configuration) error {
	for _, existing := range m.configs {
		if existing.UserID == c.UserID && strings.EqualFold(existing.Name, c.Name) {
			return store.ErrDuplicateName
		}
	}
	now := m.tick()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	m.configs[c.ID] = &cp
	return nil
}

func (m *mockStore) GetConfiguration(_ context.Context, id string) (*model.Configuration, error) {
	c, ok := m.configs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (m *mockStore) GetConfigurationWithVersions(ctx context.Context, id string) (*model.Configuration, error) {
	c, err := m.GetConfiguration(ctx, id)
	if err != nil {
		return nil, err
	}
	vs := append([]*model.ConfigurationVersion{}, m.versions[id]...)
	sort.Slice(vs, func(i, j int) bool { return vs[i].VersionNumber > vs[j].VersionNumber })
	c.Versions = vs
	return c, nil
}

func (m *mockStore) ConfigurationNameExists(_ context.Context, userID, name string) (bool, error) {
	for _, c := range m.configs {
		if c.UserID == userID && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockStore) ListConfigurations(_ context.Context, userID string, filter model.ConfigurationFilter, page model.Page) ([]*model.Configuration, int, error) {
	var result []*model.Configuration
	for _, c := range m.configs {
		if c.UserID != userID {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Name)) {
			continue
		}
		cp := *c
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, len(result), nil
}

func (m *mockStore) UpdateConfiguration(_ context.Context, id, name string, data json.RawMessage, token time.Time) (time.Time, error) {
	if m.failUpdate != nil {
		err := m.failUpdate
		m.failUpdate = nil
		return time.Time{}, err
	}
	c, ok := m.configs[id]
	if !ok || !c.UpdatedAt.Equal(token) {
		return time.Time{}, sql.ErrNoRows
	}
	c.Name = name
	c.Data = data
	c.UpdatedAt = m.tick()
	return c.UpdatedAt, nil
}

func (m *mockStore) MaxVersionNumber(_ context.Context, configurationID string) (int, error) {
	max := 0
	for _, v := range m.versions[configurationID] {
		if v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	return max, nil
}

func (m *mockStore) InsertVersion(_ context.Context, v *model.ConfigurationVersion) error {
	v.CreatedAt = m.tick()
	cp := *v
	m.versions[v.ConfigurationID] = append(m.versions[v.ConfigurationID], &cp)
	return nil
}

func (m *mockStore) GetVersion(_ context.Context, configurationID string, versionNumber int) (*model.ConfigurationVersion, error) {
	for _, v := range m.versions[configurationID] {
		if v.VersionNumber == versionNumber {
			cp := *v
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListVersions(_ context.Context, configurationID string, _ model.VersionFilter, _ model.Page) ([]*model.ConfigurationVersion, int, error) {
	vs := append([]*model.ConfigurationVersion{}, m.versions[configurationID]...)
	sort.Slice(vs, func(i, j int) bool { return vs[i].VersionNumber > vs[j].VersionNumber })
	return vs, len(vs), nil
}

func (m *mockStore) ListAllConfigurations(_ context.Context) ([]*model.Configuration, error) {
	var result []*model.Configuration
	for _, c := range m.configs {
		cp := *c
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) ListAllSubscriptions(_ context.Context) ([]*model.Subscription, error) {
	var result []*model.Subscription
	for _, s := range m.subscriptions {
		cp := *s
		result = append(result, &cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockStore) GetSubscription(_ context.Context, userID string) (*model.Subscription, error) {
	sub, ok := m.subscriptions[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *sub
	return &cp, nil
}

func (m *mockStore) UpsertSubscription(_ context.Context, sub *model.Subscription) error {
	now := m.tick()
	if existing, ok := m.subscriptions[sub.UserID]; ok {
		sub.ID = existing.ID
		sub.CreatedAt = existing.CreatedAt
	} else {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now
	cp := *sub
	m.subscriptions[sub.UserID] = &cp
	return nil
}

func (m *mockStore) DeleteSubscriptions(_ context.Context, userID string) (int, error) {
	if _, ok := m.subscriptions[userID]; !ok {
		return 0, nil
	}
	delete(m.subscriptions, userID)
	return 1, nil
}

func (m *mockStore) MatchSubscribers(_ context.Context, t model.EventType) ([]string, error) {
	var users []string
	for _, sub := range m.subscriptions {
		if sub.Matches(t) {
			users = append(users, sub.UserID)
		}
	}
	sort.Strings(users)
	return users, nil
}

// RunInTransaction runs fn directly; the mock has no transaction isolation.
func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }

// Package memory provides an in-memory store.Store used by tests and local
// development. It reproduces the database semantics the service depends on:
// case-insensitive name uniqueness per owner, token-guarded updates, and
// per-configuration version numbering.
package memory

import (
	"context"
	"database/sql"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/groblegark/confstore/internal/model"
	"github.com/groblegark/confstore/internal/store"
)

type Store struct {
	mu            sync.Mutex
	configs       map[string]*model.Configuration
	versions      map[string][]*model.ConfigurationVersion
	subscriptions map[string]*model.Subscription
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		configs:       make(map[string]*model.Configuration),
		versions:      make(map[string][]*model.ConfigurationVersion),
		subscriptions: make(map[string]*model.Subscription),
	}
}

func (m *Store) CreateConfiguration(_ context.Context, c *model.Configuration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.configs {
		if existing.UserID == c.UserID && strings.EqualFold(existing.Name, c.Name) {
			return store.ErrDuplicateName
		}
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	m.configs[c.ID] = &cp
	return nil
}

func (m *Store) GetConfiguration(_ context.Context, id string) (*model.Configuration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(id)
}

func (m *Store) getLocked(id string) (*model.Configuration, error) {
	c, ok := m.configs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (m *Store) GetConfigurationWithVersions(_ context.Context, id string) (*model.Configuration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.getLocked(id)
	if err != nil {
		return nil, err
	}
	vs := m.versionsLocked(id)
	c.Versions = vs
	return c, nil
}

func (m *Store) versionsLocked(id string) []*model.ConfigurationVersion {
	vs := make([]*model.ConfigurationVersion, 0, len(m.versions[id]))
	for _, v := range m.versions[id] {
		cp := *v
		vs = append(vs, &cp)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].VersionNumber > vs[j].VersionNumber })
	return vs
}

func (m *Store) ConfigurationNameExists(_ context.Context, userID, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.configs {
		if c.UserID == userID && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Store) ListConfigurations(_ context.Context, userID string, filter model.ConfigurationFilter, page model.Page) ([]*model.Configuration, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*model.Configuration
	for _, c := range m.configs {
		if c.UserID != userID {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.CreatedFrom != nil && c.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && c.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		cp := *c
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	page = page.Normalize()
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit()
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *Store) UpdateConfiguration(_ context.Context, id, name string, data json.RawMessage, token time.Time) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.configs[id]
	if !ok || !c.UpdatedAt.Equal(token) {
		return time.Time{}, sql.ErrNoRows
	}
	c.Name = name
	c.Data = data
	c.UpdatedAt = time.Now().UTC()
	if c.UpdatedAt.Equal(token) {
		// Clock did not advance; nudge so the token actually changes.
		c.UpdatedAt = token.Add(time.Microsecond)
	}
	return c.UpdatedAt, nil
}

func (m *Store) MaxVersionNumber(_ context.Context, configurationID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	max := 0
	for _, v := range m.versions[configurationID] {
		if v.VersionNumber > max {
			max = v.VersionNumber
		}
	}
	return max, nil
}

func (m *Store) InsertVersion(_ context.Context, v *model.ConfigurationVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v.CreatedAt = time.Now().UTC()
	cp := *v
	m.versions[v.ConfigurationID] = append(m.versions[v.ConfigurationID], &cp)
	return nil
}

func (m *Store) GetVersion(_ context.Context, configurationID string, versionNumber int) (*model.ConfigurationVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.versions[configurationID] {
		if v.VersionNumber == versionNumber {
			cp := *v
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *Store) ListVersions(_ context.Context, configurationID string, filter model.VersionFilter, page model.Page) ([]*model.ConfigurationVersion, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*model.ConfigurationVersion
	for _, v := range m.versionsLocked(configurationID) {
		if filter.CreatedFrom != nil && v.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && v.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		matched = append(matched, v)
	}

	total := len(matched)
	page = page.Normalize()
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit()
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *Store) ListAllConfigurations(_ context.Context) ([]*model.Configuration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	configs := make([]*model.Configuration, 0, len(m.configs))
	for _, c := range m.configs {
		cp := *c
		configs = append(configs, &cp)
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].ID < configs[j].ID })
	return configs, nil
}

func (m *Store) ListAllSubscriptions(_ context.Context) ([]*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subs := make([]*model.Subscription, 0, len(m.subscriptions))
	for _, s := range m.subscriptions {
		cp := *s
		subs = append(subs, &cp)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs, nil
}

func (m *Store) GetSubscription(_ context.Context, userID string) (*model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subscriptions[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *sub
	return &cp, nil
}

func (m *Store) UpsertSubscription(_ context.Context, sub *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
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

func (m *Store) DeleteSubscriptions(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subscriptions[userID]; !ok {
		return 0, nil
	}
	delete(m.subscriptions, userID)
	return 1, nil
}

func (m *Store) MatchSubscribers(_ context.Context, t model.EventType) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var users []string
	for _, sub := range m.subscriptions {
		if sub.Matches(t) {
			users = append(users, sub.UserID)
		}
	}
	sort.Strings(users)
	return users, nil
}

// RunInTransaction runs fn directly against the store. The mutex serializes
// writers, which is all the atomicity the in-memory form needs.
func (m *Store) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *Store) Close() error { return nil }

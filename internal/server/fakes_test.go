package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"sitecms/internal/common"
	"sitecms/internal/models"
)

// memStore backs every repository interface with maps so the whole router
// can be exercised without Postgres or Redis.
type memStore struct {
	mu          sync.Mutex
	credentials map[string]*models.Credential
	settings    map[string]map[string]string
	collections map[string][]models.CollectionItem
	leads       []*models.Lead
	cache       map[string]string
	counters    map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		credentials: make(map[string]*models.Credential),
		settings:    make(map[string]map[string]string),
		collections: make(map[string][]models.CollectionItem),
		cache:       make(map[string]string),
		counters:    make(map[string]int),
	}
}

type memCredentials struct{ *memStore }

func (m memCredentials) Exists(_ context.Context, tenantID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.credentials[tenantID]
	return ok, nil
}

func (m memCredentials) Create(_ context.Context, cred *models.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.credentials[cred.TenantID]; ok {
		return common.ErrAlreadyRegistered
	}
	c := *cred
	c.CreatedAt = time.Now()
	m.credentials[cred.TenantID] = &c
	return nil
}

func (m memCredentials) GetByUsername(_ context.Context, tenantID, username string) (*models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.credentials[tenantID]
	if !ok || c.Username != username {
		return nil, common.ErrNotFound
	}
	return c, nil
}

type memSettings struct{ *memStore }

func (m memSettings) GetAll(_ context.Context, tenantID string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string)
	for k, v := range m.settings[tenantID] {
		out[k] = v
	}
	return out, nil
}

func (m memSettings) Get(_ context.Context, tenantID, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.settings[tenantID][key]
	return v, ok, nil
}

func (m memSettings) SetMany(_ context.Context, tenantID string, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings[tenantID] == nil {
		m.settings[tenantID] = make(map[string]string)
	}
	for k, v := range values {
		m.settings[tenantID][k] = v
	}
	return nil
}

type memCollections struct{ *memStore }

func collectionKey(tenantID, name string) string { return tenantID + "|" + name }

func (m memCollections) List(_ context.Context, tenantID, collectionName string) ([]models.CollectionItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := append([]models.CollectionItem{}, m.collections[collectionKey(tenantID, collectionName)]...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return items, nil
}

func (m memCollections) Save(_ context.Context, item *models.CollectionItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := collectionKey(item.TenantID, item.CollectionName)
	now := time.Now()
	for i, existing := range m.collections[key] {
		if existing.ID == item.ID {
			m.collections[key][i].Data = item.Data
			m.collections[key][i].UpdatedAt = now
			return nil
		}
	}
	saved := *item
	saved.CreatedAt = now.Add(time.Duration(len(m.collections[key])) * time.Millisecond)
	saved.UpdatedAt = saved.CreatedAt
	m.collections[key] = append(m.collections[key], saved)
	return nil
}

func (m memCollections) Delete(_ context.Context, tenantID, collectionName, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := collectionKey(tenantID, collectionName)
	kept := m.collections[key][:0]
	for _, item := range m.collections[key] {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	m.collections[key] = kept
	return nil
}

type memLeads struct{ *memStore }

func (m memLeads) Create(_ context.Context, lead *models.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead.ID = int64(len(m.leads) + 1)
	stored := *lead
	m.leads = append(m.leads, &stored)
	return nil
}

func (m memLeads) GetByID(_ context.Context, id int64) (*models.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.leads {
		if l.ID == id {
			copied := *l
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m memLeads) List(_ context.Context, tenantID string, limit, offset int) ([]*models.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Lead
	for _, l := range m.leads {
		if l.TenantID == tenantID {
			copied := *l
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if offset >= len(out) {
		return []*models.Lead{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m memLeads) ListFailed(_ context.Context, maxAttempts, limit int) ([]*models.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Lead
	for _, l := range m.leads {
		if l.NotifyStatus == models.NotifyFailed && l.NotifyAttempts < maxAttempts && len(out) < limit {
			copied := *l
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m memLeads) RecordNotification(_ context.Context, id int64, status models.NotifyStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.leads {
		if l.ID == id {
			l.NotifyStatus = status
			if status == models.NotifySent || status == models.NotifyFailed {
				l.NotifyAttempts++
			}
			return nil
		}
	}
	return common.ErrNotFound
}

type memCache struct{ *memStore }

func (m memCache) SetString(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[key] = value
	return nil
}

func (m memCache) GetString(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache[key], nil
}

func (m memCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, key)
	return nil
}

func (m memCache) IsRateLimited(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
	return m.counters[key] > limit, nil
}

func (m memCache) Ping(context.Context) error { return nil }

func (m memCache) Close() error { return nil }

func (m *memStore) lead(id int64) models.Lead {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.leads[id-1]
}

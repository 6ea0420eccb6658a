package resource

import (
	"context"
	"sort"
	"strings"
	"sync"

	domain "edu-resources/internal/domain/resource"
	"edu-resources/internal/utils/platformerrors"
)

// InMemoryRepository is a thread-safe registry kept in process memory.
// Contents are lost on restart.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries []domain.Resource
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Create(ctx context.Context, res *domain.Resource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range r.entries {
		if entry.ID == res.ID {
			return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "duplicate resource id", nil, "a08b4d9e-5f1c-4e3b-8c7d-2f4a5b6c7d8e")
		}
	}
	stored := *res
	stored.AccessURL = ""
	r.entries = append(r.entries, stored)
	sort.SliceStable(r.entries, func(i, j int) bool {
		return newer(r.entries[i], r.entries[j])
	})
	return nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.entries {
		if entry.ID == id {
			res := entry
			return &res, nil
		}
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, domain.MsgNotFound, nil, "b19c5e0f-6a2d-4f4c-9d8e-3a5b6c7d8e9f")
}

func (r *InMemoryRepository) List(ctx context.Context, filter domain.Filter) ([]*domain.Resource, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	matched := make([]*domain.Resource, 0, len(r.entries))
	for _, entry := range r.entries {
		if filter.Type != "" && entry.Type != filter.Type {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(entry.Title), query) &&
			!strings.Contains(strings.ToLower(entry.Description), query) {
			continue
		}
		res := entry
		matched = append(matched, &res)
	}

	total := int64(len(matched))
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return []*domain.Resource{}, total, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, entry := range r.entries {
		if entry.ID == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, domain.MsgNotFound, nil, "c2ad6f1a-7b3e-4a5d-8e9f-4b6c7d8e9f0a")
}

func (r *InMemoryRepository) CountByType(context.Context) (map[domain.Type]domain.TypeUsage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[domain.Type]domain.TypeUsage)
	for _, entry := range r.entries {
		usage := out[entry.Type]
		usage.Count++
		usage.Bytes += entry.SizeBytes
		out[entry.Type] = usage
	}
	return out, nil
}

func (r *InMemoryRepository) Health(context.Context) error {
	return nil
}

func newer(a, b domain.Resource) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

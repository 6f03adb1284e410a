// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

package listing_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inmobix/backend/internal/listing"
	"github.com/inmobix/backend/internal/platform/apperr"
	"github.com/inmobix/backend/internal/platform/sec"
	"github.com/inmobix/backend/pkg/pagination"
)

// # Test Doubles

// memoryRepository is an in-memory PropertyRepository with copy semantics, so
// service-side mutations only become visible through Update.
type memoryRepository struct {
	mu         sync.Mutex
	properties map[string]*listing.Property
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{properties: make(map[string]*listing.Property)}
}

func clone(property *listing.Property) *listing.Property {
	copied := *property
	return &copied
}

func (repository *memoryRepository) FindByID(_ context.Context, id string) (*listing.Property, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	property, ok := repository.properties[id]
	if !ok {
		return nil, apperr.NotFound("Property")
	}
	return clone(property), nil
}

func (repository *memoryRepository) FindBySlug(_ context.Context, slug string) (*listing.Property, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, property := range repository.properties {
		if property.Slug == slug {
			return clone(property), nil
		}
	}
	return nil, apperr.NotFound("Property")
}

func (repository *memoryRepository) FindAll(_ context.Context, filter listing.Filter, params pagination.Params) ([]*listing.Property, int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	var matches []*listing.Property
	for _, property := range repository.properties {
		if filter.City != "" && !strings.EqualFold(property.City, filter.City) {
			continue
		}
		if filter.PropertyType != "" && string(property.PropertyType) != filter.PropertyType {
			continue
		}
		if filter.TransactionType != "" && string(property.TransactionType) != filter.TransactionType {
			continue
		}
		if filter.MinPrice > 0 && property.Price < filter.MinPrice {
			continue
		}
		if filter.MaxPrice > 0 && property.Price > filter.MaxPrice {
			continue
		}
		if filter.OnlyAvailable && !property.Available {
			continue
		}
		matches = append(matches, clone(property))
	}

	total := len(matches)
	offset := params.Offset()
	if offset > total {
		return nil, total, nil
	}
	end := offset + params.Limit
	if end > total {
		end = total
	}
	return matches[offset:end], total, nil
}

func (repository *memoryRepository) Create(_ context.Context, property *listing.Property) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.properties[property.ID] = clone(property)
	return nil
}

func (repository *memoryRepository) Update(_ context.Context, property *listing.Property) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.properties[property.ID]; !ok {
		return apperr.NotFound("Property")
	}
	repository.properties[property.ID] = clone(property)
	return nil
}

func (repository *memoryRepository) Delete(_ context.Context, id string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.properties[id]; !ok {
		return apperr.NotFound("Property")
	}
	delete(repository.properties, id)
	return nil
}

// fakeCache records interactions and can simulate an unavailable backend.
type fakeCache struct {
	mu        sync.Mutex
	items     map[string]*listing.Property
	pages     map[string]*listing.PageResult
	unhealthy bool
	evictions int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		items: make(map[string]*listing.Property),
		pages: make(map[string]*listing.PageResult),
	}
}

func (cache *fakeCache) GetProperty(_ context.Context, id string) (*listing.Property, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	if cache.unhealthy {
		return nil, apperr.ServiceUnavailable("cache down")
	}
	property, ok := cache.items[id]
	if !ok {
		return nil, apperr.NotFound("Cached listing")
	}
	return clone(property), nil
}

func (cache *fakeCache) SetProperty(_ context.Context, property *listing.Property) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	if cache.unhealthy {
		return apperr.ServiceUnavailable("cache down")
	}
	cache.items[property.ID] = clone(property)
	return nil
}

func (cache *fakeCache) DeleteProperty(_ context.Context, id string) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	cache.evictions++
	if cache.unhealthy {
		return apperr.ServiceUnavailable("cache down")
	}
	delete(cache.items, id)
	return nil
}

func (cache *fakeCache) GetPage(_ context.Context, key string) (*listing.PageResult, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	page, ok := cache.pages[key]
	if !ok {
		return nil, apperr.NotFound("Cached page")
	}
	return page, nil
}

func (cache *fakeCache) SetPage(_ context.Context, key string, page *listing.PageResult) error {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	cache.pages[key] = page
	return nil
}

// # Fixtures

type fixture struct {
	service    *listing.Service
	repository *memoryRepository
	cache      *fakeCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repository := newMemoryRepository()
	cache := newFakeCache()

	return &fixture{
		service:    listing.NewService(repository, cache, slog.New(slog.NewTextHandler(io.Discard, nil))),
		repository: repository,
		cache:      cache,
	}
}

func validInput() listing.CreateInput {
	return listing.CreateInput{
		Title:           "Casa térrea no Jardim Botânico",
		Description:     "Three bedrooms, garden, close to the park.",
		Address:         "Rua das Acácias, 120",
		City:            "Curitiba",
		State:           "PR",
		Price:           750000,
		Area:            180,
		Bedrooms:        3,
		Bathrooms:       2,
		Garages:         2,
		PropertyType:    "HOUSE",
		TransactionType: "SALE",
	}
}

func owner(id string) *sec.Identity {
	return &sec.Identity{UserID: id, Role: sec.RoleUser}
}

func admin() *sec.Identity {
	return &sec.Identity{UserID: "admin-1", Role: sec.RoleAdmin}
}

// # Tests

func TestCreate_GeneratesUniqueSlugs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, "owner-1", validInput())
	require.NoError(t, err)

	second, err := f.service.Create(ctx, "owner-2", validInput())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first.Slug, "casa-terrea-no-jardim-botanico-"))
	assert.NotEqual(t, first.Slug, second.Slug, "identical titles must not collide")
	assert.True(t, first.Available, "new listings start available")
	assert.Equal(t, "owner-1", first.OwnerID)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*listing.CreateInput)
	}{
		{"missing title", func(i *listing.CreateInput) { i.Title = "" }},
		{"zero price", func(i *listing.CreateInput) { i.Price = 0 }},
		{"negative area", func(i *listing.CreateInput) { i.Area = -10 }},
		{"negative bedrooms", func(i *listing.CreateInput) { i.Bedrooms = -1 }},
		{"unknown property type", func(i *listing.CreateInput) { i.PropertyType = "CASTLE" }},
		{"unknown transaction type", func(i *listing.CreateInput) { i.TransactionType = "LEASE" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)

			_, err := f.service.Create(ctx, "owner-1", input)
			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", apperr.CodeOf(err))
		})
	}
}

func TestGetByID_CacheReadThrough(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, "owner-1", validInput())
	require.NoError(t, err)

	// First read misses the cache and populates it.
	fetched, err := f.service.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Contains(t, f.cache.items, created.ID)

	// A stale cache entry is served without touching the repository.
	f.cache.items[created.ID].Title = "cached title"
	fetched, err = f.service.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "cached title", fetched.Title)
}

func TestGetByID_CacheFailureFallsThrough(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, "owner-1", validInput())
	require.NoError(t, err)

	f.cache.unhealthy = true

	fetched, err := f.service.GetByID(ctx, created.ID)
	require.NoError(t, err, "an unavailable cache must not fail reads")
	assert.Equal(t, created.Title, fetched.Title)
}

func TestList_FiltersAndCachesPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, "owner-1", validInput())
	require.NoError(t, err)

	rental := validInput()
	rental.Title = "Apartamento mobiliado no centro"
	rental.City = "São Paulo"
	rental.PropertyType = "APARTMENT"
	rental.TransactionType = "RENT"
	rental.Price = 3500
	_, err = f.service.Create(ctx, "owner-2", rental)
	require.NoError(t, err)

	params := pagination.Params{Page: 1, Limit: 10}

	properties, meta, err := f.service.List(ctx, listing.Filter{TransactionType: "RENT"}, params)
	require.NoError(t, err)
	require.Len(t, properties, 1)
	assert.Equal(t, listing.TransactionRent, properties[0].TransactionType)
	assert.Equal(t, 1, meta.Total)

	// The page is now cached under its composite key; a repeat call is
	// served from it even if the repository changes underneath.
	extra := validInput()
	extra.Title = "Sala comercial para alugar"
	extra.TransactionType = "RENT"
	_, err = f.service.Create(ctx, "owner-3", extra)
	require.NoError(t, err)

	properties, _, err = f.service.List(ctx, listing.Filter{TransactionType: "RENT"}, params)
	require.NoError(t, err)
	assert.Len(t, properties, 1, "second read must come from the page cache")

	// A different filter builds a different key and sees the fresh data.
	properties, _, err = f.service.List(ctx, listing.Filter{TransactionType: "RENT", City: "São Paulo"}, params)
	require.NoError(t, err)
	assert.Len(t, properties, 1)
	assert.Equal(t, "São Paulo", properties[0].City)
}

func TestUpdate_OwnerOrAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, "owner-1", validInput())
	require.NoError(t, err)

	newPrice := 800000.0

	_, err = f.service.Update(ctx, owner("intruder"), created.ID, listing.UpdateInput{Price: &newPrice})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.CodeOf(err))

	updated, err := f.service.Update(ctx, owner("owner-1"), created.ID, listing.UpdateInput{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, newPrice, updated.Price)
	assert.Equal(t, created.Slug, updated.Slug, "slug is stable across updates")

	unavailable := false
	updated, err = f.service.Update(ctx, admin(), created.ID, listing.UpdateInput{Available: &unavailable})
	require.NoError(t, err)
	assert.False(t, updated.Available)
}

func TestUpdate_EvictsItemCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, "owner-1", validInput())
	require.NoError(t, err)

	_, err = f.service.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Contains(t, f.cache.items, created.ID)

	newTitle := "Casa térrea reformada no Jardim Botânico"
	_, err = f.service.Update(ctx, owner("owner-1"), created.ID, listing.UpdateInput{Title: &newTitle})
	require.NoError(t, err)

	assert.NotContains(t, f.cache.items, created.ID, "writes must evict the cached item")

	fetched, err := f.service.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, newTitle, fetched.Title)
}

func TestUpdate_RejectsInvalidResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, "owner-1", validInput())
	require.NoError(t, err)

	zero := 0.0
	_, err = f.service.Update(ctx, owner("owner-1"), created.ID, listing.UpdateInput{Price: &zero})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.CodeOf(err))
}

func TestDelete_Flow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, "owner-1", validInput())
	require.NoError(t, err)

	err = f.service.Delete(ctx, owner("intruder"), created.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.CodeOf(err))

	err = f.service.Delete(ctx, owner("owner-1"), created.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, f.cache.evictions, 1)

	_, err = f.service.GetByID(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

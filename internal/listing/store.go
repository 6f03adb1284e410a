// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

package listing

import (
	"context"

	"github.com/inmobix/backend/pkg/pagination"
)

// # Property Data Access

// PropertyRepository defines the data access contract for listings.
type PropertyRepository interface {

	/*
		FindByID returns the listing with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Property: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Property, error)

	/*
		FindBySlug returns the listing with the given URL slug.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Property: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindBySlug(context context.Context, slug string) (*Property, error)

	/*
		FindAll returns a filtered page of listings ordered by creation time.

		Parameters:
		  - context: context.Context
		  - filter: Filter
		  - params: pagination.Params

		Returns:
		  - []*Property: Hydrated entities
		  - int: Total match count before paging
		  - error: Database retrieval failures
	*/
	FindAll(context context.Context, filter Filter, params pagination.Params) ([]*Property, int, error)

	/*
		Create persists a brand-new listing.

		Parameters:
		  - context: context.Context
		  - property: *Property

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, property *Property) error

	/*
		Update persists changes to a listing.

		Parameters:
		  - context: context.Context
		  - property: *Property

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, property *Property) error

	/*
		Delete permanently removes a listing.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, id string) error
}

// # Read Cache

// Cache is the volatile read-through store for hot listing lookups.
//
// A cache failure is never fatal: the service logs it and falls through to
// the repository.
type Cache interface {

	/*
		GetProperty returns the cached listing, or a not-found error on a miss.
	*/
	GetProperty(context context.Context, id string) (*Property, error)

	/*
		SetProperty caches a listing under its ID with the standard TTL.
	*/
	SetProperty(context context.Context, property *Property) error

	/*
		DeleteProperty evicts a listing after a write.
	*/
	DeleteProperty(context context.Context, id string) error

	/*
		GetPage returns a cached page result, or a not-found error on a miss.
	*/
	GetPage(context context.Context, key string) (*PageResult, error)

	/*
		SetPage caches a page result with a short staleness-bounding TTL.
	*/
	SetPage(context context.Context, key string, page *PageResult) error
}

// PageResult is the cacheable outcome of a filtered List query.
type PageResult struct {
	Properties []*Property `json:"properties"`
	Total      int         `json:"total"`
}

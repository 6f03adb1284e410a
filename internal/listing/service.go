// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

package listing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inmobix/backend/internal/platform/apperr"
	"github.com/inmobix/backend/internal/platform/sec"
	"github.com/inmobix/backend/internal/platform/validate"
	"github.com/inmobix/backend/pkg/pagination"
	"github.com/inmobix/backend/pkg/slug"
	"github.com/inmobix/backend/pkg/uuid"
)

// Service implements the property catalog use cases.
type Service struct {
	propertyRepository PropertyRepository
	cache              Cache
	logger             *slog.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(repo PropertyRepository, cache Cache, logger *slog.Logger) *Service {
	return &Service{
		propertyRepository: repo,
		cache:              cache,
		logger:             logger,
	}
}

// CreateInput holds the data required to publish a new listing.
type CreateInput struct {
	Title           string
	Description     string
	Address         string
	City            string
	State           string
	Price           float64
	Area            float64
	Bedrooms        int
	Bathrooms       int
	Garages         int
	PropertyType    string
	TransactionType string
	ImageURL        string
}

// Create validates and persists a new listing owned by ownerID.
//
// # Business Rules
//   - The slug is derived from the title plus a unique suffix, so two
//     listings with the same title never collide.
//   - New listings start available.
func (service *Service) Create(context context.Context, ownerID string, input CreateInput) (*Property, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	id := uuid.New()

	property := &Property{
		ID:    id,
		Title: input.Title,
		// The ID's trailing characters disambiguate identical titles.
		Slug:            slug.From(input.Title) + "-" + id[len(id)-6:],
		Description:     input.Description,
		Address:         input.Address,
		City:            input.City,
		State:           input.State,
		Price:           input.Price,
		Area:            input.Area,
		Bedrooms:        input.Bedrooms,
		Bathrooms:       input.Bathrooms,
		Garages:         input.Garages,
		PropertyType:    PropertyType(input.PropertyType),
		TransactionType: TransactionType(input.TransactionType),
		Available:       true,
		ImageURL:        input.ImageURL,
		OwnerID:         ownerID,
	}

	if err := service.propertyRepository.Create(context, property); err != nil {
		return nil, fmt.Errorf("listing_service_create_failed: %w", err)
	}

	return property, nil
}

// GetByID returns a single listing, served from cache when possible.
func (service *Service) GetByID(context context.Context, id string) (*Property, error) {
	if cached, err := service.cache.GetProperty(context, id); err == nil {
		return cached, nil
	} else if !apperr.IsNotFound(err) {
		service.logCacheFailure(context, "get", err)
	}

	property, err := service.propertyRepository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if err := service.cache.SetProperty(context, property); err != nil {
		service.logCacheFailure(context, "set", err)
	}

	return property, nil
}

// GetBySlug returns a single listing by its URL slug. Slug lookups bypass
// the item cache, which is keyed by ID.
func (service *Service) GetBySlug(context context.Context, slugValue string) (*Property, error) {
	return service.propertyRepository.FindBySlug(context, slugValue)
}

// List returns a filtered page of listings, served from cache when possible.
func (service *Service) List(context context.Context, filter Filter, params pagination.Params) ([]*Property, pagination.Meta, error) {
	key := pageKey(filter, params)

	if cached, err := service.cache.GetPage(context, key); err == nil {
		return cached.Properties, pagination.NewMeta(params.Page, params.Limit, cached.Total), nil
	} else if !apperr.IsNotFound(err) {
		service.logCacheFailure(context, "page_get", err)
	}

	properties, total, err := service.propertyRepository.FindAll(context, filter, params)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("listing_service_list_failed: %w", err)
	}

	page := &PageResult{Properties: properties, Total: total}
	if err := service.cache.SetPage(context, key, page); err != nil {
		service.logCacheFailure(context, "page_set", err)
	}

	return properties, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// UpdateInput holds the mutable listing fields. Nil pointers mean "no change".
type UpdateInput struct {
	Title       *string
	Description *string
	Address     *string
	City        *string
	State       *string
	Price       *float64
	Area        *float64
	Bedrooms    *int
	Bathrooms   *int
	Garages     *int
	Available   *bool
	ImageURL    *string
}

// Update applies partial changes to a listing.
//
// Only the owner or an administrator may mutate a listing. The slug is
// stable: a title change does not break published URLs.
func (service *Service) Update(context context.Context, requester *sec.Identity, id string, input UpdateInput) (*Property, error) {
	property, err := service.propertyRepository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if err := authorize(requester, property); err != nil {
		return nil, err
	}

	applyUpdate(property, input)

	validator := &validate.Validator{}
	validator.Required(FieldTitle, property.Title).
		Positive(FieldPrice, property.Price).
		Positive(FieldArea, property.Area)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.propertyRepository.Update(context, property); err != nil {
		return nil, fmt.Errorf("listing_service_update_failed: %w", err)
	}

	if err := service.cache.DeleteProperty(context, id); err != nil {
		service.logCacheFailure(context, "evict", err)
	}

	return property, nil
}

// Delete permanently removes a listing. Owner-or-admin only.
func (service *Service) Delete(context context.Context, requester *sec.Identity, id string) error {
	property, err := service.propertyRepository.FindByID(context, id)
	if err != nil {
		return err
	}

	if err := authorize(requester, property); err != nil {
		return err
	}

	if err := service.propertyRepository.Delete(context, id); err != nil {
		return fmt.Errorf("listing_service_delete_failed: %w", err)
	}

	if err := service.cache.DeleteProperty(context, id); err != nil {
		service.logCacheFailure(context, "evict", err)
	}

	return nil
}

// authorize enforces the owner-or-admin mutation rule.
func authorize(requester *sec.Identity, property *Property) error {
	if requester.Role.IsAdmin() || requester.UserID == property.OwnerID {
		return nil
	}
	return apperr.Forbidden("Only the listing owner may modify it")
}

// applyUpdate copies non-nil fields from input onto the entity.
func applyUpdate(property *Property, input UpdateInput) {
	if input.Title != nil {
		property.Title = *input.Title
	}
	if input.Description != nil {
		property.Description = *input.Description
	}
	if input.Address != nil {
		property.Address = *input.Address
	}
	if input.City != nil {
		property.City = *input.City
	}
	if input.State != nil {
		property.State = *input.State
	}
	if input.Price != nil {
		property.Price = *input.Price
	}
	if input.Area != nil {
		property.Area = *input.Area
	}
	if input.Bedrooms != nil {
		property.Bedrooms = *input.Bedrooms
	}
	if input.Bathrooms != nil {
		property.Bathrooms = *input.Bathrooms
	}
	if input.Garages != nil {
		property.Garages = *input.Garages
	}
	if input.Available != nil {
		property.Available = *input.Available
	}
	if input.ImageURL != nil {
		property.ImageURL = *input.ImageURL
	}
}

// validateInput checks the semantic rules of a new listing.
func validateInput(input CreateInput) error {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).
		MinLen(FieldTitle, input.Title, 5).
		MaxLen(FieldTitle, input.Title, 160).
		Required(FieldAddress, input.Address).
		Required(FieldCity, input.City).
		Required(FieldState, input.State).
		Positive(FieldPrice, input.Price).
		Positive(FieldArea, input.Area).
		Custom(FieldBedrooms, input.Bedrooms < 0, "Cannot be negative").
		Custom(FieldBathrooms, input.Bathrooms < 0, "Cannot be negative").
		Custom(FieldGarages, input.Garages < 0, "Cannot be negative").
		Custom(FieldPropertyType, !ValidPropertyType(input.PropertyType), "Unknown property type").
		Custom(FieldTransactionType, !ValidTransactionType(input.TransactionType), "Unknown transaction type")

	return validator.Err()
}

// pageKey builds the composite cache key for a filtered page.
func pageKey(filter Filter, params pagination.Params) string {
	return fmt.Sprintf("%s:%s:%s:%g:%g:%t:%d:%d",
		filter.City, filter.PropertyType, filter.TransactionType,
		filter.MinPrice, filter.MaxPrice, filter.OnlyAvailable,
		params.Page, params.Limit,
	)
}

// logCacheFailure records a degraded (but non-fatal) cache interaction.
func (service *Service) logCacheFailure(context context.Context, operation string, err error) {
	service.logger.WarnContext(context, "listing_cache_degraded",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

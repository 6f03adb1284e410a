// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

/*
HTTP delivery layer for the property catalog.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Identity: Trusts the gateway-injected requester headers for mutations.
  - Reads: Public, filterable, paginated.

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/

package listing

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/inmobix/backend/internal/platform/request"
	"github.com/inmobix/backend/internal/platform/respond"
	"github.com/inmobix/backend/internal/platform/validate"
	"github.com/inmobix/backend/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements property catalog HTTP endpoints.
type Handler struct {
	listingService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{listingService: service}
}

// Routes returns a [chi.Router] configured with property catalog routes.
//
// # Endpoints
//   - GET    /             : Lists properties with filters and pagination.
//   - GET    /{id}         : Fetches one property by ID.
//   - GET    /slug/{slug}  : Fetches one property by URL slug.
//   - POST   /             : (auth) Publishes a new property.
//   - PUT    /{id}         : (owner/admin) Updates a property.
//   - DELETE /{id}         : (owner/admin) Removes a property.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Get("/", handler.list)
	router.Get("/{id}", handler.getByID)
	router.Get("/slug/{slug}", handler.getBySlug)

	// Owner endpoints
	router.Post("/", handler.create)
	router.Put("/{id}", handler.update)
	router.Delete("/{id}", handler.remove)

	return router
}

// # Request Payloads

type createPropertyRequest struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Address         string  `json:"address"`
	City            string  `json:"city"`
	State           string  `json:"state"`
	Price           float64 `json:"price"`
	Area            float64 `json:"area"`
	Bedrooms        int     `json:"bedrooms"`
	Bathrooms       int     `json:"bathrooms"`
	Garages         int     `json:"garages"`
	PropertyType    string  `json:"property_type"`
	TransactionType string  `json:"transaction_type"`
	ImageURL        string  `json:"image_url"`
}

type updatePropertyRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Address     *string  `json:"address"`
	City        *string  `json:"city"`
	State       *string  `json:"state"`
	Price       *float64 `json:"price"`
	Area        *float64 `json:"area"`
	Bedrooms    *int     `json:"bedrooms"`
	Bathrooms   *int     `json:"bathrooms"`
	Garages     *int     `json:"garages"`
	Available   *bool    `json:"available"`
	ImageURL    *string  `json:"image_url"`
}

/*
Create publishes a new property listing owned by the requester.

POST /api/v1/properties

Request:
  - Body: createPropertyRequest

Response:
  - 201: Property: Created listing including its generated slug
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 401: Unauthorized: Missing requester identity
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createPropertyRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	property, err := handler.listingService.Create(request.Context(), identity.UserID, CreateInput{
		Title:           input.Title,
		Description:     input.Description,
		Address:         input.Address,
		City:            input.City,
		State:           input.State,
		Price:           input.Price,
		Area:            input.Area,
		Bedrooms:        input.Bedrooms,
		Bathrooms:       input.Bathrooms,
		Garages:         input.Garages,
		PropertyType:    input.PropertyType,
		TransactionType: input.TransactionType,
		ImageURL:        input.ImageURL,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, property)
}

/*
GetByID fetches a single listing.

GET /api/v1/properties/{id}

Response:
  - 200: Property
  - 404: NotFound
*/
func (handler *Handler) getByID(writer http.ResponseWriter, request *http.Request) {
	property, err := handler.listingService.GetByID(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, property)
}

/*
GetBySlug fetches a single listing by its URL slug.

GET /api/v1/properties/slug/{slug}

Response:
  - 200: Property
  - 404: NotFound
*/
func (handler *Handler) getBySlug(writer http.ResponseWriter, request *http.Request) {
	property, err := handler.listingService.GetBySlug(request.Context(), requestutil.Param(request, "slug"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, property)
}

/*
List returns a filtered page of listings.

GET /api/v1/properties?city=&property_type=&transaction_type=&min_price=&max_price=&available=&page=&limit=

Response:
  - 200: []Property with pagination metadata
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	filter := filterFromQuery(request)
	params := pagination.FromRequest(request)

	properties, meta, err := handler.listingService.List(request.Context(), filter, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, properties, meta)
}

/*
Update applies partial changes to a listing.

PUT /api/v1/properties/{id}

Request:
  - Body: updatePropertyRequest (any subset of mutable fields)

Response:
  - 200: Property: Updated listing
  - 403: Forbidden: Requester is neither the owner nor an administrator
  - 404: NotFound
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updatePropertyRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	property, err := handler.listingService.Update(request.Context(), identity, requestutil.ID(request, "id"), UpdateInput{
		Title:       input.Title,
		Description: input.Description,
		Address:     input.Address,
		City:        input.City,
		State:       input.State,
		Price:       input.Price,
		Area:        input.Area,
		Bedrooms:    input.Bedrooms,
		Bathrooms:   input.Bathrooms,
		Garages:     input.Garages,
		Available:   input.Available,
		ImageURL:    input.ImageURL,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, property)
}

/*
Remove permanently deletes a listing.

DELETE /api/v1/properties/{id}

Response:
  - 204: No Content: Listing removed
  - 403: Forbidden: Requester is neither the owner nor an administrator
  - 404: NotFound
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	identity, err := requestutil.RequiredIdentity(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.listingService.Delete(request.Context(), identity, requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// filterFromQuery parses the supported listing filters from the query string.
// Malformed numeric values fall back to "no restriction".
func filterFromQuery(request *http.Request) Filter {
	query := request.URL.Query()

	filter := Filter{
		City:            query.Get("city"),
		PropertyType:    query.Get("property_type"),
		TransactionType: query.Get("transaction_type"),
	}

	if raw := query.Get("min_price"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MinPrice = value
		}
	}
	if raw := query.Get("max_price"); raw != "" {
		if value, err := strconv.ParseFloat(raw, 64); err == nil {
			filter.MaxPrice = value
		}
	}
	if query.Get("available") == "true" {
		filter.OnlyAvailable = true
	}

	return filter
}

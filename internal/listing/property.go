// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

// Package listing implements the property catalog of the Inmobix platform.
//
// # Architecture
//
// The package follows the service/store/http layering: domain entities and
// contracts here, a PostgreSQL repository for persistence, a Redis
// read-through cache for hot reads, and a chi handler for transport.
package listing

import "time"

// PropertyType is the closed enumeration of listed property kinds.
type PropertyType string

const (
	TypeHouse     PropertyType = "HOUSE"
	TypeApartment PropertyType = "APARTMENT"
	TypeOffice    PropertyType = "OFFICE"
	TypeLot       PropertyType = "LOT"
	TypeFarm      PropertyType = "FARM"
)

// ValidPropertyType reports whether raw is a known property type.
func ValidPropertyType(raw string) bool {
	switch PropertyType(raw) {
	case TypeHouse, TypeApartment, TypeOffice, TypeLot, TypeFarm:
		return true
	default:
		return false
	}
}

// TransactionType is the closed enumeration of offered transactions.
type TransactionType string

const (
	TransactionSale TransactionType = "SALE"
	TransactionRent TransactionType = "RENT"
)

// ValidTransactionType reports whether raw is a known transaction type.
func ValidTransactionType(raw string) bool {
	switch TransactionType(raw) {
	case TransactionSale, TransactionRent:
		return true
	default:
		return false
	}
}

// Property represents a single real-estate listing.
//
// # Rules
//   - Slug is unique, derived from the title at creation time.
//   - OwnerID references the account that published the listing; only the
//     owner or an administrator may mutate it.
//   - Available toggles visibility in public listings without deleting data.
type Property struct {
	ID              string          `json:"id"`
	Slug            string          `json:"slug"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Address         string          `json:"address"`
	City            string          `json:"city"`
	State           string          `json:"state"`
	Price           float64         `json:"price"`
	Area            float64         `json:"area"`
	Bedrooms        int             `json:"bedrooms"`
	Bathrooms       int             `json:"bathrooms"`
	Garages         int             `json:"garages"`
	PropertyType    PropertyType    `json:"property_type"`
	TransactionType TransactionType `json:"transaction_type"`
	Available       bool            `json:"available"`
	ImageURL        string          `json:"image_url,omitempty"`
	OwnerID         string          `json:"owner_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Filter narrows List results. Zero values mean "no restriction".
type Filter struct {
	City            string
	PropertyType    string
	TransactionType string
	MinPrice        float64
	MaxPrice        float64
	OnlyAvailable   bool
}

// # Field Identifiers

// Global field names for validation in the listing domain.
const (
	FieldTitle           = "title"
	FieldAddress         = "address"
	FieldCity            = "city"
	FieldState           = "state"
	FieldPrice           = "price"
	FieldArea            = "area"
	FieldBedrooms        = "bedrooms"
	FieldBathrooms       = "bathrooms"
	FieldGarages         = "garages"
	FieldPropertyType    = "property_type"
	FieldTransactionType = "transaction_type"
)

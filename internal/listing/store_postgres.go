// Copyright (c) 2026 Inmobix. All rights reserved.
// Author: engineering@inmobix.com

package listing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inmobix/backend/internal/platform/apperr"
	"github.com/inmobix/backend/internal/platform/dberr"
	"github.com/inmobix/backend/pkg/pagination"
)

// propertyColumns is the canonical column list, kept in sync with scanProperty.
const propertyColumns = `id, slug, title, description, address, city, state,
	price, area, bedrooms, bathrooms, garages, propertytype, transactiontype,
	available, imageurl, ownerid, createdat, updatedat`

// PostgresPropertyRepository implements [PropertyRepository] on pgx.
type PostgresPropertyRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPropertyRepository creates the PostgreSQL-backed listing store.
func NewPostgresPropertyRepository(pool *pgxpool.Pool) *PostgresPropertyRepository {
	return &PostgresPropertyRepository{pool: pool}
}

func (repository *PostgresPropertyRepository) FindByID(context context.Context, id string) (*Property, error) {
	return repository.findBy(context, "id", id)
}

func (repository *PostgresPropertyRepository) FindBySlug(context context.Context, slug string) (*Property, error) {
	return repository.findBy(context, "slug", slug)
}

/*
FindAll returns a filtered page of listings plus the unfiltered match count.

Description: Filters compose with AND; zero-valued filter fields add no
predicate. Results are ordered newest first.

Parameters:
  - context: context.Context
  - filter: Filter
  - params: pagination.Params

Returns:
  - []*Property: Hydrated entities
  - int: Total match count before paging
  - error: Database retrieval failures
*/
func (repository *PostgresPropertyRepository) FindAll(context context.Context, filter Filter, params pagination.Params) ([]*Property, int, error) {
	where, args := buildFilter(filter)

	countQuery := "SELECT COUNT(*) FROM listings.property" + where

	var total int
	if err := repository.pool.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "property_count_failed")
	}

	query := fmt.Sprintf(`SELECT %s FROM listings.property%s
		ORDER BY createdat DESC
		LIMIT $%d OFFSET $%d`,
		propertyColumns, where, len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset())

	rows, err := repository.pool.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "property_find_all_failed")
	}
	defer rows.Close()

	properties := make([]*Property, 0, params.Limit)
	for rows.Next() {
		property, err := scanProperty(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "property_scan_failed")
		}
		properties = append(properties, property)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "property_rows_failed")
	}

	return properties, total, nil
}

func (repository *PostgresPropertyRepository) Create(context context.Context, property *Property) error {
	now := time.Now().UTC()
	property.CreatedAt = now
	property.UpdatedAt = now

	query := `INSERT INTO listings.property (` + propertyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19)`

	_, err := repository.pool.Exec(context, query,
		property.ID, property.Slug, property.Title,
		nullString(property.Description), property.Address, property.City,
		property.State, property.Price, property.Area, property.Bedrooms,
		property.Bathrooms, property.Garages, string(property.PropertyType),
		string(property.TransactionType), property.Available,
		nullString(property.ImageURL), property.OwnerID,
		property.CreatedAt, property.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "property_create_failed")
	}

	return nil
}

func (repository *PostgresPropertyRepository) Update(context context.Context, property *Property) error {
	property.UpdatedAt = time.Now().UTC()

	query := `UPDATE listings.property SET
		title = $2, description = $3, address = $4, city = $5, state = $6,
		price = $7, area = $8, bedrooms = $9, bathrooms = $10, garages = $11,
		available = $12, imageurl = $13, updatedat = $14
		WHERE id = $1`

	tag, err := repository.pool.Exec(context, query,
		property.ID, property.Title, nullString(property.Description),
		property.Address, property.City, property.State, property.Price,
		property.Area, property.Bedrooms, property.Bathrooms,
		property.Garages, property.Available, nullString(property.ImageURL),
		property.UpdatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "property_update_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Property")
	}

	return nil
}

func (repository *PostgresPropertyRepository) Delete(context context.Context, id string) error {
	tag, err := repository.pool.Exec(context, "DELETE FROM listings.property WHERE id = $1", id)
	if err != nil {
		return dberr.Wrap(err, "property_delete_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Property")
	}

	return nil
}

// findBy fetches one listing by an exact column match.
func (repository *PostgresPropertyRepository) findBy(context context.Context, column, value string) (*Property, error) {
	query := fmt.Sprintf("SELECT %s FROM listings.property WHERE %s = $1", propertyColumns, column)

	property, err := scanProperty(repository.pool.QueryRow(context, query, value))
	if err != nil {
		return nil, dberr.Wrap(err, "property_find_failed")
	}

	return property, nil
}

// buildFilter translates a Filter into a WHERE clause and its arguments.
func buildFilter(filter Filter) (string, []any) {
	var predicates []string
	var args []any

	add := func(predicate string, arg any) {
		args = append(args, arg)
		predicates = append(predicates, fmt.Sprintf(predicate, len(args)))
	}

	if filter.City != "" {
		add("city ILIKE $%d", filter.City)
	}
	if filter.PropertyType != "" {
		add("propertytype = $%d", filter.PropertyType)
	}
	if filter.TransactionType != "" {
		add("transactiontype = $%d", filter.TransactionType)
	}
	if filter.MinPrice > 0 {
		add("price >= $%d", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		add("price <= $%d", filter.MaxPrice)
	}
	if filter.OnlyAvailable {
		predicates = append(predicates, "available = TRUE")
	}

	if len(predicates) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(predicates, " AND "), args
}

// scanProperty hydrates a Property from a row, translating NULL columns.
func scanProperty(row pgx.Row) (*Property, error) {
	property := &Property{}

	var description, imageURL *string

	err := row.Scan(
		&property.ID, &property.Slug, &property.Title, &description,
		&property.Address, &property.City, &property.State, &property.Price,
		&property.Area, &property.Bedrooms, &property.Bathrooms,
		&property.Garages, &property.PropertyType, &property.TransactionType,
		&property.Available, &imageURL, &property.OwnerID,
		&property.CreatedAt, &property.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	property.Description = fromNullString(description)
	property.ImageURL = fromNullString(imageURL)

	return property, nil
}

// nullString converts an empty string to a NULL-able pointer.
func nullString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// fromNullString converts a NULL-able pointer back to a plain string.
func fromNullString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

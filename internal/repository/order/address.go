package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gathr/internal/entities"
	"gathr/internal/repository"
	"gathr/internal/service/order"

	"github.com/jackc/pgx/v5"
)

func (r *Repository) CreateAddress(ctx context.Context, addressModify entities.AddressModify) (*entities.Address, error) {
	addressDB := FromAddressModify(&addressModify)
	if addressDB.CustomerID == "" {
		return nil, fmt.Errorf("create address: %w", order.ErrMissingRequiredFields)
	}

	query := `INSERT INTO addresses (customer_id, label, line, city, lat, long)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + strings.Join(addressColumns, ", ")

	var created AddressDB
	err := r.querier.QueryRow(ctx, query,
		addressDB.CustomerID,
		addressDB.Label,
		addressDB.Line,
		addressDB.City,
		addressDB.Lat,
		addressDB.Long,
	).Scan(addressDest(&created)...)
	if err != nil {
		if repository.IsPgErrorWithCode(err, repository.PgErrCheckViolation) {
			return nil, fmt.Errorf("create address: %w", order.ErrMissingRequiredFields)
		}
		return nil, fmt.Errorf("create address: %w", err)
	}
	return ToAddressDomain(&created), nil
}

func (r *Repository) GetAddressByID(ctx context.Context, id string) (*entities.Address, error) {
	query := `SELECT ` + strings.Join(addressColumns, ", ") + ` FROM addresses WHERE id = $1`

	var addressDB AddressDB
	err := r.querier.QueryRow(ctx, query, id).Scan(addressDest(&addressDB)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || repository.IsPgErrorWithCode(err, repository.PgErrInvalidTextRepresentation) {
			return nil, order.ErrAddressNotFound
		}
		return nil, fmt.Errorf("get address %s: %w", id, err)
	}
	return ToAddressDomain(&addressDB), nil
}

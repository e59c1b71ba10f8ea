package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/fantasyrun/runner-market/internal/domain/marketplace"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	activeListingIndex  = "uq_listings_active_card"
	purchaseTxHashIndex = "pack_purchases_tx_hash_key"
)

// pgError returns the SQLSTATE and constraint name of a postgres error, if err is one.
func pgError(err error) (code, constraint string, ok bool) {
	var pgErr pgdriver.Error
	if !errors.As(err, &pgErr) {
		return "", "", false
	}
	return pgErr.Field('C'), pgErr.Field('n'), true
}

// wrap maps driver errors onto the engine's storage sentinels.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to %s: %w", op, marketplace.ErrRecordNotFound)
	}
	if code, constraint, ok := pgError(err); ok && code == pgUniqueViolation {
		if constraint == activeListingIndex {
			return fmt.Errorf("failed to %s: %w", op, marketplace.ErrActiveListingExists)
		}
		return fmt.Errorf("failed to %s: %w: %s", op, marketplace.ErrConflict, constraint)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

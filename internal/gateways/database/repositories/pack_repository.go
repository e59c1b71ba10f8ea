package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/fantasyrun/runner-market/internal/config"
	"github.com/fantasyrun/runner-market/internal/domain/packs"
	"github.com/fantasyrun/runner-market/internal/gateways/database"
	"github.com/fantasyrun/runner-market/internal/gateways/database/models"
)

type packRepository struct {
	db *bun.DB
}

var _ packs.Repository = (*packRepository)(nil)

func NewPackRepository(db *bun.DB) *packRepository {
	return &packRepository{db: db}
}

func (r *packRepository) Mint(ctx context.Context, purchase *models.PackPurchase, cards []packs.MintedCard) error {
	ctx, cancel := context.WithTimeout(ctx, config.DefaultQueryTimeout)
	defer cancel()

	return r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(purchase).Exec(ctx); err != nil {
			return mintErr("insert pack purchase", err)
		}
		if len(cards) == 0 {
			return nil
		}

		rows := make([]*models.Card, len(cards))
		metadata := make([]*models.CardMetadata, len(cards))
		for i, c := range cards {
			var tokenID int64
			if err := tx.NewRaw("SELECT nextval(?)", database.TokenIDSequence).Scan(ctx, &tokenID); err != nil {
				return fmt.Errorf("failed to allocate token id: %w", err)
			}
			c.Card.TokenID = tokenID
			c.Metadata.TokenID = tokenID
			rows[i] = c.Card
			metadata[i] = c.Metadata
		}

		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return mintErr("insert cards", err)
		}
		if _, err := tx.NewInsert().Model(&metadata).Exec(ctx); err != nil {
			return wrap("insert card metadata", err)
		}
		return nil
	})
}

func mintErr(op string, err error) error {
	if code, constraint, ok := pgError(err); ok {
		switch code {
		case pgUniqueViolation:
			if constraint == purchaseTxHashIndex {
				return fmt.Errorf("failed to %s: %w", op, packs.ErrDuplicateTxHash)
			}
		case pgForeignKeyViolation:
			return fmt.Errorf("failed to %s: %w", op, packs.ErrUnknownBuyer)
		}
	}
	return wrap(op, err)
}

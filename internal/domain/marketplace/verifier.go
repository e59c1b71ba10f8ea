package marketplace

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fantasyrun/runner-market/internal/gateways/database/models"
)

//go:generate mockgen -destination=mock/verifier.go -package=mock . Verifier

// Verifier is the chain collaborator. Orders are passed through exactly as stored;
// rebuilding any signing domain hash is the verifier's job.
type Verifier interface {
	// VerifyOrder checks signature, whitelist, cancelled-or-filled and expiration on chain.
	VerifyOrder(ctx context.Context, order models.SignedOrder) (bool, error)
	// ExecuteTransfer matches a sell and a buy order on chain and returns the transaction hash.
	ExecuteTransfer(ctx context.Context, req TransferRequest) (string, error)
	// ConfirmTransfer reports whether txHash is a final transfer that fills order.
	ConfirmTransfer(ctx context.Context, order models.SignedOrder, txHash string) (bool, error)
}

type TransferRequest struct {
	Sell     models.SignedOrder
	Buy      models.SignedOrder
	TokenID  int64
	SellerID string
	BuyerID  string
	Price    decimal.Decimal
}

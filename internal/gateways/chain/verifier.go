package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"

	"github.com/fantasyrun/runner-market/internal/domain/marketplace"
	"github.com/fantasyrun/runner-market/internal/gateways/database/models"
)

// ErrRemote wraps a failure reported by the settlement service itself.
var ErrRemote = errors.New("settlement service error")

// Requester is the request/reply half of *nats.Conn.
type Requester interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

type verifyRequest struct {
	Order models.SignedOrder `json:"order"`
}

type verifyReply struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

type executeRequest struct {
	Sell     models.SignedOrder `json:"sell"`
	Buy      models.SignedOrder `json:"buy"`
	TokenID  int64              `json:"token_id"`
	SellerID string             `json:"seller_id"`
	BuyerID  string             `json:"buyer_id"`
	Price    decimal.Decimal    `json:"price"`
}

type executeReply struct {
	TxHash string `json:"tx_hash"`
	Error  string `json:"error,omitempty"`
}

type confirmRequest struct {
	Order  models.SignedOrder `json:"order"`
	TxHash string             `json:"tx_hash"`
}

type confirmReply struct {
	Confirmed bool   `json:"confirmed"`
	Error     string `json:"error,omitempty"`
}

// NATSVerifier forwards order checks and transfers to the settlement service
// listening on <prefix>.verify, <prefix>.execute and <prefix>.confirm.
type NATSVerifier struct {
	conn    Requester
	prefix  string
	timeout time.Duration
}

var _ marketplace.Verifier = (*NATSVerifier)(nil)

func NewNATSVerifier(conn Requester, prefix string, timeout time.Duration) *NATSVerifier {
	if conn == nil {
		panic("nats connection cannot be nil")
	}
	return &NATSVerifier{conn: conn, prefix: prefix, timeout: timeout}
}

func (v *NATSVerifier) VerifyOrder(ctx context.Context, order models.SignedOrder) (bool, error) {
	var reply verifyReply
	if err := v.call(ctx, "verify", verifyRequest{Order: order}, &reply); err != nil {
		return false, err
	}
	if reply.Error != "" {
		return false, fmt.Errorf("%w: %s", ErrRemote, reply.Error)
	}
	return reply.Valid, nil
}

func (v *NATSVerifier) ExecuteTransfer(ctx context.Context, req marketplace.TransferRequest) (string, error) {
	var reply executeReply
	err := v.call(ctx, "execute", executeRequest{
		Sell:     req.Sell,
		Buy:      req.Buy,
		TokenID:  req.TokenID,
		SellerID: req.SellerID,
		BuyerID:  req.BuyerID,
		Price:    req.Price,
	}, &reply)
	if err != nil {
		return "", err
	}
	if reply.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrRemote, reply.Error)
	}

	slog.Info("Chain transfer executed",
		slog.String("type", "mkt"),
		slog.Int64("token_id", req.TokenID),
		slog.String("tx_hash", reply.TxHash))
	return reply.TxHash, nil
}

func (v *NATSVerifier) ConfirmTransfer(ctx context.Context, order models.SignedOrder, txHash string) (bool, error) {
	var reply confirmReply
	if err := v.call(ctx, "confirm", confirmRequest{Order: order, TxHash: txHash}, &reply); err != nil {
		return false, err
	}
	if reply.Error != "" {
		return false, fmt.Errorf("%w: %s", ErrRemote, reply.Error)
	}
	return reply.Confirmed, nil
}

func (v *NATSVerifier) call(ctx context.Context, method string, req, reply any) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	if v.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.timeout)
		defer cancel()
	}

	subject := v.prefix + "." + method
	start := time.Now()
	msg, err := v.conn.RequestWithContext(ctx, subject, payload)
	if err != nil {
		slog.Error("Settlement request failed",
			slog.String("type", "mkt"),
			slog.String("subject", subject),
			slog.Duration("took", time.Since(start)),
			slog.Any("error", err))
		return fmt.Errorf("failed to call %s: %w", subject, err)
	}

	if err := json.Unmarshal(msg.Data, reply); err != nil {
		return fmt.Errorf("failed to decode %s reply: %w", method, err)
	}
	return nil
}

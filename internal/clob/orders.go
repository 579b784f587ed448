package clob

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"crossfill/internal/domain"
	"crossfill/internal/observability"
)

// orderRequest is the signed order submission payload.
type orderRequest struct {
	TokenID string  `json:"token_id"`
	Side    string  `json:"side"`
	Price   float64 `json:"price"`
	Size    float64 `json:"size"`
	Funder  string  `json:"funder"`
	Nonce   int64   `json:"nonce"`
}

// cancelRequest carries the order IDs to cancel.
type cancelRequest struct {
	OrderIDs []string `json:"orderIDs"`
}

// Trader submits and cancels orders for one wallet. It shares the transport
// of the underlying Client; each wallet in a chain gets its own Trader.
type Trader struct {
	client *Client
	signer *Signer
	funder string
}

// NewTrader creates a Trader for the wallet described by signer and funder.
func (c *Client) NewTrader(signer *Signer, funder string) *Trader {
	return &Trader{client: c, signer: signer, funder: funder}
}

// Funder returns the funding address this trader submits for.
func (t *Trader) Funder() string {
	return t.funder
}

// Submit places a limit order and returns the venue-assigned order ID.
// A success acknowledgement says nothing about fills; settled positions are
// the only fill authority.
func (t *Trader) Submit(ctx context.Context, args domain.OrderArgs) (string, error) {
	req := orderRequest{
		TokenID: args.TokenID,
		Side:    string(args.Side),
		Price:   args.Price,
		Size:    args.Size,
		Funder:  t.funder,
		Nonce:   time.Now().UnixNano(),
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal order: %w", err)
	}

	var resp orderResponse
	if err := t.client.do(ctx, http.MethodPost, "/order", nil, body, t.signer.Sign, &resp); err != nil {
		observability.RecordOrderSubmit(string(args.Side), "error")
		return "", fmt.Errorf("submit %s order: %w", args.Side, err)
	}
	if !resp.Success {
		observability.RecordOrderSubmit(string(args.Side), "rejected")
		return "", fmt.Errorf("order rejected: %s", resp.ErrMsg)
	}

	observability.RecordOrderSubmit(string(args.Side), "ok")
	return resp.OrderID, nil
}

// Cancel removes a resting order. Cancelling an already-gone order is not
// an error; the venue reports it in not_canceled and the chain moves on.
func (t *Trader) Cancel(ctx context.Context, orderID string) error {
	body, err := json.Marshal(cancelRequest{OrderIDs: []string{orderID}})
	if err != nil {
		return fmt.Errorf("marshal cancel: %w", err)
	}

	var resp cancelResponse
	if err := t.client.do(ctx, http.MethodDelete, "/order", nil, body, t.signer.Sign, &resp); err != nil {
		return fmt.Errorf("cancel order %s: %w", orderID, err)
	}

	for _, id := range resp.Canceled {
		if id == orderID {
			observability.RecordOrderCancel("ok")
			return nil
		}
	}
	if reason, ok := resp.NotCanceled[orderID]; ok {
		// Most common reason is the order matched or expired already.
		log.Printf("[clob] order %s not canceled: %s", orderID, reason)
		observability.RecordOrderCancel("already_gone")
		return nil
	}

	observability.RecordOrderCancel("unknown")
	return nil
}

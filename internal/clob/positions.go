package clob

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"crossfill/internal/observability"
)

// SettledPosition returns the settled holdings of funder in the given token.
// Only the settlement layer counts: order acknowledgements are never used to
// infer ownership. Entries are summed because the venue may report a holding
// split across several lots.
func (c *Client) SettledPosition(ctx context.Context, funder, conditionID, tokenID string) (float64, error) {
	query := url.Values{
		"user":   {funder},
		"market": {conditionID},
	}

	start := time.Now()
	var raw []rawPosition
	if err := c.get(ctx, "/positions", query, &raw); err != nil {
		return 0, fmt.Errorf("fetch positions for %s: %w", funder, err)
	}
	observability.RecordOracleRead(time.Since(start).Seconds())

	var total float64
	for _, p := range raw {
		if p.Asset == tokenID {
			total += p.Size
		}
	}
	return total, nil
}

// SettledPositionByOutcome sums holdings whose outcome label matches, case
// insensitively. Used when the caller knows the outcome but not the token ID.
func (c *Client) SettledPositionByOutcome(ctx context.Context, funder, conditionID, outcome string) (float64, error) {
	query := url.Values{
		"user":   {funder},
		"market": {conditionID},
	}

	var raw []rawPosition
	if err := c.get(ctx, "/positions", query, &raw); err != nil {
		return 0, fmt.Errorf("fetch positions for %s: %w", funder, err)
	}

	var total float64
	for _, p := range raw {
		if strings.EqualFold(p.Outcome, outcome) {
			total += p.Size
		}
	}
	return total, nil
}

package clob

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"crossfill/internal/domain"
)

// EndCursor is the pagination sentinel the venue returns on the last page.
const EndCursor = "LTE="

// ListMarkets walks the cursor-paginated /markets endpoint and returns every
// market the venue reports. Pagination stops at the end sentinel or when a
// page comes back empty.
func (c *Client) ListMarkets(ctx context.Context) ([]domain.Market, error) {
	var all []domain.Market
	cursor := ""

	for {
		query := url.Values{}
		if cursor != "" {
			query.Set("next_cursor", cursor)
		}

		var page marketsPage
		if err := c.get(ctx, "/markets", query, &page); err != nil {
			return nil, fmt.Errorf("list markets (cursor=%q): %w", cursor, err)
		}

		for _, m := range page.Data {
			all = append(all, toDomainMarket(m))
		}

		if page.NextCursor == "" || page.NextCursor == EndCursor || len(page.Data) == 0 {
			break
		}
		cursor = page.NextCursor
	}

	return all, nil
}

// GetMarket retrieves one market by condition ID.
func (c *Client) GetMarket(ctx context.Context, conditionID string) (*domain.Market, error) {
	var raw rawMarket
	if err := c.get(ctx, "/markets/"+url.PathEscape(conditionID), nil, &raw); err != nil {
		return nil, fmt.Errorf("get market %s: %w", conditionID, err)
	}
	m := toDomainMarket(raw)
	return &m, nil
}

// ResolveToken finds the token ID of the outcome with the given label in a
// market, consulting the rewards endpoint which carries the token roster.
// The match is case insensitive.
func (c *Client) ResolveToken(ctx context.Context, conditionID, outcome string) (string, error) {
	var raw rawMarket
	if err := c.get(ctx, "/rewards/markets/"+url.PathEscape(conditionID), nil, &raw); err != nil {
		return "", fmt.Errorf("get rewards market %s: %w", conditionID, err)
	}

	for _, tok := range raw.Tokens {
		if strings.EqualFold(tok.Outcome, outcome) {
			return tok.TokenID, nil
		}
	}
	return "", fmt.Errorf("market %s has no %q outcome token", conditionID, outcome)
}

func toDomainMarket(raw rawMarket) domain.Market {
	m := domain.Market{
		ConditionID:     raw.ConditionID,
		Question:        raw.Question,
		Description:     raw.Description,
		Category:        raw.Category,
		Active:          raw.Active,
		Closed:          raw.Closed,
		AcceptingOrders: raw.AcceptingOrders,
	}
	m.Tokens = make([]domain.Token, 0, len(raw.Tokens))
	for _, tok := range raw.Tokens {
		m.Tokens = append(m.Tokens, domain.Token{TokenID: tok.TokenID, Outcome: tok.Outcome})
	}
	return m
}

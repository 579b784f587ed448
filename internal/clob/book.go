package clob

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"crossfill/internal/domain"
)

// FetchBook retrieves the current order book for a token.
func (c *Client) FetchBook(ctx context.Context, tokenID string) (*domain.Book, error) {
	query := url.Values{"token_id": {tokenID}}

	var raw rawBook
	if err := c.get(ctx, "/book", query, &raw); err != nil {
		return nil, fmt.Errorf("fetch book for %s: %w", tokenID, err)
	}

	book := &domain.Book{TokenID: tokenID}
	book.Bids = make([]domain.BookLevel, 0, len(raw.Bids))
	for _, lvl := range raw.Bids {
		parsed, err := parseLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("parse bid level: %w", err)
		}
		book.Bids = append(book.Bids, parsed)
	}
	book.Asks = make([]domain.BookLevel, 0, len(raw.Asks))
	for _, lvl := range raw.Asks {
		parsed, err := parseLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("parse ask level: %w", err)
		}
		book.Asks = append(book.Asks, parsed)
	}

	return book, nil
}

// BestBidAsk retrieves the top of book for a token. Either side may be nil
// when that side of the book is empty.
func (c *Client) BestBidAsk(ctx context.Context, tokenID string) (bid, ask *float64, err error) {
	book, err := c.FetchBook(ctx, tokenID)
	if err != nil {
		return nil, nil, err
	}
	return book.BestBid(), book.BestAsk(), nil
}

func parseLevel(lvl rawLevel) (domain.BookLevel, error) {
	price, err := strconv.ParseFloat(lvl.Price, 64)
	if err != nil {
		return domain.BookLevel{}, fmt.Errorf("price %q: %w", lvl.Price, err)
	}
	size, err := strconv.ParseFloat(lvl.Size, 64)
	if err != nil {
		return domain.BookLevel{}, fmt.Errorf("size %q: %w", lvl.Size, err)
	}
	return domain.BookLevel{Price: price, Size: size}, nil
}

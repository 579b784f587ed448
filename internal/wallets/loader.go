// Package wallets loads the wallet roster from a CSV file and registers it
// in storage. Row order defines the wallet index, used for naming only;
// chain composition is chosen by the caller.
package wallets

import (
	"context"
	"crypto/ed25519"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"

	"crossfill/internal/domain"
	"crossfill/internal/storage"
)

var (
	ErrBadSigningKey = errors.New("signing key must be a base58 32-byte ed25519 seed")
	ErrBadFunder     = errors.New("funder must be a base58 32-byte on-curve address")
)

// Entry is one parsed CSV row.
type Entry struct {
	SigningKey ed25519.PrivateKey
	Funder     string
}

// ParseSigningKey decodes a base58 32-byte ed25519 seed into a private key.
func ParseSigningKey(s string) (ed25519.PrivateKey, error) {
	raw, err := base58.Decode(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSigningKey, err)
	}
	if len(raw) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrBadSigningKey, len(raw))
	}
	return ed25519.NewKeyFromSeed(raw), nil
}

// ValidateFunder checks that addr decodes to a 32-byte on-curve ed25519
// point, the shape of a venue account address.
func ValidateFunder(addr string) error {
	raw, err := base58.Decode(strings.TrimSpace(addr))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadFunder, err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("%w: got %d bytes", ErrBadFunder, len(raw))
	}
	if _, err := new(edwards25519.Point).SetBytes(raw); err != nil {
		return fmt.Errorf("%w: off-curve point", ErrBadFunder)
	}
	return nil
}

// Address derives the base58 address of a signing key's public half.
func Address(key ed25519.PrivateKey) string {
	return base58.Encode(key.Public().(ed25519.PublicKey))
}

// ReadCSV parses a wallet CSV with header "signing_key,funder".
func ReadCSV(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wallets csv: %w", err)
	}
	defer f.Close()

	return parseCSV(f)
}

func parseCSV(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	keyCol, funderCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "signing_key":
			keyCol = i
		case "funder":
			funderCol = i
		}
	}
	if keyCol < 0 || funderCol < 0 {
		return nil, fmt.Errorf("wallets csv must have signing_key and funder columns, got %v", header)
	}

	var entries []Entry
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(entries)+1, err)
		}

		key, err := ParseSigningKey(row[keyCol])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(entries)+1, err)
		}
		funder := strings.TrimSpace(row[funderCol])
		if err := ValidateFunder(funder); err != nil {
			return nil, fmt.Errorf("row %d: %w", len(entries)+1, err)
		}

		entries = append(entries, Entry{SigningKey: key, Funder: funder})
	}

	return entries, nil
}

// Load reads the CSV and registers each wallet in the store, reusing an
// existing row when the index is already known.
func Load(ctx context.Context, path string, store storage.WalletStore) ([]domain.Wallet, error) {
	entries, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Wallet, 0, len(entries))
	for idx, e := range entries {
		w := domain.Wallet{
			Index:      idx,
			Nickname:   fmt.Sprintf("Wallet_%d", idx),
			Funder:     e.Funder,
			SigningKey: e.SigningKey,
			Active:     true,
		}

		id, err := store.Add(ctx, &w)
		switch {
		case err == nil:
			w.ID = id
		case errors.Is(err, storage.ErrDuplicateKey):
			existing, err := store.GetByIndex(ctx, idx)
			if err != nil {
				return nil, fmt.Errorf("resolve existing wallet %d: %w", idx, err)
			}
			w.ID = existing.ID
			log.Printf("[wallets] reusing existing wallet %d (id=%d)", idx, w.ID)
		default:
			return nil, fmt.Errorf("add wallet %d: %w", idx, err)
		}

		result = append(result, w)
	}

	return result, nil
}

package clob

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossfill/internal/domain"
)

func testSigner(t *testing.T) (*Signer, ed25519.PublicKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return NewSigner(priv), pub
}

func TestSigner_SignAttachesVerifiableHeaders(t *testing.T) {
	signer, pub := testSigner(t)
	signer.now = func() time.Time { return time.Unix(1700000000, 0) }

	body := []byte(`{"token_id":"tok-1"}`)
	req := httptest.NewRequest(http.MethodPost, "https://venue.test/order", nil)
	require.NoError(t, signer.Sign(req, body))

	assert.Equal(t, signer.Address(), req.Header.Get(headerAddress))
	assert.Equal(t, "1700000000", req.Header.Get(headerTimestamp))

	ok := Verify(pub,
		req.Header.Get(headerTimestamp), http.MethodPost, "/order", body,
		req.Header.Get(headerSignature))
	assert.True(t, ok)

	// Tampered body must not verify.
	ok = Verify(pub,
		req.Header.Get(headerTimestamp), http.MethodPost, "/order", []byte(`{}`),
		req.Header.Get(headerSignature))
	assert.False(t, ok)
}

func TestSigner_AddressIsBase58PublicKey(t *testing.T) {
	signer, pub := testSigner(t)
	assert.Equal(t, base58.Encode(pub), signer.Address())
}

func TestTrader_Submit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/order", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(headerAddress))
		assert.NotEmpty(t, r.Header.Get(headerSignature))

		body, _ := io.ReadAll(r.Body)
		var req orderRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "tok-1", req.TokenID)
		assert.Equal(t, "BUY", req.Side)
		assert.Equal(t, 0.52, req.Price)
		assert.Equal(t, 5.0, req.Size)
		assert.Equal(t, "funder-1", req.Funder)

		json.NewEncoder(w).Encode(orderResponse{Success: true, OrderID: "ord-1"})
	}))
	defer server.Close()

	signer, _ := testSigner(t)
	trader := NewClient(server.URL).NewTrader(signer, "funder-1")

	orderID, err := trader.Submit(context.Background(), domain.OrderArgs{
		TokenID: "tok-1",
		Side:    domain.SideBuy,
		Price:   0.52,
		Size:    5,
	})
	require.NoError(t, err)
	assert.Equal(t, "ord-1", orderID)
}

func TestTrader_SubmitRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(orderResponse{Success: false, ErrMsg: "insufficient balance"})
	}))
	defer server.Close()

	signer, _ := testSigner(t)
	trader := NewClient(server.URL).NewTrader(signer, "funder-1")

	_, err := trader.Submit(context.Background(), domain.OrderArgs{
		TokenID: "tok-1", Side: domain.SideSell, Price: 0.5, Size: 1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient balance")
}

func TestTrader_Cancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)

		body, _ := io.ReadAll(r.Body)
		var req cancelRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, []string{"ord-1"}, req.OrderIDs)

		json.NewEncoder(w).Encode(cancelResponse{Canceled: []string{"ord-1"}})
	}))
	defer server.Close()

	signer, _ := testSigner(t)
	trader := NewClient(server.URL).NewTrader(signer, "funder-1")

	assert.NoError(t, trader.Cancel(context.Background(), "ord-1"))
}

func TestTrader_CancelAlreadyGone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(cancelResponse{
			NotCanceled: map[string]string{"ord-1": "order already matched"},
		})
	}))
	defer server.Close()

	signer, _ := testSigner(t)
	trader := NewClient(server.URL).NewTrader(signer, "funder-1")

	// Not an error: the order simply no longer rests.
	assert.NoError(t, trader.Cancel(context.Background(), "ord-1"))
}

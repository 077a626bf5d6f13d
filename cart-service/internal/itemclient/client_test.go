package itemclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amaljyothis2003/AkasaEats/pkg/apperr"
)

func newItemServer(t *testing.T, items map[string]Item) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Unauthorized. Invalid token."})
			return
		}

		if r.Method == http.MethodPost && r.URL.Path == "/items/check-stock" {
			var req struct {
				Items []StockRequest `json:"items"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			var statuses []StockStatus
			allAvailable := true
			for _, line := range req.Items {
				item, ok := items[line.ItemID]
				if !ok {
					statuses = append(statuses, StockStatus{ItemID: line.ItemID, Available: false, Reason: "Item not found"})
					allAvailable = false
					continue
				}
				available := item.Stock >= line.Quantity
				if !available {
					allAvailable = false
				}
				statuses = append(statuses, StockStatus{
					ItemID:            line.ItemID,
					Available:         available,
					CurrentStock:      item.Stock,
					RequestedQuantity: line.Quantity,
				})
			}
			json.NewEncoder(w).Encode(map[string]any{"success": true, "allAvailable": allAvailable, "data": statuses})
			return
		}

		id := r.URL.Path[len("/items/"):]
		item, ok := items[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Item not found"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": item})
	}))
}

func TestGetItem_Success(t *testing.T) {
	srv := newItemServer(t, map[string]Item{
		"apple": {ID: "apple", Name: "Fresh Apple", Price: 3.99, Stock: 100, Available: true},
	})
	defer srv.Close()

	sut := New(srv.URL, 2*time.Second)
	item, err := sut.GetItem(context.Background(), "apple", "test-token")
	require.NoError(t, err)
	assert.Equal(t, "Fresh Apple", item.Name)
	assert.Equal(t, 100, item.Stock)
}

func TestGetItem_NotFound(t *testing.T) {
	srv := newItemServer(t, map[string]Item{})
	defer srv.Close()

	sut := New(srv.URL, 2*time.Second)
	_, err := sut.GetItem(context.Background(), "ghost", "test-token")
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestGetItem_PropagatesUpstreamStatus(t *testing.T) {
	srv := newItemServer(t, map[string]Item{})
	defer srv.Close()

	sut := New(srv.URL, 2*time.Second)
	_, err := sut.GetItem(context.Background(), "apple", "wrong-token")
	require.Error(t, err)

	appErr := apperr.From(err)
	assert.Equal(t, apperr.CodeUpstream, appErr.Code)
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus())
	assert.Equal(t, "Unauthorized. Invalid token.", appErr.Message)
}

func TestGetItem_TransportError(t *testing.T) {
	srv := newItemServer(t, nil)
	srv.Close() // connection refused

	sut := New(srv.URL, time.Second)
	_, err := sut.GetItem(context.Background(), "apple", "test-token")
	require.Error(t, err)
	assert.Equal(t, apperr.CodeUpstream, apperr.From(err).Code)
}

func TestGetItems_CollectsFailuresSeparately(t *testing.T) {
	srv := newItemServer(t, map[string]Item{
		"apple":  {ID: "apple", Name: "Fresh Apple", Stock: 10},
		"banana": {ID: "banana", Name: "Banana", Stock: 20},
	})
	defer srv.Close()

	sut := New(srv.URL, 2*time.Second)
	items, failures := sut.GetItems(context.Background(), []string{"apple", "ghost", "banana"}, "test-token")

	assert.Len(t, items, 2)
	require.Len(t, failures, 1)
	assert.Equal(t, "ghost", failures[0].ItemID)
}

func TestCheckStock_Success(t *testing.T) {
	srv := newItemServer(t, map[string]Item{
		"apple": {ID: "apple", Stock: 5},
	})
	defer srv.Close()

	sut := New(srv.URL, 2*time.Second)
	statuses, err := sut.CheckStock(context.Background(), []StockRequest{
		{ItemID: "apple", Quantity: 3},
		{ItemID: "ghost", Quantity: 1},
	}, "test-token")
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[0].Available)
	assert.Equal(t, 5, statuses[0].CurrentStock)
	assert.False(t, statuses[1].Available)
	assert.Equal(t, "Item not found", statuses[1].Reason)
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	srv := newItemServer(t, nil)
	srv.Close()

	sut := New(srv.URL, time.Second)
	// Default settings trip the breaker after five consecutive failures.
	for i := 0; i < 6; i++ {
		_, _ = sut.GetItem(context.Background(), "apple", "test-token")
	}

	_, err := sut.GetItem(context.Background(), "apple", "test-token")
	require.Error(t, err)

	appErr := apperr.From(err)
	assert.Equal(t, apperr.CodeUpstream, appErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.HTTPStatus())
	assert.Equal(t, "Item service is unavailable", appErr.Message)
}

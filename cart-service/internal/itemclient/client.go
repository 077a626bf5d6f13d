// Package itemclient is the REST client for the item inventory collaborator.
// The cart service re-validates stock and enriches line items through it on
// every read and mutation.
package itemclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/errgroup"

	"github.com/amaljyothis2003/AkasaEats/pkg/apperr"
)

var ErrItemNotFound = errors.New("item not found")

// lookupConcurrency bounds the fan-out when enriching a whole cart.
const lookupConcurrency = 4

// Item mirrors the inventory service's item payload.
type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
	Unit        string  `json:"unit,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Available   bool    `json:"available"`
}

// StockRequest is one line of a batch stock check.
type StockRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// StockStatus is the collaborator's verdict for one requested line.
type StockStatus struct {
	ItemID            string `json:"itemId"`
	Available         bool   `json:"available"`
	CurrentStock      int    `json:"currentStock,omitempty"`
	RequestedQuantity int    `json:"requestedQuantity,omitempty"`
	Reason            string `json:"reason,omitempty"`
}

// LookupFailure records one failed item lookup during a batch fetch. Batch
// fetches never abort on individual failures; callers surface these as warnings.
type LookupFailure struct {
	ItemID string `json:"itemId"`
	Error  string `json:"error"`
}

// Client is what the cart service needs from the inventory collaborator.
type Client interface {
	GetItem(ctx context.Context, itemID, token string) (*Item, error)
	GetItems(ctx context.Context, itemIDs []string, token string) ([]*Item, []LookupFailure)
	CheckStock(ctx context.Context, items []StockRequest, token string) ([]StockStatus, error)
}

type httpClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// New builds a Client against baseURL (e.g. http://localhost:3002/api/v1).
// Transport failures feed a circuit breaker so a dead collaborator fails fast
// instead of holding every cart request on a timeout.
func New(baseURL string, timeout time.Duration) Client {
	return &httpClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:    "inventory-service",
			Timeout: 15 * time.Second,
		}),
	}
}

type itemEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *Item  `json:"data"`
}

type stockEnvelope struct {
	Success      bool          `json:"success"`
	Message      string        `json:"message"`
	AllAvailable bool          `json:"allAvailable"`
	Data         []StockStatus `json:"data"`
}

func (c *httpClient) GetItem(ctx context.Context, itemID, token string) (*Item, error) {
	resp, err := c.do(ctx, http.MethodGet, "/items/"+itemID, token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrItemNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}

	var env itemEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, apperr.Upstream(0, "Error communicating with item service", err)
	}
	if env.Data == nil {
		return nil, ErrItemNotFound
	}
	return env.Data, nil
}

// GetItems fetches every id in parallel. A failing lookup does not fail the
// others; failures come back separately so callers can downgrade them to
// warnings.
func (c *httpClient) GetItems(ctx context.Context, itemIDs []string, token string) ([]*Item, []LookupFailure) {
	var (
		mu       sync.Mutex
		items    []*Item
		failures []LookupFailure
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)

	for _, id := range itemIDs {
		g.Go(func() error {
			item, err := c.GetItem(ctx, id, token)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, LookupFailure{ItemID: id, Error: err.Error()})
				return nil
			}
			items = append(items, item)
			return nil
		})
	}

	// Workers never return errors; Wait only orders the collection.
	_ = g.Wait()
	return items, failures
}

func (c *httpClient) CheckStock(ctx context.Context, items []StockRequest, token string) ([]StockStatus, error) {
	body, err := json.Marshal(map[string]any{"items": items})
	if err != nil {
		return nil, fmt.Errorf("failed to encode stock check request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/items/check-stock", token, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, upstreamError(resp)
	}

	var env stockEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, apperr.Upstream(0, "Error communicating with item service", err)
	}
	return env.Data, nil
}

func (c *httpClient) do(ctx context.Context, method, path, token string, body []byte) (*http.Response, error) {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.http.Do(req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperr.Upstream(http.StatusServiceUnavailable, "Item service is unavailable", err)
		}
		return nil, apperr.Upstream(0, "Error communicating with item service", err)
	}
	return resp, nil
}

// upstreamError converts a non-2xx collaborator response into an Upstream
// error that propagates the collaborator's status code.
func upstreamError(resp *http.Response) error {
	var env struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&env)
	if env.Message == "" {
		env.Message = "Error communicating with item service"
	}
	return apperr.Upstream(resp.StatusCode, env.Message, nil)
}

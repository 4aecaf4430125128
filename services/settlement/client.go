// Package settlement submits confirmed bookings to the on-chain
// settlement collaborator. The service is modeled purely as a
// request/response contract; when no endpoint is configured a mock
// ledger answers so the rest of the workflow stays exercisable.
package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BookingOrder describes what is being settled.
type BookingOrder struct {
	Description   string          `json:"description"`
	Destination   string          `json:"destination"`
	AmountUSD     decimal.Decimal `json:"amount_usd"`
	SwapAmountUSD decimal.Decimal `json:"swap_amount_usd"`
}

// Receipt is the settled transaction.
type Receipt struct {
	TxHash     string `json:"tx_hash"`
	BookingRef string `json:"booking_ref"`
	Status     string `json:"status"`
	Network    string `json:"network"`
}

// Client submits a booking for settlement.
type Client interface {
	SubmitBooking(ctx context.Context, order BookingOrder) (Receipt, error)
}

// HTTPClient posts orders to the settlement endpoint. An empty BaseURL
// switches to mock receipts, mirroring how the original agent degraded
// without chain credentials.
type HTTPClient struct {
	BaseURL string
	Client  *http.Client
	Logger  *zap.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: timeout},
		Logger:  logger,
	}
}

func (c *HTTPClient) SubmitBooking(ctx context.Context, order BookingOrder) (Receipt, error) {
	if c.BaseURL == "" {
		return mockReceipt(order), nil
	}

	payload, err := json.Marshal(order)
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to marshal booking order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/bookings", bytes.NewBuffer(payload))
	if err != nil {
		return Receipt{}, fmt.Errorf("failed to build settlement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		c.Logger.Error("Failed to call settlement service", zap.Error(err))
		return Receipt{}, fmt.Errorf("failed to reach settlement service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.Logger.Error("Settlement service returned non-OK status", zap.Int("status", resp.StatusCode))
		return Receipt{}, fmt.Errorf("settlement service error: status %d", resp.StatusCode)
	}

	var receipt Receipt
	if err := json.NewDecoder(resp.Body).Decode(&receipt); err != nil {
		return Receipt{}, fmt.Errorf("failed to decode settlement response: %w", err)
	}
	if receipt.BookingRef == "" {
		receipt.BookingRef = bookingRef(receipt.TxHash)
	}
	return receipt, nil
}

func mockReceipt(order BookingOrder) Receipt {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s", order.Description, order.Destination, order.AmountUSD.String())
	tx := fmt.Sprintf("0xMOCK_%016x", h.Sum64())
	return Receipt{
		TxHash:     tx,
		BookingRef: bookingRef(tx),
		Status:     "mock_success",
		Network:    "testnet",
	}
}

func bookingRef(txHash string) string {
	if txHash == "" {
		return "WRD-ERROR"
	}
	tail := txHash
	if len(tail) > 8 {
		tail = tail[len(tail)-8:]
	}
	return "WRD-" + strings.ToUpper(tail)
}

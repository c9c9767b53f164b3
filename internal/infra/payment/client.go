package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"staybook/internal/pkg/config"
	"staybook/internal/pkg/errs"
	"staybook/internal/usecase/commands"

	"github.com/google/uuid"
)

// maxLineItemImages is the provider-side cap on photos per line item.
const maxLineItemImages = 8

var errSessionCreate = errs.New("failed to create checkout session")

// Client talks to the hosted checkout provider over its REST API.
// Server errors and transport failures are retried a bounded number
// of times; client errors are not, since resending the same payload
// cannot fix them.
type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	successURL string
	cancelURL  string
	maxRetries int
}

func NewClient(cfg config.PaymentConfig) *Client {
	return &Client{
		http:       &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		successURL: cfg.SuccessURL,
		cancelURL:  cfg.CancelURL,
		maxRetries: cfg.MaxRetries,
	}
}

type sessionRequest struct {
	Reference  string     `json:"reference"`
	LineItems  []lineItem `json:"line_items"`
	Mode       string     `json:"mode"`
	SuccessURL string     `json:"success_url"`
	CancelURL  string     `json:"cancel_url"`
}

type lineItem struct {
	PriceData priceData `json:"price_data"`
	Quantity  int64     `json:"quantity"`
}

type priceData struct {
	Currency    string      `json:"currency"`
	ProductData productData `json:"product_data"`
	UnitAmount  int64       `json:"unit_amount"`
}

type productData struct {
	Name   string   `json:"name"`
	Images []string `json:"images,omitempty"`
}

type sessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (c *Client) OpenSession(ctx context.Context, bookingID uuid.UUID, item commands.CheckoutLineItem) (*commands.CheckoutSession, error) {
	images := item.Images
	if len(images) > maxLineItemImages {
		images = images[:maxLineItemImages]
	}

	quantity := item.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	payload := sessionRequest{
		Reference: bookingID.String(),
		LineItems: []lineItem{{
			PriceData: priceData{
				Currency: item.Currency,
				ProductData: productData{
					Name:   item.Name,
					Images: images,
				},
				UnitAmount: item.UnitAmount,
			},
			Quantity: quantity,
		}},
		Mode:       "payment",
		SuccessURL: c.successURL,
		CancelURL:  c.cancelURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode checkout session request")
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}

		session, retryable, err := c.postSession(ctx, body)
		if err == nil {
			return session, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return nil, errs.Mark(lastErr, errSessionCreate)
}

func (c *Client) postSession(ctx context.Context, body []byte) (*commands.CheckoutSession, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("checkout session request failed: %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
		return nil, resp.StatusCode >= 500, err
	}

	var decoded sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, false, err
	}
	if decoded.ID == "" || decoded.URL == "" {
		return nil, false, fmt.Errorf("checkout session response missing id or url")
	}

	return &commands.CheckoutSession{ID: decoded.ID, URL: decoded.URL}, false, nil
}

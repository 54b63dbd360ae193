package sync

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"context"
)

// Client talks to the remote billing API. Every request passes through a
// rate limiter (the API throttles aggressively) and retryablehttp's
// exponential backoff for transient failures.
type Client struct {
	http     *retryablehttp.Client
	limiter  *rate.Limiter
	baseURL  string
	token    string
	pageSize int
	log      zerolog.Logger
}

// NewClient builds an API client. requestsPerSecond caps outbound calls;
// pageSize controls list pagination.
func NewClient(baseURL, token string, requestsPerSecond float64, pageSize int, log zerolog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 4
	rc.Logger = nil // zerolog below covers it

	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	if pageSize <= 0 {
		pageSize = 100
	}
	return &Client{
		http:     rc,
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		baseURL:  baseURL,
		token:    token,
		pageSize: pageSize,
		log:      log,
	}
}

// listResponse is the API's paginated list envelope.
type listResponse struct {
	Data    json.RawMessage `json:"data"`
	Page    int             `json:"page"`
	HasMore bool            `json:"has_more"`
}

// apiCustomer, apiInvoice, apiQuote and apiPayment mirror the remote wire
// format. Amounts and balances stay strings until they reach the cache: the
// API is loose about empty-vs-null and the aggregation layer owns that
// normalization.
type apiCustomer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type apiInvoice struct {
	ID          int64   `json:"id"`
	Reference   string  `json:"reference"`
	CustomerID  *int64  `json:"customer_id"`
	InvoiceDate string  `json:"invoice_date"`
	DueDate     *string `json:"due_date"`
	PaymentMode string  `json:"payment_mode"`
	Status      int     `json:"status"`
	PaidOn      *string `json:"paid_on"`
	PaymentDate *string `json:"payment_date"`
	Balance     *string `json:"balance"`
	TotalHT     string  `json:"total_ht"`
	TotalTTC    string  `json:"total_ttc"`
	VATAmount   string  `json:"vat_amount"`
	Notes       string  `json:"notes"`
	UpdatedAt   string  `json:"updated_at"`
}

type apiQuote struct {
	ID         int64  `json:"id"`
	Reference  string `json:"reference"`
	CustomerID *int64 `json:"customer_id"`
	QuoteDate  string `json:"quote_date"`
	Status     int    `json:"status"`
	TotalHT    string `json:"total_ht"`
	TotalTTC   string `json:"total_ttc"`
	VATAmount  string `json:"vat_amount"`
}

type apiPayment struct {
	ID          int64  `json:"id"`
	InvoiceID   int64  `json:"invoice_id"`
	PaymentDate string `json:"payment_date"`
	AmountHT    string `json:"amount_ht"`
	AmountTTC   string `json:"amount_ttc"`
	AmountVAT   string `json:"amount_vat"`
}

func (c *Client) FetchCustomers(ctx context.Context) ([]apiCustomer, error) {
	return fetchAll[apiCustomer](ctx, c, "/customers")
}

func (c *Client) FetchInvoices(ctx context.Context) ([]apiInvoice, error) {
	return fetchAll[apiInvoice](ctx, c, "/invoices")
}

func (c *Client) FetchQuotes(ctx context.Context) ([]apiQuote, error) {
	return fetchAll[apiQuote](ctx, c, "/quotes")
}

// FetchPayments returns the remote payments ledger. Many accounts have none;
// an empty ledger is not an error.
func (c *Client) FetchPayments(ctx context.Context) ([]apiPayment, error) {
	return fetchAll[apiPayment](ctx, c, "/payments")
}

func fetchAll[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var all []T
	for page := 1; ; page++ {
		var batch []T
		more, err := c.getPage(ctx, path, page, &batch)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if !more {
			return all, nil
		}
	}
}

func (c *Client) getPage(ctx context.Context, path string, page int, dst any) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	u := fmt.Sprintf("%s%s?page=%d&per_page=%d", c.baseURL, path, page, c.pageSize)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, body)
	}

	var envelope listResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return false, fmt.Errorf("decode %s page %d: %w", path, page, err)
	}
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		return false, fmt.Errorf("decode %s rows: %w", path, err)
	}
	c.log.Debug().Str("path", path).Int("page", page).Bool("has_more", envelope.HasMore).Msg("page fetched")
	return envelope.HasMore, nil
}

// BaseURL reports the configured endpoint, for operator-facing logs.
func (c *Client) BaseURL() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL
	}
	return u.Redacted()
}

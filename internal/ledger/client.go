// Package ledger implements the HTTP client for the remote ledger service
// that owns categories, transactions, and budget summaries.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/dwojc6/mybudget/internal/errors"
	"github.com/dwojc6/mybudget/internal/logger"
	"github.com/dwojc6/mybudget/internal/models"
)

const dateLayout = "2006-01-02"

// Client talks to the remote ledger API with a bearer token.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu     sync.RWMutex
	apiKey string
}

// NewClient creates a ledger client. The timeout bounds every request; the
// remote service has no server-side limit worth relying on.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// SetToken replaces the API token, typically after the setup flow validates a
// new one.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = token
}

func (c *Client) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	token := c.token()
	if token == "" {
		return nil, apperrors.ErrTokenNotConfigured
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, apperrors.Wrap(apperrors.ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, apperrors.Wrap(apperrors.ErrLedgerUnavailable, err)
	}
	return resp.StatusCode, data, nil
}

func statusError(status int, body []byte) *apperrors.AppError {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return apperrors.Wrap(apperrors.ErrLedgerUnauthorized, fmt.Errorf("status %d", status))
	}
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		if msg := er.message(); msg != "" {
			return apperrors.Wrap(apperrors.ErrLedgerUnavailable, fmt.Errorf("status %d: %s", status, msg))
		}
	}
	return apperrors.Wrap(apperrors.ErrLedgerUnavailable, fmt.Errorf("status %d", status))
}

// FetchCategories returns the ledger's category tree flattened into a list.
func (c *Client) FetchCategories(ctx context.Context) ([]models.Category, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/categories", nil, nil)
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, statusError(status, body)
	}

	var root categoriesResponse
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrLedgerDecoding, err)
	}

	var out []models.Category
	var flatten func(cats []wireCategory, parent *int)
	flatten = func(cats []wireCategory, parent *int) {
		for _, cat := range cats {
			out = append(out, models.Category{
				ID:                cat.ID,
				Name:              cat.Name,
				IsIncome:          cat.IsIncome,
				ExcludeFromBudget: cat.ExcludeFromBudget,
				ParentID:          parent,
			})
			if len(cat.Children) > 0 {
				id := cat.ID
				flatten(cat.Children, &id)
			}
		}
	}
	flatten(root.Categories, nil)
	return out, nil
}

// FetchBudgetSummary returns whether the requested window lines up with the
// ledger's configured budgeting period, and the budgeted amount per category
// id when it does. Amounts are normalized to two decimal places.
func (c *Client) FetchBudgetSummary(ctx context.Context, start, end time.Time) (bool, map[int]decimal.Decimal, error) {
	query := url.Values{}
	query.Set("start_date", start.Format(dateLayout))
	query.Set("end_date", end.Format(dateLayout))

	req, err := c.newRequest(ctx, http.MethodGet, "/summary", query, nil)
	if err != nil {
		return false, nil, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return false, nil, err
	}
	if status != http.StatusOK {
		return false, nil, statusError(status, body)
	}

	var root summaryResponse
	if err := json.Unmarshal(body, &root); err != nil {
		return false, nil, apperrors.Wrap(apperrors.ErrLedgerDecoding, err)
	}

	budgeted := make(map[int]decimal.Decimal, len(root.Categories))
	for _, item := range root.Categories {
		if item.Totals.Budgeted == nil {
			continue
		}
		budgeted[item.CategoryID] = decimal.NewFromFloat(*item.Totals.Budgeted).Round(2)
	}
	return root.Aligned, budgeted, nil
}

// FetchTransactions returns transactions dated within [since, until]. Ledger
// amounts are sign-flipped so that expenses are negative locally. A non-2xx
// response carrying a structured error body is surfaced as the per-item
// errors list, distinct from a transport failure.
func (c *Client) FetchTransactions(ctx context.Context, since, until time.Time) ([]models.Transaction, []string, error) {
	query := url.Values{}
	query.Set("start_date", since.Format(dateLayout))
	query.Set("end_date", until.Format(dateLayout))

	req, err := c.newRequest(ctx, http.MethodGet, "/transactions", query, nil)
	if err != nil {
		return nil, nil, err
	}

	status, body, err := c.do(req)
	if err != nil {
		return nil, nil, err
	}
	if status != http.StatusOK {
		var er errorResponse
		if jsonErr := json.Unmarshal(body, &er); jsonErr == nil {
			if msg := er.message(); msg != "" {
				return nil, []string{msg}, nil
			}
		}
		return nil, nil, statusError(status, body)
	}

	var root transactionsResponse
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrLedgerDecoding, err)
	}

	out := make([]models.Transaction, 0, len(root.Transactions))
	for _, raw := range root.Transactions {
		txn, err := mapTransaction(raw)
		if err != nil {
			return nil, nil, apperrors.Wrap(apperrors.ErrLedgerDecoding, err)
		}
		out = append(out, txn)
	}
	return out, nil, nil
}

func mapTransaction(raw wireTransaction) (models.Transaction, error) {
	date, err := time.Parse(dateLayout, raw.Date)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("transaction %s: bad date %q: %w", raw.ID, raw.Date, err)
	}

	amount, err := decimal.NewFromString(raw.Amount)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("transaction %s: bad amount %q: %w", raw.ID, raw.Amount, err)
	}

	createdAt := date
	if raw.CreatedAt != nil {
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
			if parsed, err := time.Parse(layout, *raw.CreatedAt); err == nil {
				createdAt = parsed
				break
			}
		}
	}

	txn := models.Transaction{
		ID: string(raw.ID),
		// The ledger reports expenses as positive amounts; locally
		// negative means expense.
		Amount:               amount.Neg(),
		Date:                 date,
		CreatedAt:            createdAt,
		CategoryID:           raw.CategoryID,
		ExternalID:           raw.ExternalID,
		SupersedesExternalID: raw.PendingTransactionExternalID,
	}
	if raw.Payee != nil {
		txn.Payee = *raw.Payee
	}
	if raw.Notes != nil {
		txn.Memo = *raw.Notes
	}
	if raw.IsPending != nil {
		txn.IsPending = *raw.IsPending
	}
	return txn, nil
}

// UpdateTransactionPayee pushes a payee rename to the ledger.
func (c *Client) UpdateTransactionPayee(ctx context.Context, transactionID, payee string) error {
	req, err := c.newRequest(ctx, http.MethodPut, "/transactions/"+url.PathEscape(transactionID), nil,
		map[string]string{"payee": payee})
	if err != nil {
		return err
	}

	status, body, err := c.do(req)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return statusError(status, body)
	}
	return nil
}

// TriggerAccountSync asks the ledger to refresh its upstream bank
// connections. Best-effort; callers treat failure as non-fatal.
func (c *Client) TriggerAccountSync(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/plaid_accounts/fetch", nil, nil)
	if err != nil {
		return err
	}

	status, body, err := c.do(req)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusAccepted {
		var er errorResponse
		if jsonErr := json.Unmarshal(body, &er); jsonErr == nil {
			if msg := er.message(); msg != "" {
				logger.Get().Warnw("account sync trigger rejected", "error", msg)
			}
		}
		return statusError(status, body)
	}
	return nil
}

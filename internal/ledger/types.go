package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Wire types for the remote ledger API. Amounts arrive as strings; ids may be
// numeric or string depending on endpoint version.

type wireCategory struct {
	ID                int            `json:"id"`
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	IsIncome          bool           `json:"is_income"`
	ExcludeFromBudget bool           `json:"exclude_from_budget"`
	Children          []wireCategory `json:"children"`
}

type categoriesResponse struct {
	Categories []wireCategory `json:"categories"`
}

type wireSummaryTotals struct {
	Budgeted *float64 `json:"budgeted"`
}

type wireSummaryCategory struct {
	CategoryID int               `json:"category_id"`
	Totals     wireSummaryTotals `json:"totals"`
}

type summaryResponse struct {
	Aligned    bool                  `json:"aligned"`
	Categories []wireSummaryCategory `json:"categories"`
}

// flexibleID decodes a JSON field that may be a number or a string.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty id")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

type wireTransaction struct {
	ID                           flexibleID `json:"id"`
	Date                         string     `json:"date"`
	Amount                       string     `json:"amount"`
	Payee                        *string    `json:"payee"`
	Notes                        *string    `json:"notes"`
	CategoryID                   *int       `json:"category_id"`
	CreatedAt                    *string    `json:"created_at"`
	IsPending                    *bool      `json:"is_pending"`
	ExternalID                   *string    `json:"external_id"`
	PendingTransactionExternalID *string    `json:"pending_transaction_external_id"`
}

type transactionsResponse struct {
	Transactions []wireTransaction `json:"transactions"`
}

type errorResponse struct {
	Error json.RawMessage `json:"error"`
}

// message extracts the error text, accepting either a string or a list of
// strings.
func (e *errorResponse) message() string {
	if len(e.Error) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Error, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(e.Error, &list); err == nil && len(list) > 0 {
		out := list[0]
		for _, item := range list[1:] {
			out += ", " + item
		}
		return out
	}
	return ""
}

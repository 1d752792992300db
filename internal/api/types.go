package api

import (
	"ironbook/internal/book"

	"github.com/shopspring/decimal"
)

// SubmitRequest is the JSON body of POST /orders. Price and Quantity cross
// the wire as decimal strings — never as JSON numbers — so the server
// never has to round-trip a price through binary float (spec.md §6).
type SubmitRequest struct {
	Side     book.Side      `json:"side"`
	Type     book.OrderType `json:"type"`
	Quantity string         `json:"quantity"`
	Price    *string        `json:"price,omitempty"`
	TradeID  *string        `json:"trade_id,omitempty"`
	Wage     any            `json:"wage,omitempty"`
}

// ModifyRequest is the JSON body of PATCH /orders/{id}.
type ModifyRequest struct {
	Side        book.Side `json:"side"`
	NewQuantity *string   `json:"new_quantity,omitempty"`
	NewPrice    *string   `json:"new_price,omitempty"`
}

// SubmitResponse is the JSON body returned by POST /orders.
type SubmitResponse struct {
	Trades []book.TradeRecord `json:"trades"`
	Order  *book.View         `json:"order"`
}

// ErrorResponse is the JSON body returned on any 4xx/5xx.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func parseDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

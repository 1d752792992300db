package book

import "errors"

// Sentinel error kinds. Callers compare with errors.Is; the concrete error
// returned from a book operation wraps one of these with a short
// description of the failed check (and the order id, for a not-found error).
var (
	// ErrQuantity is returned when a quantity is missing, non-positive,
	// or otherwise invalid.
	ErrQuantity = errors.New("invalid quantity")

	// ErrOrderType is returned when a side or order type falls outside
	// its enumerated set, a limit order is missing a price, or a market
	// order carries one.
	ErrOrderType = errors.New("invalid order type")

	// ErrOrderNotFound is returned when a modify/cancel/get names an
	// (side, order_id) pair that is not currently resting.
	ErrOrderNotFound = errors.New("order not found")
)

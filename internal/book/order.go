package book

import (
	"github.com/shopspring/decimal"
)

// Side identifies which side of the book an order rests on or aggresses
// against.
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "bid"
	case Ask:
		return "ask"
	default:
		return "unknown"
	}
}

func (s Side) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Side) UnmarshalJSON(data []byte) error {
	str := unquote(data)
	switch str {
	case "bid":
		*s = Bid
	case "ask":
		*s = Ask
	default:
		return ErrOrderType
	}
	return nil
}

// OrderType distinguishes resting limit orders from sweep-only market
// orders.
type OrderType int

const (
	Limit OrderType = iota
	Market
)

func (t OrderType) String() string {
	switch t {
	case Limit:
		return "limit"
	case Market:
		return "market"
	default:
		return "unknown"
	}
}

func (t OrderType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *OrderType) UnmarshalJSON(data []byte) error {
	str := unquote(data)
	switch str {
	case "limit":
		*t = Limit
	case "market":
		*t = Market
	default:
		return ErrOrderType
	}
	return nil
}

func unquote(data []byte) string {
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		return string(data[1 : len(data)-1])
	}
	return string(data)
}

// Order is a single resting order, the node of the OrderList it belongs to
// at its price level. Its identity, (Side, OrderID), is immutable for the
// lifetime of the order; only Quantity, Price, Timestamp, and the prev/next
// linkage may change, and only through the containing OrderList/OrderTree.
//
// An Order lives in exactly two places at once while resting: the
// doubly-linked OrderList at its price and the id index on its OrderTree.
// Both structures hold the same *Order pointer — there is no separate
// arena of indices, since the garbage collector already resolves the
// aliasing problem that indirection is meant to solve in a systems
// language. See SPEC_FULL.md Open Question 2.
type Order struct {
	OrderID  int64
	Side     Side
	Price    decimal.Decimal
	Quantity decimal.Decimal

	Timestamp int64
	TradeID   *string
	Wage      any

	prev *Order
	next *Order
}

// View is a read-only snapshot of an Order, safe to hand back across an API
// boundary without exposing list linkage.
type View struct {
	OrderID   int64           `json:"order_id"`
	Side      Side            `json:"side"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Timestamp int64           `json:"timestamp"`
	TradeID   *string         `json:"trade_id"`
	Wage      any             `json:"wage"`
}

func (o *Order) view() *View {
	if o == nil {
		return nil
	}
	return &View{
		OrderID:   o.OrderID,
		Side:      o.Side,
		Quantity:  o.Quantity,
		Price:     o.Price,
		Timestamp: o.Timestamp,
		TradeID:   o.TradeID,
		Wage:      o.Wage,
	}
}

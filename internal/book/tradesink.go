package book

import (
	"sync"

	"github.com/shopspring/decimal"
)

// PartyView is one side of an executed trade: the maker (party1) or the
// taker (party2).
type PartyView struct {
	TradeID         *string          `json:"trade_id"`
	Side            Side             `json:"side"`
	OrderID         int64            `json:"order_id"`
	NewBookQuantity *decimal.Decimal `json:"new_book_quantity"`
	Wage            any              `json:"wage"`
}

// TradeRecord is emitted once per partial or full fill. Party1 is the
// resting (maker) order, Party2 the aggressing (taker) order.
type TradeRecord struct {
	Timestamp int64           `json:"timestamp"`
	Time      int64           `json:"time"`
	Price     decimal.Decimal `json:"price"`
	Quantity  decimal.Decimal `json:"quantity"`
	Party1    PartyView       `json:"party1"`
	Party2    PartyView       `json:"party2"`
}

// TradeSink is a narrow, append-only interface the book publishes executed
// trades to. Implementations must never reorder, drop, or coalesce:
// append order is match order within one submit and submit order across
// time.
type TradeSink interface {
	Append(TradeRecord)
	Tail(n int) []TradeRecord
}

// InMemoryLog is the default TradeSink: an append-only ordered log
// queryable by downstream analytics (OHLC bucketing, charting — neither
// implemented here, both out of core scope per spec.md §1). It starts
// empty; it does not seed a synthetic zero-quantity record the way the
// source's analytics layer once did to dodge an empty-dataframe edge
// case (spec.md §9 explicitly forbids reproducing that).
type InMemoryLog struct {
	mu     sync.RWMutex
	trades []TradeRecord
}

// NewInMemoryLog returns an empty TradeSink.
func NewInMemoryLog() *InMemoryLog {
	return &InMemoryLog{}
}

// Append records trade at the end of the log.
func (l *InMemoryLog) Append(trade TradeRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trades = append(l.trades, trade)
}

// Tail returns the most recent n trades in emission order, or every trade
// recorded so far if n <= 0 or exceeds the log length.
func (l *InMemoryLog) Tail(n int) []TradeRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > len(l.trades) {
		n = len(l.trades)
	}
	start := len(l.trades) - n
	out := make([]TradeRecord, n)
	copy(out, l.trades[start:])
	return out
}

// Len reports how many trades have been recorded.
func (l *InMemoryLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.trades)
}

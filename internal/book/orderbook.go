package book

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Summary is a point-in-time read of the book's maintained aggregates. It
// never scans the book — every field is already tracked by the two
// OrderTrees and the clock.
type Summary struct {
	BestBid   *decimal.Decimal `json:"best_bid"`
	BestAsk   *decimal.Decimal `json:"best_ask"`
	BidVolume decimal.Decimal  `json:"bid_volume"`
	AskVolume decimal.Decimal  `json:"ask_volume"`
	NumBids   int              `json:"num_bids"`
	NumAsks   int              `json:"num_asks"`
	Time      int64            `json:"time"`
}

// OrderBook orchestrates one bid OrderTree and one ask OrderTree, a
// monotonic logical clock, an order-id allocator, and a TradeSink. Every
// mutation (Submit, Modify, Cancel) is atomic: it commits fully or leaves
// no trace. Reads (List, Get, Summary) may run concurrently with each
// other but never overlap a mutation — the embedded RWMutex is the
// single-writer/multi-reader guard spec.md §5 calls for.
type OrderBook struct {
	mu sync.RWMutex

	bids *OrderTree
	asks *OrderTree

	sink TradeSink

	time      int64
	nextOrder int64
}

// New returns an empty OrderBook publishing to sink. The caller owns this
// handle explicitly — the core never keeps process-wide state (spec.md §9).
func New(sink TradeSink) *OrderBook {
	return &OrderBook{
		bids: newOrderTree(Bid),
		asks: newOrderTree(Ask),
		sink: sink,
	}
}

func (b *OrderBook) tree(side Side) *OrderTree {
	if side == Bid {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) opposite(side Side) *OrderTree {
	if side == Bid {
		return b.asks
	}
	return b.bids
}

// tick advances the logical clock by exactly one and returns the new
// value. Called exactly once per externally visible operation, after
// validation succeeds — see SPEC_FULL.md Open Question 1.
func (b *OrderBook) tick() int64 {
	b.time++
	return b.time
}

// Submit validates and admits a new order, matching it against the
// opposite side first. It returns the trades produced (possibly none) and
// the resting residual order, if any (always nil for market orders).
func (b *OrderBook) Submit(side Side, typ OrderType, quantity decimal.Decimal, price *decimal.Decimal, tradeID *string, wage any) ([]TradeRecord, *View, error) {
	if side != Bid && side != Ask {
		return nil, nil, fmt.Errorf("%w: unknown side", ErrOrderType)
	}
	if typ != Limit && typ != Market {
		return nil, nil, fmt.Errorf("%w: unknown order type", ErrOrderType)
	}
	if typ == Limit && price == nil {
		return nil, nil, fmt.Errorf("%w: limit order requires a price", ErrOrderType)
	}
	if typ == Market && price != nil {
		return nil, nil, fmt.Errorf("%w: market order must not carry a price", ErrOrderType)
	}
	if quantity.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: quantity must be positive", ErrQuantity)
	}
	if typ == Limit && price.Sign() <= 0 {
		return nil, nil, fmt.Errorf("%w: price must be positive", ErrQuantity)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ts := b.tick()
	orderID := b.allocateID()

	remaining := quantity
	opposite := b.opposite(side)
	var trades []TradeRecord

	for remaining.Sign() > 0 && !opposite.Empty() {
		bestPrice, _ := opposite.BestPrice()
		if !crosses(side, typ, price, bestPrice) {
			break
		}

		list := opposite.ListAt(bestPrice)
		maker := list.Head()
		matchQty := decimal.Min(remaining, maker.Quantity)

		makerRemaining := maker.Quantity.Sub(matchQty)
		var makerResidual *decimal.Decimal
		if makerRemaining.Sign() > 0 {
			makerResidual = &makerRemaining
		}

		trade := TradeRecord{
			Timestamp: ts,
			Time:      ts,
			Price:     bestPrice,
			Quantity:  matchQty,
			Party1: PartyView{
				TradeID:         maker.TradeID,
				Side:            maker.Side,
				OrderID:         maker.OrderID,
				NewBookQuantity: makerResidual,
				Wage:            maker.Wage,
			},
			Party2: PartyView{
				TradeID:         tradeID,
				Side:            side,
				OrderID:         orderID,
				NewBookQuantity: nil,
				Wage:            wage,
			},
		}
		b.sink.Append(trade)
		trades = append(trades, trade)

		log.Debug().
			Int64("order_id", orderID).
			Int64("maker_order_id", maker.OrderID).
			Str("price", bestPrice.String()).
			Str("quantity", matchQty.String()).
			Msg("match")

		if makerRemaining.Sign() == 0 {
			// RemoveByID reads maker.Quantity (still the pre-match value,
			// equal to matchQty here) to keep list/tree volume correct.
			opposite.RemoveByID(maker.OrderID)
		} else {
			maker.Quantity = makerRemaining
			list.Volume = list.Volume.Sub(matchQty)
			opposite.Volume = opposite.Volume.Sub(matchQty)
		}

		remaining = remaining.Sub(matchQty)
	}

	if typ == Market {
		log.Debug().Int64("order_id", orderID).Str("side", side.String()).Msg("market order processed")
		return trades, nil, nil
	}

	if remaining.Sign() == 0 {
		return trades, nil, nil
	}

	resting := &Order{
		OrderID:   orderID,
		Side:      side,
		Price:     *price,
		Quantity:  remaining,
		Timestamp: ts,
		TradeID:   tradeID,
		Wage:      wage,
	}
	b.tree(side).Insert(resting)
	log.Debug().Int64("order_id", orderID).Str("side", side.String()).Str("remaining", remaining.String()).Msg("order resting")

	return trades, resting.view(), nil
}

// crosses reports whether an incoming order crosses the opposite side's
// best resting price.
func crosses(side Side, typ OrderType, price *decimal.Decimal, bestPrice decimal.Decimal) bool {
	if typ == Market {
		return true
	}
	if side == Bid {
		return price.GreaterThanOrEqual(bestPrice)
	}
	return price.LessThanOrEqual(bestPrice)
}

func (b *OrderBook) allocateID() int64 {
	b.nextOrder++
	return b.nextOrder
}

// Modify changes the quantity and/or price of a resting order. It never
// crosses the book — callers that need to change aggression must cancel
// and resubmit.
func (b *OrderBook) Modify(side Side, orderID int64, newQuantity, newPrice *decimal.Decimal) (*View, error) {
	if newQuantity != nil && newQuantity.Sign() <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrQuantity)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tree := b.tree(side)
	o, ok := tree.GetByID(orderID)
	if !ok {
		return nil, fmt.Errorf("%w: order %d", ErrOrderNotFound, orderID)
	}

	ts := b.tick()

	if newPrice != nil && !newPrice.Equal(o.Price) {
		tree.RemoveByID(orderID)
		qty := o.Quantity
		if newQuantity != nil {
			qty = *newQuantity
		}
		reinserted := &Order{
			OrderID:   orderID,
			Side:      side,
			Price:     *newPrice,
			Quantity:  qty,
			Timestamp: ts,
			TradeID:   o.TradeID,
			Wage:      o.Wage,
		}
		tree.Insert(reinserted)
		log.Debug().Int64("order_id", orderID).Str("new_price", newPrice.String()).Msg("order repriced")
		return reinserted.view(), nil
	}

	if newQuantity != nil {
		list := tree.ListAt(o.Price)
		delta := newQuantity.Sub(o.Quantity)
		switch {
		case delta.Sign() > 0:
			o.Quantity = *newQuantity
			o.Timestamp = ts
			list.Volume = list.Volume.Add(delta)
			tree.Volume = tree.Volume.Add(delta)
			list.MoveToTail(o)
			log.Debug().Int64("order_id", orderID).Msg("order quantity increased, priority lost")
		case delta.Sign() < 0:
			o.Quantity = *newQuantity
			list.Volume = list.Volume.Add(delta)
			tree.Volume = tree.Volume.Add(delta)
			log.Debug().Int64("order_id", orderID).Msg("order quantity decreased, priority kept")
		}
	}

	return o.view(), nil
}

// Cancel removes a resting order. It emits no trade.
func (b *OrderBook) Cancel(side Side, orderID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tree := b.tree(side)
	if _, ok := tree.GetByID(orderID); !ok {
		return fmt.Errorf("%w: order %d", ErrOrderNotFound, orderID)
	}
	ts := b.tick()
	tree.RemoveByID(orderID)
	log.Debug().Int64("order_id", orderID).Int64("time", ts).Msg("order cancelled")
	return nil
}

// Get returns a read-only view of a single resting order.
func (b *OrderBook) Get(side Side, orderID int64) (*View, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	o, ok := b.tree(side).GetByID(orderID)
	if !ok {
		return nil, fmt.Errorf("%w: order %d", ErrOrderNotFound, orderID)
	}
	return o.view(), nil
}

// List returns every resting order on side in priority order: best price
// first, FIFO within a price level.
func (b *OrderBook) List(side Side) []*View {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []*View
	b.tree(side).Each(func(o *Order) bool {
		out = append(out, o.view())
		return true
	})
	return out
}

// Summary reads the maintained aggregates without scanning the book.
func (b *OrderBook) Summary() Summary {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Summary{
		BidVolume: b.bids.Volume,
		AskVolume: b.asks.Volume,
		NumBids:   b.bids.NumOrders,
		NumAsks:   b.asks.NumOrders,
		Time:      b.time,
	}
	if p, ok := b.bids.BestPrice(); ok {
		s.BestBid = &p
	}
	if p, ok := b.asks.BestPrice(); ok {
		s.BestAsk = &p
	}
	return s
}

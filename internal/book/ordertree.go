package book

import (
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/shopspring/decimal"
)

func decimalComparator(a, b interface{}) int {
	return a.(decimal.Decimal).Cmp(b.(decimal.Decimal))
}

func reverseDecimalComparator(a, b interface{}) int {
	return b.(decimal.Decimal).Cmp(a.(decimal.Decimal))
}

// OrderTree is one side of the book: a price-sorted map of OrderLists plus
// a constant-time id index. Bids are sorted highest-first, asks
// lowest-first, so Left() on the underlying tree always yields the best
// price for either side.
type OrderTree struct {
	side   Side
	prices *redblacktree.Tree // decimal.Decimal -> *OrderList
	byID   map[int64]*Order
	ids    map[int64]decimal.Decimal // order_id -> price, for O(1) removal

	Volume    decimal.Decimal
	NumOrders int
}

func newOrderTree(side Side) *OrderTree {
	cmp := decimalComparator
	if side == Bid {
		cmp = reverseDecimalComparator
	}
	return &OrderTree{
		side:   side,
		prices: redblacktree.NewWith(cmp),
		byID:   make(map[int64]*Order),
		ids:    make(map[int64]decimal.Decimal),
		Volume: decimal.Zero,
	}
}

// Insert locates or creates the OrderList at order.Price, appends order to
// its tail, and updates the id index and aggregates.
func (t *OrderTree) Insert(o *Order) {
	list := t.listAt(o.Price)
	if list == nil {
		list = newOrderList(o.Price)
		t.prices.Put(o.Price, list)
	}
	list.Append(o)
	t.byID[o.OrderID] = o
	t.ids[o.OrderID] = o.Price
	t.Volume = t.Volume.Add(o.Quantity)
	t.NumOrders++
}

// RemoveByID removes the order with the given id, collapsing the price
// level if it becomes empty. It is a no-op if the id is not present —
// callers that must distinguish a miss use GetByID first.
func (t *OrderTree) RemoveByID(orderID int64) *Order {
	o, ok := t.byID[orderID]
	if !ok {
		return nil
	}
	price := t.ids[orderID]
	list := t.listAt(price)
	list.Remove(o)
	if list.Length == 0 {
		t.prices.Remove(price)
	}
	delete(t.byID, orderID)
	delete(t.ids, orderID)
	t.Volume = t.Volume.Sub(o.Quantity)
	t.NumOrders--
	return o
}

// GetByID is an O(1) lookup; it returns (nil, false) on a miss.
func (t *OrderTree) GetByID(orderID int64) (*Order, bool) {
	o, ok := t.byID[orderID]
	return o, ok
}

// BestPrice returns the best resting price for this side — the max for
// bids, the min for asks — and false if the side is empty.
func (t *OrderTree) BestPrice() (decimal.Decimal, bool) {
	node := t.prices.Left()
	if node == nil {
		return decimal.Zero, false
	}
	return node.Key.(decimal.Decimal), true
}

// ListAt returns the OrderList resting at price, or nil if there is none.
func (t *OrderTree) ListAt(price decimal.Decimal) *OrderList {
	return t.listAt(price)
}

func (t *OrderTree) listAt(price decimal.Decimal) *OrderList {
	v, found := t.prices.Get(price)
	if !found {
		return nil
	}
	return v.(*OrderList)
}

// Empty reports whether this side of the book has no resting orders.
func (t *OrderTree) Empty() bool {
	return t.prices.Empty()
}

// Each iterates every resting order in priority order: best price first,
// FIFO within a price level.
func (t *OrderTree) Each(fn func(*Order) bool) {
	it := t.prices.Iterator()
	it.Begin()
	for it.Next() {
		list := it.Value().(*OrderList)
		cont := true
		list.Each(func(o *Order) bool {
			if !fn(o) {
				cont = false
				return false
			}
			return true
		})
		if !cont {
			return
		}
	}
}

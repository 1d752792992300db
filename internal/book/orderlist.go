package book

import "github.com/shopspring/decimal"

// OrderList is a FIFO queue of Orders resting at one price level. Every
// member shares the same Price; Head is the oldest still-resting order.
// Removing the last member must be followed by the caller dropping the
// OrderTree's price entry — an OrderList never sits empty inside a tree.
type OrderList struct {
	Price  decimal.Decimal
	head   *Order
	tail   *Order
	Volume decimal.Decimal
	Length int
}

func newOrderList(price decimal.Decimal) *OrderList {
	return &OrderList{Price: price, Volume: decimal.Zero}
}

// Head returns the oldest-admitted resting order, or nil if the list is
// empty.
func (l *OrderList) Head() *Order {
	return l.head
}

// Append attaches order at the tail of the list.
func (l *OrderList) Append(o *Order) {
	o.prev = l.tail
	o.next = nil
	if l.tail != nil {
		l.tail.next = o
	} else {
		l.head = o
	}
	l.tail = o
	l.Volume = l.Volume.Add(o.Quantity)
	l.Length++
}

// Remove unlinks o from the list. o must be a current member; removing a
// handle that does not belong to this list is a programming error.
func (l *OrderList) Remove(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}
	o.prev, o.next = nil, nil
	l.Volume = l.Volume.Sub(o.Quantity)
	l.Length--
}

// MoveToTail unlinks o and re-appends it, preserving Volume and Length.
// Used when an order's quantity is increased and it loses queue priority.
func (l *OrderList) MoveToTail(o *Order) {
	if l.tail == o {
		return
	}
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	}
	o.prev = l.tail
	o.next = nil
	if l.tail != nil {
		l.tail.next = o
	}
	l.tail = o
	if l.head == nil {
		l.head = o
	}
}

// Each iterates the list head-first (FIFO order), stopping early if fn
// returns false.
func (l *OrderList) Each(fn func(*Order) bool) {
	for o := l.head; o != nil; o = o.next {
		if !fn(o) {
			return
		}
	}
}

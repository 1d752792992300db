package book

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestBook() *OrderBook {
	return New(NewInMemoryLog())
}

func submitLimit(t *testing.T, b *OrderBook, side Side, qty, price string) *View {
	t.Helper()
	p := d(price)
	_, order, err := b.Submit(side, Limit, d(qty), &p, nil, nil)
	require.NoError(t, err)
	return order
}

// S1: Pure rest.
func TestScenarioS1PureRest(t *testing.T) {
	b := newTestBook()
	bid := submitLimit(t, b, Bid, "5", "100")
	ask := submitLimit(t, b, Ask, "3", "101")

	require.NotNil(t, bid)
	require.NotNil(t, ask)

	s := b.Summary()
	require.NotNil(t, s.BestBid)
	require.NotNil(t, s.BestAsk)
	assert.True(t, s.BestBid.Equal(d("100")))
	assert.True(t, s.BestAsk.Equal(d("101")))
	assert.True(t, s.BidVolume.Equal(d("5")))
	assert.True(t, s.AskVolume.Equal(d("3")))
	assert.Equal(t, 1, s.NumBids)
	assert.Equal(t, 1, s.NumAsks)
}

// S2: Immediate cross, partial maker fill.
func TestScenarioS2PartialMakerFill(t *testing.T) {
	b := newTestBook()
	submitLimit(t, b, Bid, "5", "100")
	submitLimit(t, b, Ask, "3", "101")

	price := d("100")
	trades, order, err := b.Submit(Ask, Limit, d("2"), &price, nil, nil)
	require.NoError(t, err)
	require.Nil(t, order)
	require.Len(t, trades, 1)

	trade := trades[0]
	assert.True(t, trade.Price.Equal(d("100")))
	assert.True(t, trade.Quantity.Equal(d("2")))
	require.NotNil(t, trade.Party1.NewBookQuantity)
	assert.True(t, trade.Party1.NewBookQuantity.Equal(d("3")))
	assert.Nil(t, trade.Party2.NewBookQuantity)

	s := b.Summary()
	assert.True(t, s.BestBid.Equal(d("100")))
	assert.True(t, s.BidVolume.Equal(d("3")))
	assert.True(t, s.BestAsk.Equal(d("101")))
	assert.True(t, s.AskVolume.Equal(d("3")))
	assert.Equal(t, 1, s.NumBids)
	assert.Equal(t, 1, s.NumAsks)
}

// S3: Market sweep across levels.
func TestScenarioS3MarketSweep(t *testing.T) {
	b := newTestBook()
	submitLimit(t, b, Ask, "1", "10")
	submitLimit(t, b, Ask, "2", "11")
	submitLimit(t, b, Ask, "2", "12")

	trades, order, err := b.Submit(Bid, Market, d("4"), nil, nil, nil)
	require.NoError(t, err)
	require.Nil(t, order)
	require.Len(t, trades, 3)

	assert.True(t, trades[0].Price.Equal(d("10")))
	assert.True(t, trades[0].Quantity.Equal(d("1")))
	assert.True(t, trades[1].Price.Equal(d("11")))
	assert.True(t, trades[1].Quantity.Equal(d("2")))
	assert.True(t, trades[2].Price.Equal(d("12")))
	assert.True(t, trades[2].Quantity.Equal(d("1")))

	s := b.Summary()
	assert.True(t, s.AskVolume.Equal(d("1")))
	assert.Equal(t, 1, s.NumAsks)
	assert.True(t, s.BestAsk.Equal(d("12")))
}

// S4: FIFO within price level.
func TestScenarioS4FIFOWithinLevel(t *testing.T) {
	b := newTestBook()
	a := submitLimit(t, b, Bid, "1", "50")
	bOrder := submitLimit(t, b, Bid, "1", "50")

	price := d("50")
	trades, _, err := b.Submit(Ask, Limit, d("1"), &price, nil, nil)
	require.NoError(t, err)
	require.Len(t, trades, 1)

	assert.Equal(t, a.OrderID, trades[0].Party1.OrderID)
	assert.Nil(t, trades[0].Party1.NewBookQuantity)

	remaining, err := b.Get(Bid, bOrder.OrderID)
	require.NoError(t, err)
	assert.True(t, remaining.Quantity.Equal(d("1")))

	s := b.Summary()
	assert.True(t, s.BidVolume.Equal(d("1")))
}

// S5: Modify quantity up loses priority.
func TestScenarioS5ModifyQuantityUpLosesPriority(t *testing.T) {
	b := newTestBook()
	a := submitLimit(t, b, Bid, "1", "50")
	bOrder := submitLimit(t, b, Bid, "1", "50")

	newQty := d("2")
	_, err := b.Modify(Bid, a.OrderID, &newQty, nil)
	require.NoError(t, err)

	price := d("50")
	trades, _, err := b.Submit(Ask, Limit, d("1"), &price, nil, nil)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, bOrder.OrderID, trades[0].Party1.OrderID)

	view, err := b.Get(Bid, a.OrderID)
	require.NoError(t, err)
	assert.True(t, view.Quantity.Equal(d("2")))
}

// S6: Modify price.
func TestScenarioS6ModifyPrice(t *testing.T) {
	b := newTestBook()
	order := submitLimit(t, b, Bid, "5", "100")

	newPrice := d("99")
	view, err := b.Modify(Bid, order.OrderID, nil, &newPrice)
	require.NoError(t, err)
	assert.True(t, view.Price.Equal(d("99")))
	assert.True(t, view.Quantity.Equal(d("5")))

	s := b.Summary()
	assert.True(t, s.BestBid.Equal(d("99")))
}

// S7: Cancel unknown.
func TestScenarioS7CancelUnknown(t *testing.T) {
	b := newTestBook()
	err := b.Cancel(Bid, 9999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOrderNotFound))
}

func TestSubmitRejectsNonPositiveQuantity(t *testing.T) {
	b := newTestBook()
	price := d("100")
	_, _, err := b.Submit(Bid, Limit, d("0"), &price, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQuantity))
}

func TestSubmitRejectsLimitWithoutPrice(t *testing.T) {
	b := newTestBook()
	_, _, err := b.Submit(Bid, Limit, d("1"), nil, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOrderType))
}

func TestSubmitRejectsMarketWithPrice(t *testing.T) {
	b := newTestBook()
	price := d("100")
	_, _, err := b.Submit(Bid, Market, d("1"), &price, nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOrderType))
}

func TestSubmitMarketAgainstEmptyBookIsNotAnError(t *testing.T) {
	b := newTestBook()
	trades, order, err := b.Submit(Bid, Market, d("1"), nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, order)
	assert.Empty(t, trades)
}

func TestOrderIDsStrictlyIncrease(t *testing.T) {
	b := newTestBook()
	first := submitLimit(t, b, Bid, "1", "100")
	second := submitLimit(t, b, Bid, "1", "101")
	assert.Greater(t, second.OrderID, first.OrderID)
}

func TestModifyQuantityDecreasePreservesPriority(t *testing.T) {
	b := newTestBook()
	a := submitLimit(t, b, Bid, "5", "50")
	bOrder := submitLimit(t, b, Bid, "5", "50")

	newQty := d("2")
	_, err := b.Modify(Bid, a.OrderID, &newQty, nil)
	require.NoError(t, err)

	price := d("50")
	trades, _, err := b.Submit(Ask, Limit, d("2"), &price, nil, nil)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, a.OrderID, trades[0].Party1.OrderID)

	remaining, err := b.Get(Bid, bOrder.OrderID)
	require.NoError(t, err)
	assert.True(t, remaining.Quantity.Equal(d("5")))
}

func TestModifyUnknownOrderReturnsNotFound(t *testing.T) {
	b := newTestBook()
	newQty := d("1")
	_, err := b.Modify(Bid, 123, &newQty, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOrderNotFound))
}

func TestCancelRemovesOrderAndCollapsesLevel(t *testing.T) {
	b := newTestBook()
	order := submitLimit(t, b, Bid, "1", "100")

	err := b.Cancel(Bid, order.OrderID)
	require.NoError(t, err)

	_, err = b.Get(Bid, order.OrderID)
	assert.True(t, errors.Is(err, ErrOrderNotFound))

	s := b.Summary()
	assert.Nil(t, s.BestBid)
	assert.Equal(t, 0, s.NumBids)
}

func TestListReturnsPriorityOrder(t *testing.T) {
	b := newTestBook()
	submitLimit(t, b, Bid, "1", "100")
	submitLimit(t, b, Bid, "1", "102")
	submitLimit(t, b, Bid, "1", "101")

	views := b.List(Bid)
	require.Len(t, views, 3)
	assert.True(t, views[0].Price.Equal(d("102")))
	assert.True(t, views[1].Price.Equal(d("101")))
	assert.True(t, views[2].Price.Equal(d("100")))
}

func TestLimitCrossesAtExactEquality(t *testing.T) {
	b := newTestBook()
	submitLimit(t, b, Ask, "1", "100")

	price := d("100")
	trades, _, err := b.Submit(Bid, Limit, d("1"), &price, nil, nil)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.True(t, trades[0].Price.Equal(d("100")))
}

func TestResidualEqualToOriginalStillRestsNormally(t *testing.T) {
	b := newTestBook()
	order := submitLimit(t, b, Bid, "5", "100")
	require.NotNil(t, order)
	assert.True(t, order.Quantity.Equal(d("5")))

	view, err := b.Get(Bid, order.OrderID)
	require.NoError(t, err)
	assert.True(t, view.Quantity.Equal(d("5")))
}

// TestOrderBookConcurrency exercises the single-writer/multi-reader guard
// under contention at a single price level, the case most likely to expose
// a missing lock around the matching loop or the aggregates it maintains.
func TestOrderBookConcurrency(t *testing.T) {
	b := newTestBook()
	const goroutines = 100
	const ordersPerGoroutine = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < ordersPerGoroutine; j++ {
				side := Bid
				if (id+j)%2 == 0 {
					side = Ask
				}
				price := d("100")
				_, _, err := b.Submit(side, Limit, d("1"), &price, nil, nil)
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	s := b.Summary()
	assert.Equal(t, s.NumBids, countOrders(b.List(Bid)))
	assert.Equal(t, s.NumAsks, countOrders(b.List(Ask)))
}

func countOrders(views []*View) int {
	return len(views)
}

// BenchmarkSubmit measures throughput placing non-crossing limit orders
// into a pre-filled book.
func BenchmarkSubmit(b *testing.B) {
	ob := newTestBook()
	for i := 0; i < 1000; i++ {
		price := decimal.NewFromInt(int64(1000 + i))
		_, _, _ = ob.Submit(Ask, Limit, decimal.NewFromInt(1), &price, nil, nil)
	}

	b.ResetTimer()
	price := decimal.NewFromInt(999)
	for i := 0; i < b.N; i++ {
		_, _, _ = ob.Submit(Bid, Limit, decimal.NewFromInt(1), &price, nil, fmt.Sprintf("bench-%d", i))
	}
}

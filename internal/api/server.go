// Package api is thin HTTP glue over the matching core (internal/book).
// It owns request validation, decimal parsing, and JSON shaping — none of
// that is matching-engine semantics, and none of it lives in internal/book.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"ironbook/internal/book"
	"ironbook/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Server is the HTTP surface over a single, caller-provided OrderBook. It
// holds no book state of its own — the handle is explicit, per spec.md §9.
type Server struct {
	addr      string
	book      *book.OrderBook
	sink      *book.InMemoryLog
	metrics   *metrics.Metrics
	startTime time.Time
}

// New builds a Server over book, publishing to sink and recording to m.
func New(addr string, b *book.OrderBook, sink *book.InMemoryLog, m *metrics.Metrics) *Server {
	return &Server{addr: addr, book: b, sink: sink, metrics: m, startTime: time.Now()}
}

// Handler returns the fully wired HTTP handler (routes plus middleware).
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /orders", s.handleSubmit)
	mux.HandleFunc("PATCH /orders/{id}", s.handleModify)
	mux.HandleFunc("DELETE /orders/{id}", s.handleCancel)
	mux.HandleFunc("GET /orders/{id}", s.handleGetOrder)
	mux.HandleFunc("GET /book", s.handleGetBook)
	mux.HandleFunc("GET /trades", s.handleGetTrades)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	return withRequestID(withLogging(mux))
}

// ListenAndServe blocks serving the HTTP surface on s.addr.
func (s *Server) ListenAndServe() error {
	return http.ListenAndServe(s.addr, s.Handler())
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	qty, err := decimalOrError(w, r, &req.Quantity)
	if err != nil {
		return
	}
	price, err := parseDecimal(req.Price)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	s.metrics.OrdersReceived.Inc()

	trades, order, err := s.book.Submit(req.Side, req.Type, *qty, price, req.TradeID, req.Wage)
	s.metrics.ObserveSubmit(start)
	if err != nil {
		s.metrics.OrdersRejected.WithLabelValues(rejectionReason(err)).Inc()
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	s.metrics.TradesExecuted.Add(float64(len(trades)))
	for _, tr := range trades {
		if tr.Party1.NewBookQuantity == nil {
			s.metrics.OrdersResting.Dec()
		}
	}
	if order != nil {
		s.metrics.OrdersResting.Inc()
	}

	writeJSON(w, http.StatusOK, SubmitResponse{Trades: trades, Order: order})
}

func (s *Server) handleModify(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	var req ModifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	newQty, err := parseDecimal(req.NewQuantity)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	newPrice, err := parseDecimal(req.NewPrice)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	view, err := s.book.Modify(req.Side, id, newQty, newPrice)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	s.metrics.OrdersModified.Inc()
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	side, err := sideFromQuery(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	if err := s.book.Cancel(side, id); err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	s.metrics.OrdersCancelled.Inc()
	s.metrics.OrdersResting.Dec()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	side, err := sideFromQuery(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	view, err := s.book.Get(side, id)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type bookResponse struct {
	book.Summary
	Bids []*book.View `json:"bids"`
	Asks []*book.View `json:"asks"`
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	resp := bookResponse{
		Summary: s.book.Summary(),
		Bids:    s.book.List(book.Bid),
		Asks:    s.book.List(book.Ask),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTrades(w http.ResponseWriter, r *http.Request) {
	n := 0
	if q := r.URL.Query().Get("n"); q != "" {
		if v, err := strconv.Atoi(q); err == nil {
			n = v
		}
	}
	writeJSON(w, http.StatusOK, s.sink.Tail(n))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
	})
}

// --- helpers -----------------------------------------------------------

func sideFromQuery(r *http.Request) (book.Side, error) {
	switch r.URL.Query().Get("side") {
	case "bid":
		return book.Bid, nil
	case "ask":
		return book.Ask, nil
	default:
		return 0, errors.New("side query parameter must be 'bid' or 'ask'")
	}
}

func decimalOrError(w http.ResponseWriter, r *http.Request, s *string) (*decimal.Decimal, error) {
	d, err := parseDecimal(s)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return nil, err
	}
	if d == nil {
		err = errors.New("quantity is required")
		writeError(w, r, http.StatusBadRequest, err)
		return nil, err
	}
	return d, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, book.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, book.ErrQuantity), errors.Is(err, book.ErrOrderType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, book.ErrQuantity):
		return "quantity"
	case errors.Is(err, book.ErrOrderType):
		return "order_type"
	default:
		return "unknown"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error(), RequestID: requestID(r)})
}

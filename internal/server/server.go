// Package server exposes the scanner and order manager over HTTP. Routing
// uses net/http method+path patterns; every route except the health check
// sits behind an X-API-Key header when a key is configured.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"equity-scanner-bot/internal/config"
	"equity-scanner-bot/internal/executor"
	"equity-scanner-bot/internal/logger"
	"equity-scanner-bot/internal/notifier"
	"equity-scanner-bot/internal/portfolio"
	"equity-scanner-bot/internal/scanner"
	"equity-scanner-bot/internal/store"
	"equity-scanner-bot/internal/types"
)

// Server wires the HTTP surface to the domain components.
type Server struct {
	scanner *scanner.Scanner
	exec    *executor.Manager
	store   store.Store
	exits   *portfolio.ExitMonitor
	notify  notifier.Notifier
	cfg     *config.Config
	apiKey  string

	httpServer *http.Server
}

// New creates a server. apiKey empty disables authentication.
func New(sc *scanner.Scanner, ex *executor.Manager, st store.Store, em *portfolio.ExitMonitor, n notifier.Notifier, cfg *config.Config, apiKey string) *Server {
	if n == nil {
		n = notifier.Noop{}
	}
	return &Server{
		scanner: sc,
		exec:    ex,
		store:   st,
		exits:   em,
		notify:  n,
		cfg:     cfg,
		apiKey:  apiKey,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /", s.handleHealth)
	mux.HandleFunc("GET /scan", s.auth(s.handleScan))
	mux.HandleFunc("GET /analyze/{symbol}", s.auth(s.handleAnalyze))
	mux.HandleFunc("GET /sectors", s.auth(s.handleSectors))
	mux.HandleFunc("POST /trade/{symbol}", s.auth(s.handleTrade))
	mux.HandleFunc("POST /propose", s.auth(s.handlePropose))
	mux.HandleFunc("GET /trade/pending", s.auth(s.handlePending))
	mux.HandleFunc("POST /trade/approve/{id}", s.auth(s.handleApprove))
	mux.HandleFunc("POST /trade/reject/{id}", s.auth(s.handleReject))
	mux.HandleFunc("GET /ledger", s.auth(s.handleLedger))
	mux.HandleFunc("GET /balance", s.auth(s.handleBalance))
	mux.HandleFunc("GET /check-exits", s.auth(s.handleCheckExits))

	return mux
}

// Start begins serving on addr and blocks until the listener fails or
// Shutdown is called.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info(context.Background(), "HTTP server listening", "addr", addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("X-API-Key") != s.apiKey {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// nseSymbol appends the NSE suffix when the caller sent a bare symbol.
func nseSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + ".NS"
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "equity-scanner-bot",
	})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	sector := r.URL.Query().Get("sector")
	if sector == "" {
		sector = "All"
	}

	symbols := s.cfg.StocksBySector(sector)
	result, err := s.scanner.Scan(r.Context(), symbols)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	symbol := nseSymbol(r.PathValue("symbol"))
	report := s.scanner.Analyze(r.Context(), symbol)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSectors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sectors": s.cfg.SectorNames()})
}

type tradeRequest struct {
	Side     string  `json:"side"`
	Quantity int     `json:"qty"`
	Price    float64 `json:"price"`
	StopLoss float64 `json:"stop_loss"`
	Target   float64 `json:"target"`
}

func (s *Server) handleTrade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	side := types.Buy
	if req.Side != "" {
		side = types.Side(strings.ToUpper(req.Side))
		if side != types.Buy && side != types.Sell {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "side must be BUY or SELL"})
			return
		}
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	proposal := types.TradeProposal{
		Symbol:   nseSymbol(r.PathValue("symbol")),
		Side:     side,
		Quantity: req.Quantity,
		Price:    req.Price,
		StopLoss: req.StopLoss,
		Target:   req.Target,
	}

	// Guard failures are part of the result payload, not transport errors.
	result, _ := s.exec.Execute(r.Context(), proposal, false)
	writeJSON(w, http.StatusOK, result)
}

// handlePropose forwards a free-form trade idea to the operator channel.
func (s *Server) handlePropose(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	if err := s.notify.Notify(r.Context(), "*Trade Proposal*\n"+req.Message); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "Sent"})
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	orders, err := s.store.PendingOrders(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"pending": orders})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	result, _ := s.exec.Approve(r.Context(), r.PathValue("id"))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	result, _ := s.exec.Reject(r.Context(), r.PathValue("id"))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.Ledger(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"trades": entries})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	bal, err := s.store.Balance(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, bal)
}

func (s *Server) handleCheckExits(w http.ResponseWriter, r *http.Request) {
	reports, err := s.exits.ScanAndClose(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	actions := []string{}
	for _, rep := range reports {
		if rep.Action == portfolio.ActionSold {
			actions = append(actions, formatExit(rep))
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"actions": actions,
		"reports": reports,
	})
}

func formatExit(rep portfolio.ExitReport) string {
	return "SOLD " + rep.Symbol + " @ " + strconv.FormatFloat(rep.Price, 'f', 2, 64) + " (" + rep.Reason + ")"
}

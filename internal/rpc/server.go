// Package rpc provides a JSON-RPC 2.0 server for the DLC daemon.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klingon-exchange/klingon-dlc/internal/api"
	"github.com/klingon-exchange/klingon-dlc/internal/chain"
	"github.com/klingon-exchange/klingon-dlc/internal/config"
	"github.com/klingon-exchange/klingon-dlc/internal/dlc"
	"github.com/klingon-exchange/klingon-dlc/pkg/logging"
)

// Server is a JSON-RPC 2.0 server. It keeps no contract state: every
// dlc_createTransactions call is an independent construction.
type Server struct {
	policy         dlc.Policy
	network        *chain.Params
	allowedOrigins []string
	log            *logging.Logger
	wsHub          *WSHub
	enableWS       bool
	started        time.Time

	builds   atomic.Uint64
	rejected atomic.Uint64

	server   *http.Server
	listener net.Listener
	hubOnce  sync.Once

	handlers map[string]Handler
	mu       sync.RWMutex
}

// Handler is a JSON-RPC method handler.
type Handler func(ctx context.Context, params json.RawMessage) (interface{}, error)

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id,omitempty"`
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error represents a JSON-RPC 2.0 error.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Standard error codes.
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

// errInvalidParams marks params that could not be decoded.
var errInvalidParams = errors.New("invalid params")

// NewServer creates a new JSON-RPC server from the daemon configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	network, err := cfg.ChainParams()
	if err != nil {
		return nil, err
	}
	policy := cfg.DLCPolicy()
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}

	s := &Server{
		policy:         policy,
		network:        network,
		allowedOrigins: cfg.RPC.AllowedOrigins,
		enableWS:       cfg.RPC.EnableWebSocket,
		log:            logging.GetDefault().Component("rpc"),
		wsHub:          NewWSHub(),
		started:        time.Now(),
		handlers:       make(map[string]Handler),
	}

	s.registerHandlers()

	return s, nil
}

// registerHandlers registers all JSON-RPC method handlers.
func (s *Server) registerHandlers() {
	// Node methods
	s.handlers["node_info"] = s.nodeInfo

	// Contract methods
	s.handlers["dlc_createTransactions"] = s.dlcCreateTransactions
	s.handlers["dlc_validate"] = s.dlcValidate
	s.handlers["dlc_fundingScript"] = s.dlcFundingScript
	s.handlers["dlc_decodeTransaction"] = s.dlcDecodeTransaction
}

// Handler returns the HTTP handler serving JSON-RPC on / and WebSocket on /ws.
// The WebSocket hub is started on first use.
func (s *Server) Handler() http.Handler {
	s.hubOnce.Do(func() { go s.wsHub.Run() })

	mux := http.NewServeMux()
	mux.HandleFunc("POST /", s.handleRPC)
	mux.HandleFunc("POST /{$}", s.handleRPC)
	mux.HandleFunc("OPTIONS /", s.handleCORS)
	mux.HandleFunc("OPTIONS /{$}", s.handleCORS)
	if s.enableWS {
		mux.HandleFunc("GET /ws", s.handleWS)
		mux.HandleFunc("GET /ws/", s.handleWS)
	}

	return s.corsMiddleware(mux)
}

// Start starts the RPC server.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("RPC server error", "error", err)
		}
	}()

	s.log.Info("RPC server started", "addr", listener.Addr().String(), "network", s.network.Network, "ws", s.enableWS)
	return nil
}

// Addr returns the listening address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop stops the RPC server.
func (s *Server) Stop() error {
	s.wsHub.Stop()
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleRPC handles incoming JSON-RPC requests over HTTP.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeResponse(w, errorResponse(nil, ParseError, "Parse error", nil))
		return
	}

	s.writeResponse(w, s.dispatch(r.Context(), &req))
}

// dispatch runs one request and builds its response. It is shared by the
// HTTP and WebSocket transports.
func (s *Server) dispatch(ctx context.Context, req *Request) *Response {
	if req.JSONRPC != "2.0" {
		return errorResponse(req.ID, InvalidRequest, "Invalid Request", nil)
	}

	s.mu.RLock()
	handler, ok := s.handlers[req.Method]
	s.mu.RUnlock()

	if !ok {
		return errorResponse(req.ID, MethodNotFound, "Method not found", req.Method)
	}

	result, err := handler(ctx, req.Params)
	if err != nil {
		rpcErr := toRPCError(err)
		s.log.Warn("RPC call failed", "method", req.Method, "code", rpcErr.Code, "error", err)
		return &Response{JSONRPC: "2.0", Error: rpcErr, ID: req.ID}
	}

	return &Response{JSONRPC: "2.0", Result: result, ID: req.ID}
}

// ErrorData is attached to InvalidParams errors caused by contract parameters.
type ErrorData struct {
	Kind  string    `json:"kind"`
	Party dlc.Party `json:"party,omitempty"`
	Field string    `json:"field,omitempty"`
	Row   *int      `json:"row,omitempty"`
}

// toRPCError maps handler errors onto JSON-RPC error objects.
func toRPCError(err error) *Error {
	var cerr *dlc.ContractError
	if errors.As(err, &cerr) {
		data := ErrorData{Kind: dlc.ErrorKind(err), Party: cerr.Party, Field: cerr.Field}
		if cerr.Row != dlc.NoRow {
			row := cerr.Row
			data.Row = &row
		}
		return &Error{Code: InvalidParams, Message: err.Error(), Data: data}
	}
	if errors.Is(err, errInvalidParams) || errors.Is(err, api.ErrInvalidTransaction) {
		return &Error{Code: InvalidParams, Message: err.Error()}
	}
	return &Error{Code: InternalError, Message: err.Error()}
}

func errorResponse(id interface{}, code int, message string, data interface{}) *Response {
	return &Response{
		JSONRPC: "2.0",
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
		ID: id,
	}
}

// writeResponse writes a response as JSON.
func (s *Server) writeResponse(w http.ResponseWriter, resp *Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Debug("Failed to write response", "error", err)
	}
}

// WSHub returns the WebSocket hub.
func (s *Server) WSHub() *WSHub {
	return s.wsHub
}

// handleCORS handles CORS preflight requests.
func (s *Server) handleCORS(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// originAllowed reports whether origin may call the server. An empty allow
// list admits every origin.
func (s *Server) originAllowed(origin string) bool {
	return len(s.allowedOrigins) == 0 || origin == "" || slices.Contains(s.allowedOrigins, origin)
}

// corsMiddleware adds CORS headers to all responses.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if !s.originAllowed(origin) {
			http.Error(w, "Origin not allowed", http.StatusForbidden)
			return
		}
		if origin == "" {
			origin = "*"
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400") // Cache preflight for 24 hours

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

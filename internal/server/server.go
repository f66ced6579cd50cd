// Package server exposes the nested-list arithmetic engine over HTTP: a
// synchronous POST /execute endpoint and a /stream WebSocket endpoint for
// clients submitting a sequence of operations over one long-lived
// connection.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"vectra/internal/arith"
	"vectra/internal/dataframe"
	"vectra/internal/sqlsource"
)

// Server holds the registry of active streaming connections alongside the
// plain HTTP mux, mirroring the connection-registry-plus-mutex shape this
// repository already used for its other long-lived connection types.
type Server struct {
	mux   *http.ServeMux
	mu    sync.RWMutex
	conns map[string]*websocket.Conn

	upgrader websocket.Upgrader
}

// New builds a Server with its routes already registered.
func New() *Server {
	s := &Server{
		mux:   http.NewServeMux(),
		conns: make(map[string]*websocket.Conn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.mux.HandleFunc("/execute", s.handleExecute)
	s.mux.HandleFunc("/stream", s.handleStream)
	return s
}

// ListenAndServe starts the HTTP server on addr, blocking until it exits.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

// executeRequest is the JSON body both /execute and /stream accept.
type executeRequest struct {
	Op  string `json:"op"`
	LHS string `json:"lhs"`
	RHS string `json:"rhs"`
}

type executeResponse struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, executeResponse{Error: "only POST is supported"})
		return
	}

	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, executeResponse{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	resp := runExecuteRequest(req)
	status := http.StatusOK
	if resp.Error != "" {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

// handleStream upgrades the connection to a WebSocket and services a
// sequence of executeRequest messages, each answered with its own
// executeResponse, until the client disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade failed: %v", err)
		return
	}

	id := r.RemoteAddr
	s.mu.Lock()
	s.conns[id] = conn
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, id)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		var req executeRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		resp := runExecuteRequest(req)
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func runExecuteRequest(req executeRequest) executeResponse {
	op, err := parseOp(req.Op)
	if err != nil {
		return executeResponse{Error: err.Error()}
	}
	lhs, err := sqlsource.ColumnFromJSON("lhs", req.LHS)
	if err != nil {
		return executeResponse{Error: err.Error()}
	}
	rhs, err := sqlsource.ColumnFromJSON("rhs", req.RHS)
	if err != nil {
		return executeResponse{Error: err.Error()}
	}

	result, err := dataframe.NewNestedArray(lhs).Apply(op, dataframe.NewNestedArray(rhs))
	if err != nil {
		return executeResponse{Error: err.Error()}
	}
	return executeResponse{Result: sqlsource.ColumnToJSON(result.Column())}
}

func parseOp(s string) (arith.Op, error) {
	switch s {
	case "add":
		return arith.OpAdd, nil
	case "sub":
		return arith.OpSub, nil
	case "mul":
		return arith.OpMul, nil
	case "div":
		return arith.OpDiv, nil
	case "mod":
		return arith.OpRem, nil
	case "floordiv":
		return arith.OpFloorDiv, nil
	default:
		return 0, fmt.Errorf("unknown operator %q", s)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ActiveConnections reports the number of currently streaming clients.
func (s *Server) ActiveConnections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

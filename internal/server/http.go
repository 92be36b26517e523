// Package server implements the HTTP command transport (ambient; spec.md
// §1 treats the wire protocol as an external collaborator concern). One
// route accepts a token list and returns the dispatcher's reply, trimmed
// down from the teacher's multi-route server/http.go to the single
// endpoint this engine needs.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/coffersTech/nanots/internal/dispatch"
	"github.com/coffersTech/nanots/internal/tserr"
)

// CommandServer serves the engine's single command-dispatch endpoint.
type CommandServer struct {
	dispatcher *dispatch.Dispatcher
	srv        *http.Server
}

// NewCommandServer builds a server around an already-wired dispatcher.
func NewCommandServer(d *dispatch.Dispatcher) *CommandServer {
	return &CommandServer{dispatcher: d}
}

type commandRequest struct {
	Tokens []string `json:"tokens"`
}

type commandReply struct {
	Reply interface{} `json:"reply,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Start runs the HTTP server on addr until Shutdown is called.
func (s *CommandServer) Start(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/command", s.handleCommand)

	s.srv = &http.Server{Addr: addr, Handler: mux}
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *CommandServer) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// handleCommand decodes a token list, dispatches it, and replies with the
// result or an error message carrying the appropriate status code.
func (s *CommandServer) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commandReply{Error: "invalid JSON body"})
		return
	}

	reply, err := s.dispatcher.Dispatch(req.Tokens)
	if err != nil {
		writeJSON(w, statusForError(err), commandReply{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, commandReply{Reply: reply})
}

func statusForError(err error) int {
	switch {
	case tserr.Is(err, tserr.KindArgument):
		return http.StatusBadRequest
	case tserr.Is(err, tserr.KindLookup):
		return http.StatusNotFound
	case tserr.Is(err, tserr.KindInvariant):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, body commandReply) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("JSON encode error: %v", err)
	}
}

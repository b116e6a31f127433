// Package server exposes a Cupboard over HTTP in the PostgREST dialect,
// so `serbaguna serve` can stand in for a hosted table service.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/serbaguna/internal/postgrest"
	"github.com/mesh-intelligence/serbaguna/pkg/types"
)

// maxBody bounds request bodies.
const maxBody = 1 << 20

// Server routes table requests to a Cupboard.
type Server struct {
	cupboard  types.Cupboard
	logger    *zap.Logger
	resources map[string]resource
}

// New builds a Server over an attached cupboard. A nil logger discards output.
func New(cupboard types.Cupboard, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{cupboard: cupboard, logger: logger}
	s.resources = map[string]resource{
		types.TodosTable:      todosResource{s},
		types.NotesTable:      notesResource{s},
		types.CategoriesTable: categoriesResource{s},
	}
	return s
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	rest := r.PathPrefix(strings.TrimSuffix(postgrest.RESTPrefix, "/")).Subrouter()
	rest.Methods(http.MethodGet).Path("/{table}").HandlerFunc(s.list)
	rest.Methods(http.MethodPost).Path("/{table}").HandlerFunc(s.create)
	rest.Methods(http.MethodPatch).Path("/{table}").HandlerFunc(s.update)
	rest.Methods(http.MethodDelete).Path("/{table}").HandlerFunc(s.remove)
	r.Methods(http.MethodGet).Path("/healthz").HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.logger.Info("handled",
			zap.String("method", r.Method),
			zap.Stringer("url", r.URL),
			zap.Duration("duration", m.Duration),
			zap.Int("status", m.Code),
			zap.Int64("bytes", m.Written),
		)
	})
}

func (s *Server) resource(w http.ResponseWriter, r *http.Request) (resource, bool) {
	table := mux.Vars(r)["table"]
	res, ok := s.resources[table]
	if !ok {
		writeJSON(w, http.StatusNotFound, postgrest.ErrorBody{
			Code:    postgrest.UndefinedTable,
			Message: fmt.Sprintf("relation %q does not exist", table),
		})
		return nil, false
	}
	return res, true
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resource(w, r)
	if !ok {
		return
	}
	var id string
	if raw := r.URL.Query().Get("id"); raw != "" {
		if id, ok = postgrest.ParseEq(raw); !ok {
			s.fail(w, r, fmt.Errorf("%w: unsupported filter %q", types.ErrInvalidID, raw))
			return
		}
	}
	rows, err := res.list(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resource(w, r)
	if !ok {
		return
	}
	bodies, err := readRows(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rows, err := res.create(r.Context(), bodies)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeRepresentation(w, r, http.StatusCreated, rows)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resource(w, r)
	if !ok {
		return
	}
	id, ok := idFilter(r)
	if !ok {
		s.fail(w, r, fmt.Errorf("%w: update requires id=eq.<id>", types.ErrInvalidID))
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: read body: %w", types.ErrMalformed, err))
		return
	}
	rows, err := res.update(r.Context(), id, body)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeRepresentation(w, r, http.StatusOK, rows)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resource(w, r)
	if !ok {
		return
	}
	id, ok := idFilter(r)
	if !ok {
		s.fail(w, r, fmt.Errorf("%w: delete requires id=eq.<id>", types.ErrInvalidID))
		return
	}
	rows, err := res.remove(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeRepresentation(w, r, http.StatusOK, rows)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body := postgrest.StatusFor(err)
	if errors.Is(err, errMethodNotAllowed) {
		status, body = http.StatusMethodNotAllowed, postgrest.ErrorBody{Code: "PGRST105", Message: err.Error()}
	}
	if status >= 500 {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, body)
}

func idFilter(r *http.Request) (string, bool) {
	return postgrest.ParseEq(r.URL.Query().Get("id"))
}

// readRows accepts either a JSON object or an array of objects.
func readRows(r *http.Request) ([]json.RawMessage, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", types.ErrMalformed, err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", types.ErrMalformed)
	}
	if data[0] != '[' {
		return []json.RawMessage{data}, nil
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrMalformed, err)
	}
	return rows, nil
}

func writeRepresentation(w http.ResponseWriter, r *http.Request, status int, rows any) {
	if !strings.Contains(r.Header.Get(postgrest.HeaderPrefer), postgrest.PreferRepresentation) {
		if status != http.StatusCreated {
			status = http.StatusNoContent
		}
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, rows)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Package server exposes the quickset engine over HTTP/JSON. Every
// response uses the {"success","data","error"} envelope; error kinds
// from the engine map onto 4xx statuses, with 500 reserved for
// genuinely internal failures. Authentication is HTTP Basic gated by
// the configured AuthLevel.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/net/netutil"

	"github.com/hupe1980/quickset"
	"github.com/hupe1980/quickset/config"
	"github.com/hupe1980/quickset/engine"
	"github.com/hupe1980/quickset/storage"
	"github.com/hupe1980/quickset/syncer"
)

// endpointClass partitions endpoints for auth gating.
type endpointClass uint8

const (
	classHealth endpointClass = iota
	classRead
	classWrite
	classAdmin
)

// Server routes HTTP requests onto a Quickset instance.
type Server struct {
	qs     *quickset.Quickset
	auth   *AuthManager
	sync   *syncer.Manager
	cfg    config.Config
	logger *quickset.Logger
}

// New creates a Server. sync may be nil when no sync source is
// configured; logger nil disables request logging.
func New(qs *quickset.Quickset, auth *AuthManager, sync *syncer.Manager, cfg config.Config, logger *quickset.Logger) *Server {
	if auth == nil {
		auth = NewAuthManager()
	}
	if logger == nil {
		logger = quickset.NoopLogger()
	}
	return &Server{qs: qs, auth: auth, sync: sync, cfg: cfg, logger: logger}
}

// Handler returns the routed handler with gzip compression applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.guard(classHealth, s.handleHealth))
	mux.HandleFunc("POST /table/create", s.guard(classWrite, s.handleCreateTable))
	mux.HandleFunc("POST /table/drop", s.guard(classWrite, s.handleDropTable))
	mux.HandleFunc("GET /tables", s.guard(classRead, s.handleListTables))
	mux.HandleFunc("GET /stats", s.guard(classRead, s.handleStats))
	mux.HandleFunc("POST /insert", s.guard(classWrite, s.handleInsert))
	mux.HandleFunc("POST /search", s.guard(classRead, s.handleSearch))
	mux.HandleFunc("POST /get", s.guard(classRead, s.handleGet))
	mux.HandleFunc("POST /update", s.guard(classWrite, s.handleUpdate))
	mux.HandleFunc("POST /delete", s.guard(classWrite, s.handleDelete))
	mux.HandleFunc("GET /sync/status", s.guard(classRead, s.handleSyncStatus))
	mux.HandleFunc("POST /sync/trigger", s.guard(classAdmin, s.handleSyncTrigger))
	mux.HandleFunc("POST /auth/user/add", s.guard(classAdmin, s.handleAddUser))
	mux.HandleFunc("POST /auth/user/remove", s.guard(classAdmin, s.handleRemoveUser))
	mux.HandleFunc("GET /auth/users", s.guard(classAdmin, s.handleListUsers))

	return gzhttp.GzipHandler(mux)
}

// Run binds the configured address and serves until ctx is canceled.
// The listener is capped at the configured connection limit.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return fmt.Errorf("server: bind %s: %w", s.cfg.Address(), err)
	}
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("quickset listening",
		"addr", s.cfg.Address(),
		"auth_level", s.cfg.AuthLevel.String(),
		"sync", s.sync != nil,
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// guard enforces the auth level for an endpoint class before invoking
// the handler.
func (s *Server) guard(class endpointClass, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, err := s.authorize(r, class)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if class == classAdmin && !role.CanAdmin() {
			s.writeError(w, r, fmt.Errorf("%w: admin required", ErrForbidden))
			return
		}
		if class == classWrite && !role.CanWrite() {
			s.writeError(w, r, fmt.Errorf("%w: write access required", ErrForbidden))
			return
		}
		next(w, r)
	}
}

// authorize resolves the caller's role for the endpoint class. When
// the configured level does not gate the class, full access is
// granted without credentials.
func (s *Server) authorize(r *http.Request, class endpointClass) (Role, error) {
	level := s.cfg.AuthLevel

	var needsAuth bool
	switch class {
	case classHealth:
		needsAuth = level.RequiresAuthForHealth()
	case classRead:
		needsAuth = level.RequiresAuthForRead()
	default:
		needsAuth = level.RequiresAuthForWrite()
	}
	if !needsAuth {
		return RoleAdmin, nil
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return 0, fmt.Errorf("%w: authentication required", ErrUnauthorized)
	}
	return s.auth.ValidateBasicAuth(header)
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var mismatch *engine.ErrTypeMismatch
	var arity *engine.ErrArity
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrUnknownTable), errors.Is(err, engine.ErrNotFound), errors.Is(err, ErrUnknownUser):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrUnknownColumn),
		errors.Is(err, engine.ErrDuplicateTable),
		errors.Is(err, engine.ErrDuplicateColumn),
		errors.Is(err, engine.ErrInvalidType),
		errors.Is(err, engine.ErrInvalidName),
		errors.Is(err, engine.ErrUnsupportedQuery),
		errors.Is(err, ErrDuplicateUser),
		errors.As(err, &mismatch),
		errors.As(err, &arity):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	s.writeJSON(w, status, errResp(err.Error()))
}

// badRequest reports a malformed body or missing field.
func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("bad request", "method", r.Method, "path", r.URL.Path, "error", err)
	s.writeJSON(w, http.StatusBadRequest, errResp(err.Error()))
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("malformed request body: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, okResp(map[string]bool{"ok": true}))
}

func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var req CreateTableRequest
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}

	cols := make([]engine.Column, len(req.Columns))
	for i, c := range req.Columns {
		kind, ok := storage.ParseKind(c.Type)
		if !ok {
			s.writeError(w, r, fmt.Errorf("%w: %q", engine.ErrInvalidType, c.Type))
			return
		}
		cols[i] = engine.Column{Name: c.Name, Type: kind}
	}

	if err := s.qs.CreateTable(r.Context(), req.Name, cols, req.Capacity); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, okResp("table created"))
}

func (s *Server) handleDropTable(w http.ResponseWriter, r *http.Request) {
	var req DropTableRequest
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}
	if err := s.qs.DropTable(r.Context(), req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, okResp("table dropped"))
}

func (s *Server) handleListTables(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, okResp(s.qs.Tables()))
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, okResp(StatsResponse{Tables: s.qs.Stats()}))
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	var req InsertRequest
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}

	schema, err := s.qs.Schema(req.Table)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	decoded := make([][]storage.Value, 0, len(req.Rows))
	for _, raw := range req.Rows {
		values, err := decodeRow(raw, schema)
		if err != nil {
			s.badRequest(w, r, err)
			return
		}
		decoded = append(decoded, values)
	}

	ids, err := s.qs.Insert(r.Context(), req.Table, decoded)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, okResp(InsertResponse{IDs: ids, Count: len(ids)}))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}

	query, err := s.buildQuery(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rows, err := s.qs.Search(r.Context(), req.Table, query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]RowResponse, len(rows))
	for i, row := range rows {
		out[i] = toRowResponse(row)
	}
	s.writeJSON(w, http.StatusOK, okResp(SearchResponse{Rows: out, Total: len(out)}))
}

// buildQuery converts the wire search request into a typed query
// descriptor, decoding operands against the table schema.
func (s *Server) buildQuery(req SearchRequest) (engine.Query, error) {
	searchType, okType := engine.ParseSearchType(req.Type)
	if !okType {
		return engine.Query{}, fmt.Errorf("%w: unknown search type %q", engine.ErrUnsupportedQuery, req.Type)
	}

	query := engine.Query{
		Type:   searchType,
		Column: req.Column,
		Prefix: req.Prefix,
		Text:   req.Query,
		Limit:  req.Limit,
		Offset: req.Offset,
	}

	schema, err := s.qs.Schema(req.Table)
	if err != nil {
		return engine.Query{}, err
	}

	switch searchType {
	case engine.SearchExact:
		query.Value, err = decodeOperand(req.Value, req.Column, schema)
	case engine.SearchRange:
		if query.Min, err = decodeOperand(req.Min, req.Column, schema); err == nil {
			query.Max, err = decodeOperand(req.Max, req.Column, schema)
		}
	}
	if err != nil {
		return engine.Query{}, err
	}
	return query, nil
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	var req GetRequest
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}

	rows, err := s.qs.Get(req.Table, req.IDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]RowResponse, len(rows))
	for i, row := range rows {
		out[i] = toRowResponse(row)
	}
	s.writeJSON(w, http.StatusOK, okResp(SearchResponse{Rows: out, Total: len(out)}))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}

	schema, err := s.qs.Schema(req.Table)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	values, err := decodeRow(req.Values, schema)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	if err := s.qs.Update(r.Context(), req.Table, req.ID, values); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, okResp("row updated"))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}

	deleted, err := s.qs.Delete(r.Context(), req.Table, req.IDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, okResp(DeleteResponse{Deleted: deleted}))
}

func (s *Server) handleSyncStatus(w http.ResponseWriter, _ *http.Request) {
	if s.sync == nil {
		s.writeJSON(w, http.StatusOK, okResp(SyncStatusResponse{}))
		return
	}

	statuses := s.sync.Statuses()
	tables := make([]SyncTableStatus, len(statuses))
	for i, st := range statuses {
		wire := SyncTableStatus{
			Table:          st.Table,
			LastRowCount:   st.LastRowCount,
			LastDurationMS: st.LastDuration.Milliseconds(),
			Error:          st.Error,
			Syncing:        st.Syncing,
		}
		if !st.LastSync.IsZero() {
			ago := int64(time.Since(st.LastSync).Seconds())
			wire.LastSyncAgoSecs = &ago
		}
		tables[i] = wire
	}

	s.writeJSON(w, http.StatusOK, okResp(SyncStatusResponse{
		Tables:     tables,
		Running:    s.sync.Running(),
		TotalSyncs: s.sync.SyncCount(),
	}))
}

func (s *Server) handleSyncTrigger(w http.ResponseWriter, r *http.Request) {
	if s.sync == nil {
		s.badRequest(w, r, errors.New("sync is not configured"))
		return
	}

	var req SyncTriggerRequest
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}

	if req.Table != "" {
		result, err := s.sync.SyncOne(r.Context(), s.qs, req.Table)
		if err != nil {
			s.badRequest(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, okResp([]syncer.Result{result}))
		return
	}
	s.writeJSON(w, http.StatusOK, okResp(s.sync.SyncAll(r.Context(), s.qs)))
}

func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}

	role, _ := ParseRole(req.Role)
	if err := s.auth.AddUser(req.Name, req.Password, role); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, okResp("user added"))
}

func (s *Server) handleRemoveUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, r, err)
		return
	}
	if err := s.auth.RemoveUser(req.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, okResp("user removed"))
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, okResp(s.auth.Users()))
}

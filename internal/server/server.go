// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/catalog"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/dashboard"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/models"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/session"
	"github.com/thekulkarnifactor/sk-fitness-web-app/internal/storage"
)

const (
	requestTimeout   = 30 * time.Second
	defaultIdleTTL   = 2 * time.Hour
	minPruneInterval = time.Second
	maxRequestBodyKB = 256
)

var serverInfo = protocol.Implementation{
	Name:    "macro-kitchen",
	Version: "1.0.0",
}

type Config struct {
	Addr           string
	SessionIdleTTL time.Duration
}

type toolHandler func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

type tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	handler     toolHandler
}

type KitchenServer struct {
	httpServer *http.Server
	router     chi.Router
	catalog    *catalog.Catalog
	storage    *storage.SQLiteStorage
	sessions   *session.Store
	dashboard  *dashboard.Service
	tools      map[string]tool
	config     *Config
	log        *zap.Logger
	now        func() time.Time
	newID      func() string // ids of persisted records
}

func NewKitchenServer(cfg *Config, cat *catalog.Catalog, stor *storage.SQLiteStorage, log *zap.Logger) (*KitchenServer, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if stor == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &KitchenServer{
		catalog:   cat,
		storage:   stor,
		sessions:  session.NewStore(log.Named("sessions")),
		dashboard: dashboard.NewService(stor, log.Named("dashboard")),
		config:    cfg,
		log:       log,
		now:       time.Now,
		newID:     func() string { return ulid.Make().String() },
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(cors)

	r.Get("/healthz", s.handleHealth)
	r.Get("/tools", s.handleListTools)
	r.Post("/tools/call", s.handleCallTool)
	r.Options("/tools/call", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	s.router = r

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *KitchenServer) Handler() http.Handler {
	return s.router
}

func (s *KitchenServer) Start(ctx context.Context) error {
	go s.pruneSessions(ctx)

	s.log.Info("starting macro kitchen server", zap.String("addr", s.httpServer.Addr), zap.Int("tools", len(s.tools)))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *KitchenServer) Stop(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	if s.storage != nil {
		if cerr := s.storage.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// pruneInterval checks four times per TTL, at most once a second.
func pruneInterval(ttl time.Duration) time.Duration {
	return max(ttl/4, minPruneInterval)
}

func (s *KitchenServer) pruneSessions(ctx context.Context) {
	ttl := s.config.SessionIdleTTL
	if ttl <= 0 {
		ttl = defaultIdleTTL
	}
	ticker := time.NewTicker(pruneInterval(ttl))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Prune(ttl); n > 0 {
				s.log.Info("pruned idle sessions", zap.Int("count", n), zap.Int("remaining", s.sessions.Len()))
			}
		}
	}
}

func (s *KitchenServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"server":   serverInfo,
		"sessions": s.sessions.Len(),
	})
}

func (s *KitchenServer) handleListTools(w http.ResponseWriter, r *http.Request) {
	list := make([]tool, 0, len(s.tools))
	for _, t := range s.tools {
		list = append(list, t)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })

	writeJSON(w, http.StatusOK, map[string]any{
		"server": serverInfo,
		"tools":  list,
	})
}

func (s *KitchenServer) handleCallTool(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyKB<<10)

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_json", fmt.Sprintf("Invalid JSON: %v", err))
		return
	}

	t, ok := s.tools[request.Name]
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown_tool", fmt.Sprintf("Unknown tool: %s", request.Name))
		return
	}

	result, err := t.handler(r.Context(), &request)
	if err != nil {
		status, code := errorStatus(err)
		if status >= http.StatusInternalServerError {
			s.log.Error("tool failed", zap.String("tool", request.Name), zap.Error(err))
		}
		writeError(w, r, status, code, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// errorStatus maps domain errors onto HTTP statuses.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, models.ErrStepBlocked):
		return http.StatusConflict, "step_blocked"
	case errors.Is(err, models.ErrInvalidStep):
		return http.StatusBadRequest, "invalid_step"
	case errors.Is(err, models.ErrUnknownTier),
		errors.Is(err, models.ErrUnknownPlan),
		errors.Is(err, models.ErrUnknownIngredient),
		errors.Is(err, models.ErrNotSelected),
		errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *KitchenServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Debug("request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)))
		}()
		next.ServeHTTP(ww, r)
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error":      code,
		"message":    message,
		"request_id": middleware.GetReqID(r.Context()),
	})
}

func (s *KitchenServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"weekendly/internal/domain/activity"
	"weekendly/internal/domain/plan"
	datasync "weekendly/internal/domain/sync"
	"weekendly/internal/netmon"
	"weekendly/internal/repository"
	"weekendly/internal/sqlite"
)

const maxBodySize = 8 << 20

// Deps are the wired services the HTTP boundary exposes.
type Deps struct {
	Planner     *plan.Planner
	Activities  *activity.Service
	Coordinator *datasync.Coordinator
	Monitor     *netmon.Monitor
	Scheduled   *sqlite.ScheduledRepository
	Stats       StatsProvider
	Logger      *slog.Logger
}

// StatsProvider reports storage usage for the status endpoint.
type StatsProvider interface {
	Stats(ctx context.Context) (sqlite.StorageStats, error)
}

// Server wires HTTP handlers over the planning and retrieval services.
type Server struct {
	deps Deps
}

// NewRouter creates the HTTP router for the planning boundary.
func NewRouter(deps Deps) *chi.Mux {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	srv := &Server{deps: deps}

	r := chi.NewRouter()
	r.Get("/health", srv.handleHealth)
	r.Get("/status", srv.handleStatus)

	r.Route("/plan", func(r chi.Router) {
		r.Get("/activities", srv.handleListPlan)
		r.Post("/activities", srv.handleAdd)
		r.Delete("/activities/{id}", srv.handleRemove)
		r.Post("/activities/{id}/move", srv.handleMove)
		r.Get("/days/{day}", srv.handleListDay)
		r.Post("/weekend", srv.handleSetWeekend)
		r.Post("/clear", srv.handleClear)
	})

	r.Get("/activities", srv.handleGetActivities)
	r.Get("/activities/search", srv.handleSearch)
	r.Post("/activities/prefetch", srv.handlePrefetch)

	r.Post("/sync", srv.handleSync)
	r.Get("/export", srv.handleExport)
	r.Post("/import", srv.handleImport)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type statusResponse struct {
	Online       bool                `json:"online"`
	PendingOps   int                 `json:"pending_ops"`
	ErrorState   bool                `json:"error_state"`
	DeadLetters  []netmon.DeadLetter `json:"dead_letters,omitempty"`
	LastSyncTime time.Time           `json:"last_sync_time"`
	Storage      sqlite.StorageStats `json:"storage"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Stats.Stats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Online:       s.deps.Monitor.Online(),
		PendingOps:   s.deps.Monitor.Pending(),
		ErrorState:   s.deps.Monitor.ErrorState(),
		DeadLetters:  s.deps.Monitor.DeadLetters(),
		LastSyncTime: s.deps.Coordinator.LastSyncTime(),
		Storage:      stats,
	})
}

type addRequest struct {
	Activity activity.Activity `json:"activity"`
	Slot     string            `json:"slot"`
	Day      plan.Day          `json:"day"`
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if !s.deps.Planner.Add(req.Activity, req.Slot, req.Day) {
		s.writeError(w, http.StatusConflict, errors.New("slot occupied or invalid placement"))
		return
	}

	group := s.groupAt(req.Day, req.Slot)
	s.mirrorPut(group)
	writeJSON(w, http.StatusCreated, group)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	mainID := ""
	for _, entry := range s.deps.Planner.CurrentWeekendActivities() {
		if entry.ScheduledID == id {
			mainID = entry.GroupID()
			break
		}
	}
	if mainID == "" {
		s.writeError(w, http.StatusNotFound, errors.New("scheduled activity not found"))
		return
	}

	s.deps.Planner.Remove(id)
	s.deps.Monitor.Enqueue("remove-scheduled", func(ctx context.Context) error {
		err := s.deps.Scheduled.Remove(ctx, mainID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	})
	w.WriteHeader(http.StatusNoContent)
}

type moveRequest struct {
	Slot string   `json:"slot"`
	Day  plan.Day `json:"day"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req moveRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if !s.deps.Planner.Move(id, req.Slot, req.Day) {
		s.writeError(w, http.StatusConflict, errors.New("destination occupied or activity not found"))
		return
	}

	group := s.groupAt(req.Day, req.Slot)
	if len(group) > 0 {
		mainID := group[0].GroupID()
		s.deps.Monitor.Enqueue("move-scheduled", func(ctx context.Context) error {
			if err := s.deps.Scheduled.Remove(ctx, mainID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			for i := range group {
				entry := group[i]
				if err := s.deps.Scheduled.Put(ctx, &entry); err != nil {
					return err
				}
			}
			return nil
		})
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleListPlan(w http.ResponseWriter, _ *http.Request) {
	entries := s.deps.Planner.CurrentWeekendActivities()
	if entries == nil {
		entries = []plan.ScheduledActivity{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleListDay(w http.ResponseWriter, r *http.Request) {
	day := plan.Day(chi.URLParam(r, "day"))
	if !day.Valid() {
		s.writeError(w, http.StatusBadRequest, errors.New("unknown day"))
		return
	}
	entries := s.deps.Planner.ActivitiesForDay(day)
	if entries == nil {
		entries = []plan.ScheduledActivity{}
	}
	writeJSON(w, http.StatusOK, entries)
}

type weekendRequest struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

func (s *Server) handleSetWeekend(w http.ResponseWriter, r *http.Request) {
	var req weekendRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	first, err := time.Parse("2006-01-02", req.First)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid first date"))
		return
	}
	last, err := time.Parse("2006-01-02", req.Last)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("invalid last date"))
		return
	}
	s.deps.Planner.SetCurrentWeekend(first, last)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	s.deps.Planner.ClearAll()
	// A regular sync pass would see the store as newer and restore the
	// cleared weekend, so the mirror pushes the planner state outward
	// unconditionally. The snapshot is taken when the op runs to pick up
	// anything scheduled in the meantime.
	s.deps.Monitor.Enqueue("clear-weekend", func(ctx context.Context) error {
		return s.deps.Coordinator.ForceSync(ctx, s.deps.Planner.Snapshot())
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetActivities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category := activity.Category(q.Get("category"))

	opts := activity.QueryOptions{
		Limit:        intParam(q.Get("limit")),
		Offset:       intParam(q.Get("offset")),
		ForceRefresh: q.Get("refresh") == "true",
		SearchQuery:  q.Get("q"),
	}

	result, err := s.deps.Activities.Get(r.Context(), category, opts)
	if err != nil {
		if errors.Is(err, activity.ErrInvalidCategory) {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if result.Activities == nil {
		result.Activities = []activity.Activity{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var categories []activity.Category
	for _, c := range q["category"] {
		categories = append(categories, activity.Category(c))
	}

	hits, err := s.deps.Activities.Search(r.Context(), q.Get("q"), activity.SearchOptions{
		Categories: categories,
		Limit:      intParam(q.Get("limit")),
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if hits == nil {
		hits = []activity.Activity{}
	}
	writeJSON(w, http.StatusOK, hits)
}

type prefetchRequest struct {
	Categories []activity.Category `json:"categories"`
}

func (s *Server) handlePrefetch(w http.ResponseWriter, r *http.Request) {
	var req prefetchRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.deps.Activities.PrefetchForOffline(r.Context(), req.Categories)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Coordinator.Sync(r.Context()); err != nil {
		if errors.Is(err, datasync.ErrSyncInProgress) {
			s.writeError(w, http.StatusConflict, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deps.Coordinator.ExportAll(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.deps.Coordinator.ImportAll(r.Context(), data); err != nil {
		if errors.Is(err, datasync.ErrMalformedSnapshot) || errors.Is(err, datasync.ErrUnsupportedVersion) {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// groupAt returns the full group occupying a slot: the main entry plus its
// blocked continuations, main first.
func (s *Server) groupAt(day plan.Day, slot string) []plan.ScheduledActivity {
	occupants := s.deps.Planner.ActivitiesForSlot(day, slot)
	if len(occupants) == 0 {
		return nil
	}
	mainID := occupants[0].GroupID()

	var group []plan.ScheduledActivity
	for _, entry := range s.deps.Planner.ActivitiesForDay(day) {
		if entry.GroupID() != mainID {
			continue
		}
		if entry.IsMain {
			group = append([]plan.ScheduledActivity{entry}, group...)
		} else {
			group = append(group, entry)
		}
	}
	return group
}

// mirrorPut queues durable writes for a group of entries.
func (s *Server) mirrorPut(group []plan.ScheduledActivity) {
	if len(group) == 0 {
		return
	}
	s.deps.Monitor.Enqueue("put-scheduled", func(ctx context.Context) error {
		for i := range group {
			entry := group[i]
			if err := s.deps.Scheduled.Put(ctx, &entry); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.deps.Logger.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
}

func intParam(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

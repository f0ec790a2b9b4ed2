package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/theirongolddev/cusage/internal/model"
	"github.com/theirongolddev/cusage/internal/pipeline"
)

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)

		r.Group(func(r chi.Router) {
			r.Use(s.requireReport)
			r.Get("/report", s.handleReport)
			r.Get("/models", s.handleModels)
			r.Get("/daily", s.handleDaily)
			r.Get("/power-users", s.handlePowerUsers)
			r.Get("/power-users/daily", s.handlePowerUserDaily)
			r.Get("/users/{user}/exceeded", s.handleUserExceeded)
		})
	})
	return r
}

type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Service) requireReport(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, report := s.current(); report == nil {
			msg := "no report loaded yet"
			if st := s.snapshotStatus(); st.LastError != "" {
				msg = st.LastError
			}
			writeJSON(w, http.StatusServiceUnavailable, apiError{Error: msg})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.eventsCopy())
}

func (s *Service) handleReport(w http.ResponseWriter, _ *http.Request) {
	_, report := s.current()
	writeJSON(w, http.StatusOK, report)
}

// modelView is one model row with the limit for the requested plan tier.
type modelView struct {
	model.ModelSummaryWithPercentages
	PlanLimit      float64 `json:"plan_limit"`
	PlanLimitLabel string  `json:"plan_limit_label"`
}

type modelsResponse struct {
	Plan       string      `json:"plan"`
	ExcessCost float64     `json:"excess_cost"`
	Models     []modelView `json:"models"`
}

func (s *Service) handleModels(w http.ResponseWriter, r *http.Request) {
	tier := s.cfg.Plan
	if q := r.URL.Query().Get("plan"); q != "" {
		var err error
		if tier, err = model.ParsePlanTier(q); err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
			return
		}
	}

	_, report := s.current()
	resp := modelsResponse{
		Plan:       tier.String(),
		ExcessCost: report.ExcessCost,
		Models:     make([]modelView, 0, len(report.ModelSummaries)),
	}
	for _, m := range report.ModelSummaries {
		resp.Models = append(resp.Models, modelView{
			ModelSummaryWithPercentages: m,
			PlanLimit:                   m.PlanLimit(tier),
			PlanLimitLabel:              m.PlanLimitLabel(tier),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

type dailyResponse struct {
	Compliance []model.DailyCompliance      `json:"compliance"`
	ByModel    []model.DailyModelCompliance `json:"by_model"`
	Volume     []model.DailyModelVolume     `json:"volume"`
}

func (s *Service) handleDaily(w http.ResponseWriter, _ *http.Request) {
	_, report := s.current()
	writeJSON(w, http.StatusOK, dailyResponse{
		Compliance: report.DailyCompliance,
		ByModel:    report.Daily,
		Volume:     report.DailyVolume,
	})
}

func (s *Service) handlePowerUsers(w http.ResponseWriter, _ *http.Request) {
	_, report := s.current()
	writeJSON(w, http.StatusOK, report.PowerUsers)
}

type powerUserDailyResponse struct {
	Users     []string                        `json:"users"`
	Activity  []model.DailyRequests           `json:"activity"`
	Breakdown []model.PowerUserDailyBreakdown `json:"breakdown"`
}

// handlePowerUserDaily narrows the breakdown to ?user= (repeatable or
// comma-separated); without it every power user is included.
func (s *Service) handlePowerUserDaily(w http.ResponseWriter, r *http.Request) {
	records, report := s.current()
	users := splitUsers(r.URL.Query()["user"])

	resp := powerUserDailyResponse{Users: users}
	if len(users) == 0 {
		resp.Users = report.PowerUsers.UserNames()
		resp.Activity = report.PowerUserDaily
		resp.Breakdown = report.PowerUserBreakdown
	} else {
		selected := make([]model.PowerUserInfo, 0, len(users))
		for _, u := range report.PowerUsers.PowerUsers {
			for _, name := range users {
				if u.User == name {
					selected = append(selected, u)
				}
			}
		}
		resp.Activity = pipeline.PowerUserDailyData(selected)
		resp.Breakdown = pipeline.PowerUserDailyBreakdown(records, users)
	}
	writeJSON(w, http.StatusOK, resp)
}

func splitUsers(values []string) []string {
	var out []string
	for _, v := range values {
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				out = append(out, u)
			}
		}
	}
	return out
}

type exceededResponse struct {
	User    string                        `json:"user"`
	Date    string                        `json:"date,omitempty"`
	Details []model.ExceededRequestDetail `json:"details"`
	Summary model.UserExceededSummary     `json:"summary"`
}

func (s *Service) handleUserExceeded(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	date := r.URL.Query().Get("date")
	if date != "" {
		if _, err := time.Parse(model.DateLayout, date); err != nil {
			writeJSON(w, http.StatusBadRequest, apiError{Error: fmt.Sprintf("invalid date %q (want YYYY-MM-DD)", date)})
			return
		}
	}

	records, _ := s.current()
	writeJSON(w, http.StatusOK, exceededResponse{
		User:    user,
		Date:    date,
		Details: pipeline.ExceededRequestDetails(records, date, user),
		Summary: pipeline.UserExceededSummary(records, user),
	})
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	writeSSE(w, Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

package daemon

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/theirongolddev/cusage/internal/model"
)

func loadedService(t *testing.T) *Service {
	t.Helper()
	s := New(Config{Plan: model.PlanBusiness, Logger: quietLogger(), Loader: stubLoader(
		func() ([]model.UsageRecord, error) { return testRecords(), nil },
	)})
	if err := s.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	return s
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHandler_Health(t *testing.T) {
	rec := get(t, New(Config{Logger: quietLogger()}).Handler(), "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}

func TestHandler_NoReportYet(t *testing.T) {
	rec := get(t, New(Config{Logger: quietLogger()}).Handler(), "/v1/report")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestHandler_Status(t *testing.T) {
	rec := get(t, loadedService(t).Handler(), "/v1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var st Status
	decode(t, rec, &st)
	if st.ReloadCount != 1 || st.Summary.Records != 4 || st.Plan != "business" {
		t.Errorf("status = %+v", st)
	}
}

func TestHandler_Models(t *testing.T) {
	h := loadedService(t).Handler()

	rec := get(t, h, "/v1/models?plan=enterprise")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp modelsResponse
	decode(t, rec, &resp)
	if resp.Plan != "enterprise" || len(resp.Models) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	// gpt-4o has 9 requests, opus 6.
	if resp.Models[0].Model != "gpt-4o" || resp.Models[0].PlanLimitLabel != model.UnlimitedQuota {
		t.Errorf("models[0] = %+v", resp.Models[0])
	}
	if resp.Models[1].PlanLimit != 1000 || resp.Models[1].PlanLimitLabel != "1000" {
		t.Errorf("models[1] = %+v", resp.Models[1])
	}

	if rec := get(t, h, "/v1/models?plan=gold"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad plan status = %d, want 400", rec.Code)
	}
}

func TestHandler_PowerUserDaily(t *testing.T) {
	h := loadedService(t).Handler()

	var all powerUserDailyResponse
	decode(t, get(t, h, "/v1/power-users/daily"), &all)
	if len(all.Users) != 1 || all.Users[0] != "alice" {
		t.Fatalf("users = %v", all.Users)
	}
	if len(all.Breakdown) != 2 {
		t.Errorf("breakdown = %+v", all.Breakdown)
	}

	var bob powerUserDailyResponse
	decode(t, get(t, h, "/v1/power-users/daily?user=bob"), &bob)
	if len(bob.Breakdown) != 1 || bob.Breakdown[0].CompliantRequests != 3 {
		t.Errorf("bob breakdown = %+v", bob.Breakdown)
	}
}

func TestHandler_UserExceeded(t *testing.T) {
	h := loadedService(t).Handler()

	var resp exceededResponse
	decode(t, get(t, h, "/v1/users/alice/exceeded"), &resp)
	if resp.User != "alice" || len(resp.Details) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Summary.TotalExceededRequests != 6 || resp.Summary.WorstDay == nil || resp.Summary.WorstDay.Date != "2025-06-01" {
		t.Errorf("summary = %+v", resp.Summary)
	}

	var day exceededResponse
	decode(t, get(t, h, "/v1/users/alice/exceeded?date=2025-06-02"), &day)
	if len(day.Details) != 1 || day.Details[0].ExceededRequests != 2 {
		t.Errorf("filtered details = %+v", day.Details)
	}

	if rec := get(t, h, "/v1/users/alice/exceeded?date=June"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", rec.Code)
	}
}

func TestHandler_Metrics(t *testing.T) {
	rec := get(t, loadedService(t).Handler(), "/metrics")
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		"cusage_records 4",
		`cusage_requests{status="exceeding"} 6`,
		`cusage_reloads_total{result="ok"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestChecker_Liveness(t *testing.T) {
	checker := New(0)
	checker.SetVersion("1.2.3")

	status := checker.CheckLiveness(context.Background())
	if status.Status != StatusOK {
		t.Errorf("Status = %q, want ok", status.Status)
	}
	if status.Version != "1.2.3" {
		t.Errorf("Version = %q, want 1.2.3", status.Version)
	}
}

func TestChecker_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
		unhealthy  []string
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: StatusReady,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"catalog": func(context.Context) error { return nil },
				"history": func(context.Context) error { return nil },
			},
			wantStatus: StatusReady,
		},
		{
			name: "one failing",
			checks: map[string]CheckFunc{
				"catalog": func(context.Context) error { return nil },
				"history": func(context.Context) error { return errors.New("database is locked") },
			},
			wantStatus: StatusDegraded,
			unhealthy:  []string{"history"},
		},
		{
			name: "timeout",
			checks: map[string]CheckFunc{
				"slow": func(ctx context.Context) error {
					<-ctx.Done()
					time.Sleep(10 * time.Millisecond)
					return nil
				},
			},
			wantStatus: StatusDegraded,
			unhealthy:  []string{"slow"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(20 * time.Millisecond)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			status := checker.CheckReadiness(context.Background())
			if status.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", status.Status, tt.wantStatus)
			}
			if len(status.Checks) != len(tt.checks) {
				t.Errorf("got %d results, want %d", len(status.Checks), len(tt.checks))
			}
			for _, name := range tt.unhealthy {
				if status.Checks[name].Status != StatusUnhealthy {
					t.Errorf("check %q status = %q, want unhealthy", name, status.Checks[name].Status)
				}
			}
		})
	}
}

func TestChecker_RegisterUnregister(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("b", func(context.Context) error { return nil })
	checker.RegisterCheck("a", func(context.Context) error { return nil })

	names := checker.ListChecks()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("ListChecks() = %v, want [a b]", names)
	}

	checker.UnregisterCheck("a")
	if got := checker.ListChecks(); len(got) != 1 {
		t.Errorf("ListChecks() after unregister = %v", got)
	}
}

func TestHandlers(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("history", func(context.Context) error { return errors.New("down") })

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		method     string
		wantCode   int
		wantStatus string
	}{
		{"liveness", checker.LivenessHandler(), http.MethodGet, http.StatusOK, StatusOK},
		{"readiness degraded", checker.ReadinessHandler(), http.MethodGet, http.StatusServiceUnavailable, StatusDegraded},
		{"liveness head", checker.LivenessHandler(), http.MethodHead, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(tt.method, "/", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantStatus == "" {
				if rec.Body.Len() != 0 {
					t.Errorf("HEAD response has body: %s", rec.Body.String())
				}
				return
			}
			var status HealthStatus
			if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if status.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status.Status, tt.wantStatus)
			}
		})
	}
}

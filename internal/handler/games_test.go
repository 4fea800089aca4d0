package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sysu-ecnc-dev/lineup-manager/backend/internal/config"
)

func TestGenerateLineupRequestBounds(t *testing.T) {
	h, _ := newTestHandler(t)

	tests := []struct {
		name    string
		req     generateLineupRequest
		wantErr bool
	}{
		{"all defaults", generateLineupRequest{}, false},
		{"typical", generateLineupRequest{InitialTemperature: 1000, CoolingRate: 0.99, Iterations: 20000}, false},
		{"iterations at limit", generateLineupRequest{Iterations: 1000000}, false},
		{"too many iterations", generateLineupRequest{Iterations: 2147483647}, true},
		{"temperature too high", generateLineupRequest{InitialTemperature: 1e9}, true},
		{"cooling rate not below one", generateLineupRequest{CoolingRate: 1}, true},
		{"negative diversity", generateLineupRequest{DiversityPenalty: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.validate.Struct(tt.req)
			if tt.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestGenerateLineupRequestFallsBackToDefaults(t *testing.T) {
	defaults := config.SchedulerConfig{InitialTemperature: 1000, CoolingRate: 0.995, Iterations: 5000}

	got := (&generateLineupRequest{Iterations: 300, DiversityPenalty: 4.5}).parameters(defaults)

	if got.InitialTemperature != 1000 || got.CoolingRate != 0.995 {
		t.Fatalf("expected temperature and cooling rate from defaults, got %+v", got)
	}
	if got.Iterations != 300 || got.DiversityPenalty != 4.5 {
		t.Fatalf("expected request values to override defaults, got %+v", got)
	}
}

func TestPlayersLookupError(t *testing.T) {
	h, _ := newTestHandler(t)

	// 比赛引用的球员已经被删除
	rec := httptest.NewRecorder()
	h.playersLookupError(rec, httptest.NewRequest(http.MethodPost, "/games/1/lineup/generate", nil), fmt.Errorf("load players: %w", sql.ErrNoRows))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	expectError(t, rec, "出场名单中有球员不存在")

	rec = httptest.NewRecorder()
	h.playersLookupError(rec, httptest.NewRequest(http.MethodPost, "/games/1/lineup/generate", nil), errors.New("connection reset"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}

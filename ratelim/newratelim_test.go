package ratelim

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
)

func TestLimitRejectsAfterBurst(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Limit(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusNoContent)
	})

	codes := []int{}
	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/token/login/", nil)
		r.RemoteAddr = "10.0.0.1:5555"
		w := httptest.NewRecorder()
		h(w, r, nil)
		codes = append(codes, w.Code)
	}
	want := []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
	}

	// A different client has its own bucket.
	r := httptest.NewRequest(http.MethodPost, "/api/auth/token/login/", nil)
	r.RemoteAddr = "10.0.0.2:5555"
	w := httptest.NewRecorder()
	h(w, r, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("second client code = %d", w.Code)
	}
}

func TestCleanupDropsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.getLimiter("a")

	now = now.Add(11 * time.Minute)
	rl.getLimiter("b")
	rl.Cleanup()

	if _, ok := rl.visitors["a"]; ok {
		t.Error("idle visitor a was not dropped")
	}
	if _, ok := rl.visitors["b"]; !ok {
		t.Error("active visitor b was dropped")
	}
}

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func passing() CheckFunc {
	return func(context.Context) error { return nil }
}

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func probe(t *testing.T, endpoint http.HandlerFunc) (int, report) {
	t.Helper()
	w := httptest.NewRecorder()
	endpoint(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return w.Code, body
}

func TestLiveEndpoint_Passing(t *testing.T) {
	h := New()
	h.AddLiveness(Check{Name: "a", Func: passing()})
	h.AddLiveness(Check{Name: "b", Func: passing()})

	code, body := probe(t, h.LiveEndpoint)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
	assert.Empty(t, body.Checks)
}

func TestLiveEndpoint_FailureThreshold(t *testing.T) {
	h := New()
	h.AddLiveness(Check{Name: "db", Func: failing("connection refused")})
	ctx := context.Background()

	h.liveness[0].run(ctx)
	h.liveness[0].run(ctx)
	code, _ := probe(t, h.LiveEndpoint)
	assert.Equal(t, http.StatusOK, code, "below threshold")

	h.liveness[0].run(ctx)
	code, body := probe(t, h.LiveEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "connection refused", body.Checks["db"])
}

func TestReadyEndpoint(t *testing.T) {
	t.Run("not marked ready", func(t *testing.T) {
		h := New()
		code, body := probe(t, h.ReadyEndpoint)
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "service is not ready", body.Checks["_readiness"])
	})

	t.Run("check not yet run", func(t *testing.T) {
		h := New()
		h.AddReadiness(Check{Name: "catalog", Func: passing()})
		h.SetReady(true)

		code, body := probe(t, h.ReadyEndpoint)
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "check is unhealthy", body.Checks["catalog"])
		assert.False(t, h.IsReady())
	})

	t.Run("ready", func(t *testing.T) {
		h := New()
		h.AddReadiness(Check{Name: "catalog", Func: passing()})
		h.SetReady(true)
		h.readiness[0].run(context.Background())

		code, body := probe(t, h.ReadyEndpoint)
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", body.Status)
		assert.True(t, h.IsReady())
	})

	t.Run("draining", func(t *testing.T) {
		h := New()
		h.SetReady(true)
		h.SetReady(false)
		code, _ := probe(t, h.ReadyEndpoint)
		assert.Equal(t, http.StatusServiceUnavailable, code)
	})

	t.Run("one of several failing", func(t *testing.T) {
		h := New()
		h.AddReadiness(Check{Name: "ok", Func: passing()})
		h.AddReadiness(Check{Name: "bad", Func: failing("down"), FailureThreshold: 1})
		h.SetReady(true)
		for _, c := range h.readiness {
			c.run(context.Background())
		}

		code, body := probe(t, h.ReadyEndpoint)
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, map[string]string{"bad": "down"}, body.Checks)
	})
}

func TestCheckRecovery(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	c := newCheck(Check{Name: "flaky", FailureThreshold: 1, SuccessThreshold: 2, Func: func(context.Context) error {
		if fail.Load() {
			return errors.New("flaky")
		}
		return nil
	}}, true)
	ctx := context.Background()

	c.run(ctx)
	assert.Equal(t, "flaky", c.failure())

	fail.Store(false)
	c.run(ctx)
	assert.NotEmpty(t, c.failure(), "one success is not enough")
	c.run(ctx)
	assert.Empty(t, c.failure())
}

func TestCheckTimeout(t *testing.T) {
	c := newCheck(Check{Name: "slow", Timeout: 10 * time.Millisecond, FailureThreshold: 1, Func: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}, true)

	c.run(context.Background())
	assert.Contains(t, c.failure(), "deadline exceeded")
}

func TestStartAndStop(t *testing.T) {
	var calls atomic.Int32
	h := New()
	h.AddReadiness(Check{Name: "counted", Func: func(context.Context) error {
		calls.Add(1)
		return nil
	}})
	h.SetReady(true)

	h.Start(context.Background(), 10*time.Millisecond)
	require.Eventually(t, h.IsReady, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)

	h.Stop()
	h.Stop()
	time.Sleep(30 * time.Millisecond)
	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, calls.Load())
}

func TestConcurrentProbes(t *testing.T) {
	h := New()
	h.AddLiveness(Check{Name: "live", Func: passing()})
	h.AddReadiness(Check{Name: "ready", Func: passing()})
	h.SetReady(true)
	h.Start(context.Background(), time.Millisecond)
	defer h.Stop()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.LiveEndpoint(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/livez", nil))
		}()
		go func() {
			defer wg.Done()
			_ = h.IsReady()
		}()
	}
	wg.Wait()
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestCheckers(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, GoroutineCountCheck(1_000_000)(ctx))
	assert.Error(t, GoroutineCountCheck(0)(ctx))

	assert.NoError(t, GCMaxPauseCheck(time.Hour)(ctx))

	assert.NoError(t, PingCheck(pinger{})(ctx))
	err := PingCheck(pinger{err: errors.New("refused")})(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

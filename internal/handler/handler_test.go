package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iurnickita/ordersync/internal/auth"
)

type fakeService struct {
	mu    sync.Mutex
	raw   []byte
	calls int
}

func (f *fakeService) SubmitRawOrder(_ context.Context, raw []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.raw = raw
	return nil
}

func (f *fakeService) Start() {}
func (f *fakeService) Stop()  {}

func (f *fakeService) submitted() ([]byte, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.raw, f.calls
}

func newTestRouter(svc *fakeService, apiKey string) http.Handler {
	h := newHandler(svc, zap.NewNop())
	return h.newRouter(auth.NewAuth(apiKey))
}

func TestPostOrder(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc, "secret")

	body := `{"id": 1}`
	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body))
	req.Header.Set(auth.HeaderAPIKey, "secret")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// 200 сразу, обработка асинхронная
	require.Equal(t, http.StatusOK, w.Code)
	require.Eventually(t, func() bool {
		raw, calls := svc.submitted()
		return calls == 1 && string(raw) == body
	}, time.Second, time.Millisecond)
}

func TestPostOrderUnauthorized(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc, "secret")

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{}`))
	req.Header.Set(auth.HeaderAPIKey, "wrong")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)

	time.Sleep(50 * time.Millisecond)
	_, calls := svc.submitted()
	require.Zero(t, calls)
}

func TestPostOrderMissingKey(t *testing.T) {
	svc := &fakeService{}
	router := newTestRouter(svc, "secret")

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

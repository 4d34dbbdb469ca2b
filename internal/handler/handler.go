package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/iurnickita/ordersync/internal/auth"
	"github.com/iurnickita/ordersync/internal/handler/config"
	"github.com/iurnickita/ordersync/internal/logger"
	"github.com/iurnickita/ordersync/internal/service"
)

func Serve(ctx context.Context, cfg config.Config, auth auth.Auth, service service.Service, zaplog *zap.Logger) error {
	h := newHandler(service, zaplog)
	router := h.newRouter(auth)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type handler struct {
	service service.Service
	zaplog  *zap.Logger
}

func newHandler(service service.Service, zaplog *zap.Logger) *handler {
	return &handler{
		service: service,
		zaplog:  zaplog,
	}
}

func (h *handler) newRouter(auth auth.Auth) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders", logger.RequestLogMdlw(auth.Middleware(h.PostOrder), h.zaplog))

	return mux
}

// PostOrder принимает заказ партнера. Fire-and-forget:
// партнер получает 200 сразу, обработка идёт асинхронно
func (h *handler) PostOrder(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	go func() {
		if err := h.service.SubmitRawOrder(context.Background(), raw); err != nil {
			h.zaplog.Error("submit raw order failed", zap.Error(err))
		}
	}()

	w.WriteHeader(http.StatusOK)
}

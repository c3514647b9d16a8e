package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ravi-m-fleetenable/global-search/internal/domain/caller"
	logpkg "github.com/ravi-m-fleetenable/global-search/internal/logger"
	"github.com/ravi-m-fleetenable/global-search/internal/metrics"
)

// NewRouter assembles the middleware chain and mounts the server.
func NewRouter(server ServerInterface, auth AuthConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(logger))
	r.Use(CallerMiddleware(auth))
	r.Use(metrics.Middleware())
	return HandlerWithOptions(server, ServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
		},
	})
}

// JSONRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func JSONRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(ErrorResponse{
						Code:    ErrorResponseCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
// The caller is read after the handler ran, so the line carries the role of
// authenticated requests.
func WideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ev := &wideEvent{}
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)
			ctx = withWideEvent(ctx, ev)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			}
			if ev.set {
				fields = append(fields,
					zap.String("user_id", ev.caller.UserID()),
					zap.String("role", string(ev.caller.Role())),
				)
			}
			reqLogger.Info("http_request", fields...)
		})
	}
}

type wideEvent struct {
	caller caller.Context
	set    bool
}

type wideEventKey struct{}

func withWideEvent(ctx context.Context, ev *wideEvent) context.Context {
	return context.WithValue(ctx, wideEventKey{}, ev)
}

// recordCaller attaches the resolved caller to the request's log line.
func recordCaller(ctx context.Context, c caller.Context) {
	if ev, ok := ctx.Value(wideEventKey{}).(*wideEvent); ok {
		ev.caller = c
		ev.set = true
	}
}

package api

import (
	"net/http"
	"time"

	"github.com/AlexZinkM/payroll-employer/internal/handler"

	"github.com/google/uuid"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-request id set by the access log.
const RequestIDHeader = "X-Request-ID"

// SetupRouter sets up router with handlers
func SetupRouter(payrollHandler *handler.PayrollHandler, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Session endpoints
	mux.HandleFunc("/session", payrollHandler.GetSession)
	mux.HandleFunc("/session/connect", payrollHandler.Connect)
	mux.HandleFunc("/session/disconnect", payrollHandler.Disconnect)
	mux.HandleFunc("/session/qr", payrollHandler.SessionQR)

	// Employer page
	mux.HandleFunc("/employer", payrollHandler.GetEmployer)
	mux.HandleFunc("/employer/balance", payrollHandler.GetBalance)

	// Payroll endpoints
	mux.HandleFunc("/payrolls", payrollHandler.Payrolls)
	mux.HandleFunc("/payrolls/form", payrollHandler.GetForm)

	return withAccessLog(mux, logger)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func withAccessLog(next http.Handler, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("http")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

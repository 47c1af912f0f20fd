package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/2beens/gymlog/internal/auth"
	"github.com/2beens/gymlog/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

// PanicRecovery turns a handler panic into a 500 and counts it. Open
// transactions are already rolled back by db.InTx when the panic reaches here.
// http.ErrAbortHandler is re-raised so net/http can abort the response.
func PanicRecovery(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if err, ok := r.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(r)
				}

				fields := log.Fields{
					"method": req.Method,
					"route":  routeTemplate(req),
				}
				if userID, ok := auth.UserIDFromContext(req.Context()); ok {
					fields["user_id"] = userID.String()
				}
				log.WithFields(fields).Errorf("gymlog: panic serving %s: %v\n%s", req.URL.Path, r, debug.Stack())

				if metricsManager != nil {
					metricsManager.CounterHandleRequestPanic.Inc()
				}
				http.Error(respWriter, "internal error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(respWriter, req)
		})
	}
}

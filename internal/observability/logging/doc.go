// Package logging builds the process-wide slog logger and carries
// request-scoped loggers through contexts.
//
//	logger := logging.Init()
//	logger.Info("api starting", slog.String("addr", addr))
//
//	func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
//	    log := logging.WithRequestID(r.Context(), slog.Default())
//	    log.Info("checkout started")
//	}
package logging

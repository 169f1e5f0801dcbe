// Package responsewriter wraps http.ResponseWriter to capture the status
// code and body size for logging and metrics middleware.
package responsewriter

import (
	"net/http"
)

// ResponseWriter records what was written through it.
type ResponseWriter struct {
	http.ResponseWriter
	statusCode    int
	bytesWritten  int
	headerWritten bool
}

// Wrap returns w wrapped. The status defaults to 200. Logging, tracing and
// metrics all wrap the same writer, so an existing wrapper is returned as is.
func Wrap(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	return &ResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader forwards only the first call, as net/http does.
func (w *ResponseWriter) WriteHeader(statusCode int) {
	if w.headerWritten {
		return
	}
	w.statusCode = statusCode
	w.headerWritten = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
}

func (w *ResponseWriter) StatusCode() int   { return w.statusCode }
func (w *ResponseWriter) BytesWritten() int { return w.bytesWritten }

// Written reports whether the header has been sent.
func (w *ResponseWriter) Written() bool { return w.headerWritten }

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

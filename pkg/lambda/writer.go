package lambda

import (
	"bytes"
	"net/http"
)

// ResponseWriter captures a handler's output in memory. Like net/http it
// freezes the header set when the status is written and sniffs a
// Content-Type on the first body write when none was set.
type ResponseWriter struct {
	header      http.Header
	sent        http.Header
	status      int
	wroteHeader bool
	sniffed     bool
	body        bytes.Buffer
}

// NewResponseWriter creates an empty ResponseWriter.
func NewResponseWriter() *ResponseWriter {
	return &ResponseWriter{header: make(http.Header)}
}

// Header returns the header map that will be sent by WriteHeader.
func (w *ResponseWriter) Header() http.Header {
	return w.header
}

// WriteHeader records the status code. Only the first call has effect.
func (w *ResponseWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = statusCode
	w.sent = w.header.Clone()
}

// Write appends to the captured body.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if !w.sniffed && len(b) > 0 {
		w.sniffed = true
		if _, ok := w.sent["Content-Type"]; !ok {
			w.sent.Set("Content-Type", http.DetectContentType(b))
		}
	}
	return w.body.Write(b)
}

// Flush is a no-op; the body is delivered as a whole.
func (w *ResponseWriter) Flush() {}

// Response returns what was written. A handler that wrote nothing produces
// an empty 200.
func (w *ResponseWriter) Response() *Response {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return &Response{
		StatusCode: w.status,
		Header:     w.sent,
		Body:       w.body.Bytes(),
	}
}

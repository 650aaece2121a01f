package http

import "net/http"

// lazyHeaderWriter applies response headers on the first write, so a
// failure before any output can still be answered with a problem document.
type lazyHeaderWriter struct {
	http.ResponseWriter
	apply   func(http.Header)
	written int64
}

func newLazyHeaderWriter(w http.ResponseWriter, apply func(http.Header)) *lazyHeaderWriter {
	return &lazyHeaderWriter{ResponseWriter: w, apply: apply}
}

func (lw *lazyHeaderWriter) Write(p []byte) (int, error) {
	if lw.written == 0 && lw.apply != nil {
		lw.apply(lw.ResponseWriter.Header())
		lw.apply = nil
	}
	n, err := lw.ResponseWriter.Write(p)
	lw.written += int64(n)
	return n, err
}

// Started reports whether any byte reached the client.
func (lw *lazyHeaderWriter) Started() bool {
	return lw.written > 0
}

func (lw *lazyHeaderWriter) Flush() {
	if f, ok := lw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

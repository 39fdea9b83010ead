package middleware

import (
	"github.com/gin-gonic/gin"
	servertiming "github.com/mitchellh/go-server-timing"
)

const serverTimingHeader = "Server-Timing"

// ServerTiming attaches a Server-Timing header to the request context.
// Metrics started with telemetry.StartTiming during the request are written
// to the response just before the status line goes out.
func ServerTiming() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := &servertiming.Header{}
		total := h.NewMetric("total").Start()

		c.Request = c.Request.WithContext(servertiming.NewContext(c.Request.Context(), h))
		tw := &timingWriter{ResponseWriter: c.Writer, header: h, total: total}
		c.Writer = tw

		c.Next()

		// bodyless responses are flushed by gin on the original writer
		tw.flushTiming()
	}
}

type timingWriter struct {
	gin.ResponseWriter
	header  *servertiming.Header
	total   *servertiming.Metric
	written bool
}

func (w *timingWriter) flushTiming() {
	if w.written {
		return
	}
	w.written = true
	w.total.Stop()
	if v := w.header.String(); v != "" {
		w.ResponseWriter.Header().Set(serverTimingHeader, v)
	}
}

func (w *timingWriter) WriteHeader(code int) {
	w.flushTiming()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timingWriter) WriteHeaderNow() {
	w.flushTiming()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timingWriter) Write(data []byte) (int, error) {
	w.flushTiming()
	return w.ResponseWriter.Write(data)
}

func (w *timingWriter) WriteString(s string) (int, error) {
	w.flushTiming()
	return w.ResponseWriter.WriteString(s)
}

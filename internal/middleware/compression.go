package middleware

import (
	"compress/gzip"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
)

// Below this size the gzip framing outweighs the saving on a JSON payload.
const gzipMinSize = 1 << 10

// Compression gzips responses for clients that advertise support. The API
// only emits JSON, which compresses well, so there is no content-type gate.
func Compression() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		gz := gzip.NewWriter(c.Writer)
		defer gz.Close()

		c.Header("Content-Encoding", "gzip")
		c.Header("Vary", "Accept-Encoding")

		c.Writer = &gzipResponseWriter{ResponseWriter: c.Writer, gz: gz}
		c.Next()
	}
}

type gzipResponseWriter struct {
	gin.ResponseWriter
	gz io.Writer
}

// Write passes small bodies through uncompressed and strips the encoding
// header so the client sees a plain response.
func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	if len(data) < gzipMinSize {
		w.Header().Del("Content-Encoding")
		return w.ResponseWriter.Write(data)
	}
	return w.gz.Write(data)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

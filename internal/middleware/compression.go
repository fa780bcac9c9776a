package middleware

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// Compression negotiates gzip in both directions: responses are compressed
// for clients that accept it, and quote requests sent with
// Content-Encoding: gzip are inflated before binding. A body that is not
// valid gzip is rejected with 400.
//
// Metrics negotiate their own encoding, swagger assets are served as they
// are and probe responses are too small to be worth it.
func Compression() gin.HandlerFunc {
	return gzip.Gzip(gzip.BestSpeed,
		gzip.WithExcludedPaths([]string{"/metrics", "/swagger/"}),
		gzip.WithExcludedPathsRegexs([]string{`^/(healthz|readyz)$`}),
		gzip.WithDecompressFn(gzip.DefaultDecompressHandle),
	)
}

package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/r9s-ai/textmate-validate/internal/logx"
)

const (
	ctxRequestID    = "tmv.request_id"
	ctxEngine       = "tmv.engine"
	ctxRegexTotal   = "tmv.regex_total"
	ctxRegexInvalid = "tmv.regex_invalid"
)

type contextFieldSpec struct {
	ctxKey string
	logKey string
}

var accessLogContextFieldSpecs = []contextFieldSpec{
	{ctxKey: ctxEngine, logKey: "engine"},
	{ctxKey: ctxRegexTotal, logKey: "regex_total"},
	{ctxKey: ctxRegexInvalid, logKey: "regex_invalid"},
}

func requestIDMiddleware(headerKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerKey))
		if id == "" {
			id = genRequestID()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerKey, id)
		c.Next()
	}
}

func accessLogMiddleware(l *zap.Logger, f *logx.AccessLogFormatter) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logx.AccessEntry{
			Time:      time.Now(),
			Status:    c.Writer.Status(),
			Latency:   time.Since(start),
			ClientIP:  c.ClientIP(),
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			RequestID: c.GetString(ctxRequestID),
			Fields:    map[string]any{},
		}
		copyContextFieldsBySpec(c, entry.Fields, accessLogContextFieldSpecs)
		if f != nil {
			l.Info(f.Format(entry))
			return
		}
		l.Info("request",
			zap.Int("status", entry.Status),
			zap.Duration("latency", entry.Latency),
			zap.String("method", entry.Method),
			zap.String("path", entry.Path),
			zap.String("request_id", entry.RequestID))
	}
}

func copyContextFieldsBySpec(c *gin.Context, dst map[string]any, specs []contextFieldSpec) {
	for _, s := range specs {
		if v, ok := c.Get(s.ctxKey); ok {
			dst[s.logKey] = v
		}
	}
}

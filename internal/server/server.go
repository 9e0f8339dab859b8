package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/r9s-ai/textmate-validate/internal/logx"
	"github.com/r9s-ai/textmate-validate/pkg/grammar"
	"github.com/r9s-ai/textmate-validate/pkg/oracle"
	"github.com/r9s-ai/textmate-validate/pkg/tmvalidate"
)

const defaultMaxBodyBytes = 8 * 1024 * 1024

type Options struct {
	Listen string
	// H2C serves cleartext HTTP/2 next to HTTP/1.1.
	H2C bool
	// Engine is used when a request does not pick one.
	Engine       string
	Concurrency  int
	MaxBodyBytes int64
	// RequestIDHeader defaults to X-Request-Id.
	RequestIDHeader string
	// AccessLog, when set, formats one access line per request.
	AccessLog *logx.AccessLogFormatter
	Logger    *zap.Logger
	// LoaderFor returns the engine loader for a canonical engine name. It
	// defaults to oracle.Shared.
	LoaderFor func(name string) *oracle.Loader
}

// Server exposes grammar validation over HTTP.
type Server struct {
	opts   Options
	logger *zap.Logger
}

type validateResponse struct {
	OK      bool              `json:"ok"`
	Engine  string            `json:"engine,omitempty"`
	Passed  bool              `json:"passed"`
	Results tmvalidate.Result `json:"results"`
	Error   string            `json:"error,omitempty"`
}

type extractResponse struct {
	OK      bool                   `json:"ok"`
	Regexes []grammar.LocatedRegex `json:"regexes"`
	Error   string                 `json:"error,omitempty"`
}

func New(opts Options) *Server {
	if opts.LoaderFor == nil {
		opts.LoaderFor = oracle.Shared
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	opts.Engine = oracle.NormalizeEngineName(opts.Engine)
	opts.RequestIDHeader = resolveRequestIDHeader(opts.RequestIDHeader)
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{opts: opts, logger: logger}
}

func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(requestIDMiddleware(s.opts.RequestIDHeader))
	r.Use(accessLogMiddleware(s.logger, s.opts.AccessLog))
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api := r.Group("/api")
	api.GET("/engines", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"engines": oracle.EngineNames(),
			"default": s.opts.Engine,
		})
	})
	api.POST("/validate", s.handleValidate)
	api.POST("/extract", s.handleExtract)

	if s.opts.H2C {
		return h2c.NewHandler(r, &http2.Server{})
	}
	return r
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	listen := strings.TrimSpace(s.opts.Listen)
	if listen == "" {
		return errors.New("serve listen address is empty")
	}
	srv := &http.Server{
		Addr:              listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("textmate-validate listening",
			zap.String("url", "http://"+listen),
			zap.String("engine", s.opts.Engine),
			zap.Bool("h2c", s.opts.H2C))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) readGrammar(c *gin.Context) (grammar.Source, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxBodyBytes))
	if err != nil {
		return grammar.Source{}, &grammar.SourceError{Source: "<request body>", Err: err}
	}
	return grammar.FromString(string(body)), nil
}

func (s *Server) handleValidate(c *gin.Context) {
	engine := s.opts.Engine
	if q := strings.TrimSpace(c.Query("engine")); q != "" {
		engine = oracle.NormalizeEngineName(q)
	}
	if !slices.Contains(oracle.EngineNames(), engine) {
		c.JSON(http.StatusBadRequest, validateResponse{Error: "unknown engine " + engine})
		return
	}
	c.Set(ctxEngine, engine)

	src, err := s.readGrammar(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, validateResponse{Engine: engine, Error: err.Error()})
		return
	}
	vopts := []tmvalidate.Option{tmvalidate.WithLogger(s.logger)}
	if s.opts.Concurrency > 0 {
		vopts = append(vopts, tmvalidate.WithConcurrency(s.opts.Concurrency))
	}
	v := tmvalidate.New(s.opts.LoaderFor(engine), vopts...)
	res, err := v.ValidateGrammar(c.Request.Context(), src)
	if err != nil {
		status := http.StatusInternalServerError
		var se *grammar.SourceError
		if errors.As(err, &se) {
			status = http.StatusBadRequest
		}
		c.JSON(status, validateResponse{Engine: engine, Error: err.Error()})
		return
	}
	total, _, invalid := res.Counts()
	c.Set(ctxRegexTotal, total)
	c.Set(ctxRegexInvalid, invalid)
	c.JSON(http.StatusOK, validateResponse{
		OK:      true,
		Engine:  engine,
		Passed:  res.Passed(),
		Results: res,
	})
}

func (s *Server) handleExtract(c *gin.Context) {
	src, err := s.readGrammar(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, extractResponse{Error: err.Error()})
		return
	}
	doc, err := src.Load()
	if err != nil {
		c.JSON(http.StatusBadRequest, extractResponse{Error: err.Error()})
		return
	}
	located := grammar.Extract(doc)
	c.Set(ctxRegexTotal, len(located))
	c.JSON(http.StatusOK, extractResponse{OK: true, Regexes: located})
}

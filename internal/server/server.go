// Package server exposes surface computation over HTTP.
//
// Every request builds its own pricing.Contract, so nothing mutable is
// shared between concurrent callers. Encoded responses are cached by their
// normalized contract parameters.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/contactkeval/option-surface/internal/config"
	"github.com/contactkeval/option-surface/internal/logger"
	"github.com/contactkeval/option-surface/internal/pricing"
	"github.com/contactkeval/option-surface/internal/report"
)

// errBadRequest marks request bodies that could not be decoded.
var errBadRequest = errors.New("bad request")

// Server is the REST front end.
type Server struct {
	addr    string
	router  *gin.Engine
	cache   *bigcache.BigCache // nil when caching is disabled
	metrics *metrics
}

// New builds the router. A zero CacheTTL disables the response cache.
func New(cfg config.ServerConfig) (*Server, error) {
	s := &Server{
		addr:    cfg.Addr,
		metrics: newMetrics(),
	}

	if cfg.CacheTTL > 0 {
		bc := bigcache.DefaultConfig(cfg.CacheTTL)
		bc.Shards = 16
		bc.MaxEntriesInWindow = 1024
		bc.MaxEntrySize = 64 * 1024
		bc.HardMaxCacheSize = cfg.CacheMaxMB
		bc.Verbose = false

		cache, err := bigcache.New(context.Background(), bc)
		if err != nil {
			return nil, fmt.Errorf("creating response cache: %w", err)
		}
		s.cache = cache
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	api := r.Group("/v1")
	{
		api.GET("/greeks", s.handleGreeks)
		api.POST("/surfaces/:greek", s.handleSurface)
		api.POST("/expressions", s.handleExpression)
		api.POST("/quote", s.handleQuote)
	}

	s.router = r
	return s, nil
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("event=server_start addr=%s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Infof("event=server_stop addr=%s", s.addr)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Close releases the cache.
func (s *Server) Close() error {
	if s.cache != nil {
		return s.cache.Close()
	}
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("event=http_request method=%s path=%s status=%d latency=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// contractRequest is the JSON form of pricing.Params.
type contractRequest struct {
	Spot       float64 `json:"spot"`
	Strike     float64 `json:"strike"`
	Rate       float64 `json:"rate"`
	Expiry     float64 `json:"expiry"`
	Volatility float64 `json:"volatility"`
	Kind       string  `json:"kind"`
}

func (r contractRequest) contract() (*pricing.Contract, error) {
	return pricing.NewContract(pricing.Params{
		Spot:       r.Spot,
		Strike:     r.Strike,
		Rate:       r.Rate,
		Expiry:     r.Expiry,
		Volatility: r.Volatility,
		Kind:       r.Kind,
	})
}

type expressionRequest struct {
	contractRequest
	Expression string `json:"expression"`
}

func bindContract(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func cacheKey(endpoint, arg string, c *pricing.Contract) string {
	p := c.Params()
	return fmt.Sprintf("%s|%s|%g|%g|%g|%g|%g|%s",
		endpoint, arg, p.Spot, p.Strike, p.Rate, p.Expiry, p.Volatility, p.Kind)
}

func (s *Server) handleGreeks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"greeks":          pricing.Greeks,
		"expression_vars": pricing.ExpressionVars(),
	})
}

func (s *Server) handleSurface(c *gin.Context) {
	greek, err := pricing.ParseGreek(c.Param("greek"))
	if err != nil {
		s.fail(c, err)
		return
	}

	var req contractRequest
	if err := bindContract(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	contract, err := req.contract()
	if err != nil {
		s.fail(c, err)
		return
	}

	s.respond(c, "surface", cacheKey("surface", string(greek), contract), func() (any, error) {
		surf, err := contract.Surface(greek)
		if err != nil {
			return nil, err
		}
		s.metrics.surfacesTotal.WithLabelValues(string(greek)).Inc()
		return report.NewDocument(surf), nil
	})
}

func (s *Server) handleExpression(c *gin.Context) {
	var req expressionRequest
	if err := bindContract(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	contract, err := req.contract()
	if err != nil {
		s.fail(c, err)
		return
	}

	s.respond(c, "expression", cacheKey("expression", req.Expression, contract), func() (any, error) {
		surf, err := contract.Expression(req.Expression)
		if err != nil {
			return nil, err
		}
		s.metrics.surfacesTotal.WithLabelValues(string(pricing.GreekExpression)).Inc()
		return report.NewDocument(surf), nil
	})
}

func (s *Server) handleQuote(c *gin.Context) {
	var req contractRequest
	if err := bindContract(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	contract, err := req.contract()
	if err != nil {
		s.fail(c, err)
		return
	}

	s.respond(c, "quote", cacheKey("quote", "", contract), func() (any, error) {
		return contract.Quote(), nil
	})
}

// respond serves the cached body for key or computes, encodes and caches a
// fresh one.
func (s *Server) respond(c *gin.Context, endpoint, key string, compute func() (any, error)) {
	if s.cache != nil {
		if b, err := s.cache.Get(key); err == nil {
			s.metrics.cacheHits.Inc()
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", b)
			return
		}
		s.metrics.cacheMisses.Inc()
	}

	start := time.Now()
	v, err := compute()
	if err != nil {
		s.fail(c, err)
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.computeDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if s.cache != nil {
		if err := s.cache.Set(key, b); err != nil {
			logger.Debugf("event=cache_set_failed key=%q err=%v", key, err)
		}
	}

	c.Header("X-Cache", "MISS")
	c.Data(http.StatusOK, "application/json; charset=utf-8", b)
}

// errorCode maps domain errors to an HTTP status and a stable code.
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, pricing.ErrInvalidParameter):
		return http.StatusBadRequest, "invalid_parameter"
	case errors.Is(err, pricing.ErrInvalidOptionKind):
		return http.StatusBadRequest, "invalid_option_kind"
	case errors.Is(err, pricing.ErrInvalidArity):
		return http.StatusBadRequest, "invalid_arity"
	case errors.Is(err, pricing.ErrUnknownGreek):
		return http.StatusBadRequest, "unknown_greek"
	case errors.Is(err, pricing.ErrInvalidExpression):
		return http.StatusBadRequest, "invalid_expression"
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, "bad_request"
	}
	return http.StatusInternalServerError, "internal"
}

func (s *Server) fail(c *gin.Context, err error) {
	status, code := errorCode(err)
	if status < http.StatusInternalServerError {
		s.metrics.rejectedTotal.WithLabelValues(code).Inc()
		logger.Debugf("event=request_rejected path=%s code=%s err=%v", c.Request.URL.Path, code, err)
	} else {
		logger.Errorf("event=request_failed path=%s err=%v", c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": code})
}

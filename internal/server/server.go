// Package server exposes the solver over HTTP with gin.
//
// Routes:
//
//	POST /solve   {"expression": "..."} -> SolveResponse
//	GET  /        liveness banner
//	GET  /health  health check
//	GET  /metrics Prometheus metrics
//	GET  /schema  tool schema for agent registration
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/mathsolver/internal/config"
	"github.com/njchilds90/mathsolver/types"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Solver is the pipeline the server exposes. *mathsolver.Solver
// implements it.
type Solver interface {
	Solve(ctx context.Context, req types.SolveRequest) types.SolveResponse
}

type Server struct {
	solver Solver
	cfg    config.ServerConfig
	log    *zap.Logger
	engine *gin.Engine
}

func New(solver Solver, cfg config.ServerConfig, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{solver: solver, cfg: cfg, log: log}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.accessLog(), cors(s.cfg.AllowedOrigins))

	r.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "running"}) })
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/schema", func(c *gin.Context) { c.JSON(http.StatusOK, ToolSpec()) })
	r.POST("/solve", s.handleSolve)
	return r
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.engine }

type solveBody struct {
	Expression *string `json:"expression" binding:"required"`
}

func (s *Server) handleSolve(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	var body solveBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	resp := s.solver.Solve(c.Request.Context(), types.SolveRequest{Expression: *body.Expression})
	pt := string(resp.ProblemType)
	solveRequests.WithLabelValues(pt, strconv.FormatBool(resp.OK)).Inc()
	solveDuration.WithLabelValues(pt).Observe(time.Since(start).Seconds())

	if !resp.OK {
		s.log.Debug("solve failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("problem_type", pt),
			zap.String("error_kind", string(resp.ErrorKind)),
			zap.String("error", resp.Error),
		)
	}
	c.JSON(http.StatusOK, resp)
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully within
// the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("mathsolver listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.log.Info("mathsolver shutting down")
		return srv.Shutdown(shutdown)
	})
	return g.Wait()
}

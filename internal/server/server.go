// Package server exposes the bot's webhook over HTTP with two interchangeable front ends.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"

	"github.com/icebreaker-bot/server/internal/channel"
	errx "github.com/icebreaker-bot/server/internal/core/error"
	logx "github.com/icebreaker-bot/server/pkg/logger"
)

const serviceName = "icebreaker"

// Processor is the channel adapter as seen by the HTTP layer.
type Processor interface {
	ProcessActivity(ctx context.Context, authHeader string, act *channel.Activity, h channel.Handler) (*channel.InvokeResponse, error)
}

type Server struct {
	config    Config
	mode      Mode
	processor Processor
	handler   channel.Handler
	workers   *pool.Pool
	http      *http.Server
}

func New(config Config, mode Mode, processor Processor, handler channel.Handler) (*Server, error) {
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 1 << 20
	}

	s := &Server{
		config:    config,
		mode:      mode,
		processor: processor,
		handler:   handler,
	}

	mux := http.NewServeMux()
	switch mode {
	case ModeAsync:
		mux.HandleFunc("POST /api/messages", s.handleAsync)
	case ModePooled:
		size := config.WorkerPoolSize
		if size <= 0 {
			size = 1
		}
		s.workers = pool.New().WithMaxGoroutines(size)
		mux.HandleFunc("POST /api/messages", s.handlePooled)
		mux.HandleFunc("GET /{$}", s.handleStatus)
		mux.HandleFunc("GET /health", s.handleHealth)
	default:
		return nil, errx.Configuration("unknown front end mode %q", mode)
	}

	s.http = &http.Server{
		Addr:              config.Addr(),
		Handler:           withRequestLogging(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is cancelled, then drains in-flight requests and turns.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", ln.Addr().String()).Str("mode", string(s.mode)).Msg("Server listening")
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logx.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	err := s.http.Shutdown(shutdownCtx)
	if s.workers != nil {
		s.workers.Wait()
	}
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// handleAsync runs the turn inline. Turn failures never reach the HTTP response;
// the adapter's error hook sees them.
func (s *Server) handleAsync(w http.ResponseWriter, r *http.Request) {
	act, err := s.readActivity(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := s.processor.ProcessActivity(context.WithoutCancel(r.Context()), r.Header.Get("Authorization"), act, s.handler)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if resp != nil {
		writeInvokeResponse(w, resp)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// handlePooled hands the turn to the worker pool and waits for it. A panic in the
// turn is recovered and answered like any other turn failure.
func (s *Server) handlePooled(w http.ResponseWriter, r *http.Request) {
	act, err := s.readActivity(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	type result struct {
		resp *channel.InvokeResponse
		err  error
	}
	done := make(chan result, 1)
	ctx := context.WithoutCancel(r.Context())
	auth := r.Header.Get("Authorization")

	s.workers.Go(func() {
		var (
			res     result
			catcher panics.Catcher
		)
		catcher.Try(func() {
			res.resp, res.err = s.processor.ProcessActivity(ctx, auth, act, s.handler)
		})
		if recovered := catcher.Recovered(); recovered != nil {
			res.err = recovered.AsError()
		}
		done <- res
	})

	res := <-done
	if res.err != nil {
		writeError(w, r, res.err)
		return
	}
	if res.resp != nil {
		writeInvokeResponse(w, res.resp)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "running",
		"service": serviceName,
		"mode":    string(s.mode),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

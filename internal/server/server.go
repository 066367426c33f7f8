// Package server is the TCP front end: it accepts connections and hands
// each one to the worker pool as a job that reads the request line and
// writes a canned response from the document root.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/poolserve/internal/algorithms"
	"github.com/utkarsh5026/poolserve/internal/config"
	"github.com/utkarsh5026/poolserve/internal/metrics"
	"github.com/utkarsh5026/poolserve/pool"
)

// Executor runs jobs. *pool.ThreadPool satisfies it.
type Executor interface {
	Execute(job pool.Job) error
}

// Options configures a Server.
type Options struct {
	// Root holds hello.html, 404.html and any file named by Routes.
	Root string

	// Files overrides Root when set.
	Files fs.FS

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MaxConnections stops Serve after that many accepted connections.
	// Zero means no limit.
	MaxConnections int

	Routes  []config.Route
	Logger  zerolog.Logger
	Metrics *metrics.Collector
}

// OptionsFromConfig maps the server section of the configuration.
func OptionsFromConfig(cfg config.ServerConfig) Options {
	return Options{
		Root:           cfg.Root,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		MaxConnections: cfg.MaxConnections,
		Routes:         cfg.Routes,
		Logger:         zerolog.Nop(),
	}
}

// Server dispatches accepted connections to an Executor.
type Server struct {
	exec    Executor
	opts    Options
	router  *Router
	files   fs.FS
	log     zerolog.Logger
	metrics *metrics.Collector

	newRetrier func() *algorithms.Retrier
}

// New returns a server that submits one job per connection to exec.
func New(exec Executor, opts Options) *Server {
	files := opts.Files
	if files == nil {
		files = os.DirFS(opts.Root)
	}

	return &Server{
		exec:       exec,
		opts:       opts,
		router:     NewRouter(opts.Routes),
		files:      files,
		log:        opts.Logger,
		metrics:    opts.Metrics,
		newRetrier: algorithms.NewAcceptRetrier,
	}
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, the connection limit
// is reached, or the executor rejects a job. ln is closed on return.
// Temporary accept errors are retried with exponential backoff.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return ln.Close()
	})
	g.Go(func() error {
		defer cancel()
		return s.acceptLoop(ctx, ln)
	})

	err := g.Wait()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	s.log.Info().Str("addr", ln.Addr().String()).Int("routes", s.router.Len()).Msg("listening")

	retry := s.newRetrier()
	accepted := 0

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			if !isTemporary(err) {
				return fmt.Errorf("accept: %w", err)
			}

			if s.metrics != nil {
				s.metrics.ObserveAcceptError()
			}
			delay := retry.Next()
			s.log.Warn().Err(err).Dur("retry_in", delay).Int("attempt", retry.Attempt()).Msg("accept failed")

			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return nil
			}
		}
		retry.Reset()
		accepted++

		job := s.newConnJob(conn)
		job.log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("connection established")

		if err := s.exec.Execute(job); err != nil {
			conn.Close()
			return fmt.Errorf("dispatching connection: %w", err)
		}

		if s.opts.MaxConnections > 0 && accepted >= s.opts.MaxConnections {
			s.log.Info().Int("connections", accepted).Msg("connection limit reached; shutting down")
			return nil
		}
	}
}

func (s *Server) newConnJob(conn net.Conn) *connJob {
	id := uuid.NewString()
	return &connJob{
		srv:  s,
		conn: conn,
		id:   id,
		log:  s.log.With().Str("conn_id", id).Logger(),
	}
}

// isTemporary reports whether err is an accept error worth retrying.
func isTemporary(err error) bool {
	var te interface{ Temporary() bool }
	return errors.As(err, &te) && te.Temporary()
}

package ipc

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	ferrors "tomatick/internal/foundation/errors"
	"tomatick/internal/metrics"
)

const (
	// DefaultReadTimeout bounds how long a client may take to send its command line.
	DefaultReadTimeout = 5 * time.Second
	// DefaultResponseTimeout bounds how long a handler waits for the control loop.
	DefaultResponseTimeout = 2 * time.Second
	// DefaultAcceptInterval bounds how long shutdown takes to be observed.
	DefaultAcceptInterval = 100 * time.Millisecond
	// DefaultQueueSize is the capacity of the request queue.
	DefaultQueueSize = 256
)

// Request is one forwarded command with its private reply channel.
type Request struct {
	ID      uuid.UUID
	Command Command
	reply   chan Response
}

// NewRequest wraps cmd with a fresh id and a reply channel.
func NewRequest(cmd Command) Request {
	return Request{ID: uuid.New(), Command: cmd, reply: make(chan Response, 1)}
}

// Reply delivers the response. It never blocks; only the first reply is kept.
func (request Request) Reply(resp Response) {
	select {
	case request.reply <- resp:
	default:
	}
}

// Wait blocks until the response arrives, the timeout passes or ctx is done.
func (request Request) Wait(ctx context.Context, timeout time.Duration) (Response, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case resp := <-request.reply:
		return resp, true
	case <-timer.C:
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}

// ServerConfig tunes the server. Zero values select the defaults.
type ServerConfig struct {
	ReadTimeout     time.Duration
	ResponseTimeout time.Duration
	AcceptInterval  time.Duration
	QueueSize       int
}

func (config ServerConfig) withDefaults() ServerConfig {
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = DefaultReadTimeout
	}
	if config.ResponseTimeout <= 0 {
		config.ResponseTimeout = DefaultResponseTimeout
	}
	if config.AcceptInterval <= 0 {
		config.AcceptInterval = DefaultAcceptInterval
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultQueueSize
	}
	return config
}

// Server accepts loopback connections and forwards commands to a single consumer.
type Server struct {
	listener net.Listener
	config   ServerConfig
	recorder metrics.Recorder
	requests chan Request
	running  atomic.Bool
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewServer creates a server on an already bound listener.
func NewServer(listener net.Listener, config ServerConfig, recorder metrics.Recorder) *Server {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	config = config.withDefaults()
	return &Server{
		listener: listener,
		config:   config,
		recorder: recorder,
		requests: make(chan Request, config.QueueSize),
	}
}

// Requests is drained by the control loop in arrival order.
func (server *Server) Requests() <-chan Request {
	return server.requests
}

// Addr returns the listening address.
func (server *Server) Addr() net.Addr {
	return server.listener.Addr()
}

// Start runs the accept loop in the background.
func (server *Server) Start(ctx context.Context) {
	server.running.Store(true)
	server.wg.Add(1)
	go func() {
		defer server.wg.Done()
		server.acceptLoop(ctx)
	}()
	log.Info().Str("addr", server.Addr().String()).Msg("IPC server started")
}

// Stop closes the listener and waits for in-flight handlers.
func (server *Server) Stop() {
	server.stopOnce.Do(func() {
		server.running.Store(false)
		if err := server.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Debug().Err(err).Msg("Close IPC listener")
		}
		server.wg.Wait()
		log.Info().Msg("IPC server stopped")
	})
}

type deadlineListener interface {
	SetDeadline(time.Time) error
}

func (server *Server) acceptLoop(ctx context.Context) {
	deadliner, canDeadline := server.listener.(deadlineListener)
	for server.running.Load() && ctx.Err() == nil {
		if canDeadline {
			_ = deadliner.SetDeadline(time.Now().Add(server.config.AcceptInterval))
		}
		conn, err := server.listener.Accept()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if !server.running.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Error().Err(err).Msg("IPC accept failed")
			time.Sleep(server.config.AcceptInterval)
			continue
		}

		server.wg.Add(1)
		go func() {
			defer server.wg.Done()
			server.handleConnection(ctx, conn)
		}()
	}
}

func (server *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(server.config.ReadTimeout))
	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && len(line) == 0 {
		log.Debug().Err(err).Msg("IPC read failed")
		return
	}

	resp := server.respond(ctx, line)
	server.writeResponse(conn, resp)
}

func (server *Server) respond(ctx context.Context, line []byte) Response {
	cmd, err := ParseCommand(line)
	if err != nil {
		server.recorder.IncCommand("invalid", metrics.OutcomeInvalid)
		if classified, ok := ferrors.AsClassified(err); ok {
			return NewError(classified.Message())
		}
		return NewError("Invalid command: " + err.Error())
	}

	kind := string(cmd.Kind())
	if _, ok := cmd.(PingCommand); ok {
		server.recorder.IncCommand(kind, metrics.OutcomeOk)
		return PongResponse{}
	}

	request := NewRequest(cmd)
	logger := log.With().Str("requestId", request.ID.String()).Str("command", kind).Logger()
	logger.Debug().Msg("IPC command received")

	started := time.Now()
	deadline := time.NewTimer(server.config.ResponseTimeout)
	defer deadline.Stop()

	select {
	case server.requests <- request:
		server.recorder.SetQueueDepth(len(server.requests))
	case <-deadline.C:
		logger.Warn().Msg("IPC request queue full")
		server.recorder.IncCommand(kind, metrics.OutcomeTimeout)
		return NewError("Response timeout")
	case <-ctx.Done():
		server.recorder.IncCommand(kind, metrics.OutcomeError)
		return NewError("App not responding")
	}

	resp, ok := request.Wait(ctx, server.config.ResponseTimeout-time.Since(started))
	if !ok {
		logger.Warn().Dur("waited", time.Since(started)).Msg("IPC response timeout")
		server.recorder.IncCommand(kind, metrics.OutcomeTimeout)
		return NewError("Response timeout")
	}

	server.recorder.ObserveResponseLatency(kind, time.Since(started))
	if _, isErr := resp.(ErrorResponse); isErr {
		server.recorder.IncCommand(kind, metrics.OutcomeError)
	} else {
		server.recorder.IncCommand(kind, metrics.OutcomeOk)
	}
	return resp
}

func (server *Server) writeResponse(conn net.Conn, resp Response) {
	data, err := MarshalResponse(resp)
	if err != nil {
		log.Error().Err(err).Msg("Encode IPC response")
		return
	}
	_ = conn.SetWriteDeadline(time.Now().Add(server.config.ReadTimeout))
	if _, err := conn.Write(append(data, '\n')); err != nil {
		log.Debug().Err(err).Msg("IPC write failed")
	}
}

package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"vibeshuffle/internal/logging"
	"vibeshuffle/internal/player"
	"vibeshuffle/internal/session"
)

// ServiceName is the JSON-RPC service prefix.
const ServiceName = "VibeShuffle"

// Controller runs player commands.
type Controller interface {
	Do(ctx context.Context, cmd player.Command) (player.Result, error)
}

// Server exposes player control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	conns  map[net.Conn]struct{}
	mu     sync.Mutex
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, ctrl Controller, logger *slog.Logger) (*Server, error) {
	if ctrl == nil {
		return nil, errors.New("ipc server requires a player controller")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "ipc")

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	rpcServer := rpc.NewServer()
	srv := &service{ctrl: ctrl, logger: logger, ctx: serverCtx}
	if err := rpcServer.RegisterName(ServiceName, srv); err != nil {
		cancel()
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
		conns:     make(map[net.Conn]struct{}),
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "ctl commands may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the player if needed"),
				)
				continue
			}
			s.track(conn, true)
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				defer s.track(c, false)
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server, drops open connections and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.mu.Lock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale socket may block the next player start"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually"),
		)
	}
}

func (s *Server) track(conn net.Conn, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if open {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

type service struct {
	ctrl   Controller
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) Action(req ActionRequest, resp *ActionResponse) error {
	kind, ok := player.ParseKind(req.Action)
	if !ok {
		return fmt.Errorf("unknown action %q", req.Action)
	}
	cmd := player.Command{Kind: kind, Query: req.Query, Number: req.Number, Volume: req.Volume}
	switch kind {
	case player.KindSearch:
		if req.Query == "" {
			return errors.New("search requires a query")
		}
	case player.KindSelect:
		if req.Number < 1 {
			return fmt.Errorf("select requires a number of 1 or greater, got %d", req.Number)
		}
	}
	s.logger.Debug("ipc action", logging.String(logging.FieldCommand, kind.String()))

	result, err := s.ctrl.Do(s.ctx, cmd)
	if errors.Is(err, player.ErrStopped) || errors.Is(err, context.Canceled) {
		return err
	}
	resp.Message = result.Message
	resp.State = stateFrom(result.Snapshot)
	if err != nil {
		resp.Error = err.Error()
	}
	for _, m := range result.Matches {
		resp.Matches = append(resp.Matches, Match{Index: m.Index, Name: m.Name, Score: m.Score})
	}
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	result, err := s.ctrl.Do(s.ctx, player.Command{Kind: player.KindStatus})
	if err != nil {
		return err
	}
	resp.State = stateFrom(result.Snapshot)
	return nil
}

func stateFrom(snap session.Snapshot) PlayerState {
	return PlayerState{
		Status:  snap.Status.String(),
		Index:   snap.Index,
		Track:   snap.Track.Name(),
		Path:    snap.Track.Path,
		Volume:  snap.Volume,
		Tracks:  snap.Tracks,
		Queued:  len(snap.Pending),
		History: len(snap.History),
		PID:     os.Getpid(),
	}
}

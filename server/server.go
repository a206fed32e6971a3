// server wiring and the event loop
// one goroutine runs the poller, accepts and dispatches, a fixed pool
// of workers opens files and writes responses
package server

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/kfcemployee/staticd/server/concurrent"
	"github.com/kfcemployee/staticd/server/engine"
	"github.com/kfcemployee/staticd/server/protocol"
)

// ErrPollWait reports a fatal readiness failure, the only way Run ends
var ErrPollWait = errors.New("epoll wait failed")

type Server struct {
	cfg      Config
	log      *logrus.Logger
	acceptor *engine.Acceptor
	poller   *engine.Poller
	pool     *concurrent.Pool
	nextID   atomic.Uint64
}

// New binds the listener and sets up the poller and the worker pool
func New(cfg Config, log *logrus.Logger) (*Server, error) {
	acceptor, err := engine.NewAcceptor(cfg.IP, cfg.Port, log)
	if err != nil {
		return nil, err
	}
	poller, err := engine.NewPoller(acceptor.Fd(), cfg.IdleTimeout, log)
	if err != nil {
		acceptor.Close()
		return nil, err
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = concurrent.DefaultPoolSize()
	}
	return &Server{
		cfg:      cfg,
		log:      log,
		acceptor: acceptor,
		poller:   poller,
		pool:     concurrent.NewPool(workers),
	}, nil
}

// Port is the bound port, useful when the config asked for port 0
func (s *Server) Port() int {
	return s.acceptor.Port()
}

// Run is the event loop: wait, process ready events, evict idle
func (s *Server) Run() error {
	s.pool.Start()
	defer func() {
		s.pool.Quit()
		s.pool.Wait()
	}()

	for {
		events, ok := s.poller.Wait()
		if !ok {
			return ErrPollWait
		}
		for _, ev := range events {
			fd := int(ev.Fd)
			if fd == s.acceptor.Fd() {
				// drain the kernel accept queue on this edge
				for {
					c := s.acceptor.Accept(s.poller.Now())
					if c == nil {
						break
					}
					s.poller.Add(c)
				}
			} else {
				s.processConn(s.poller.Find(fd))
			}
		}
		s.poller.RemoveAllIdle()
	}
}

// processConn drains every pipelined request visible on this readiness
// edge, required under edge triggered epoll
func (s *Server) processConn(c *engine.Conn) {
	if c == nil {
		// lost the race w eviction
		return
	}
	c.LastActive = s.poller.Now()
	for {
		req, ok := protocol.ReadRequest(c.Rd)
		if !ok {
			if c.Rd.Eof() {
				s.poller.Remove(c)
			}
			return
		}
		s.dispatch(c, req)
		if c.Rd.Eof() {
			// the task's clone keeps the fd alive until the response is sent
			s.poller.Remove(c)
			return
		}
	}
}

// dispatch pins the connection to its first worker so pipelined
// responses go out in request order
func (s *Server) dispatch(c *engine.Conn, req protocol.Request) {
	id := s.nextID.Add(1)
	if s.log != nil {
		s.log.Infof("Request %d:%d: %s", c.Sock.Fd(), id, strings.TrimRight(req.Line, "\r\n"))
	}
	t := &request{
		sock: c.Sock.Clone(),
		dir:  s.cfg.Dir,
		line: req.Line,
		bad:  req.Bad,
		id:   id,
		log:  s.log,
	}
	if c.Worker != nil {
		c.Worker.AssignTask(t)
		return
	}
	c.Worker = s.pool.SubmitTask(t)
}

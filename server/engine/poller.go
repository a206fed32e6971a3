// epoll wrapper and the connection table
// one timestamp is recorded per Wait and every idle decision in that
// tick uses it, so eviction is deterministic within a tick
package engine

import (
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/kfcemployee/staticd/server/concurrent"
)

const (
	maxEvents = 128

	// DefaultIdleTimeout evicts connections silent for this long
	DefaultIdleTimeout = 5 * time.Second
)

// Conn is one client connection tracked by the poller
// Worker is set on first dispatch and never reassigned, that keeps
// pipelined responses in request order
type Conn struct {
	Sock       Socket
	Rd         *BufReader
	Worker     *concurrent.Worker
	LastActive time.Time
}

func NewConn(s Socket, now time.Time) *Conn {
	return &Conn{Sock: s, Rd: NewBufReader(s.Clone()), LastActive: now}
}

// Poller multiplexes readiness over the listener and every connection
type Poller struct {
	epfd   int
	conns  []*Conn
	events [maxEvents]unix.EpollEvent
	now    time.Time
	idle   time.Duration
	log    *logrus.Logger
}

// NewPoller registers the listening fd, level triggered
func NewPoller(listenFd int, idle time.Duration, log *logrus.Logger) (*Poller, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, err
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(listenFd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, listenFd, &ev); err != nil {
		unix.Close(epfd)
		return nil, err
	}
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Poller{epfd: epfd, idle: idle, log: log, now: time.Now()}, nil
}

func (p *Poller) Close() {
	unix.Close(p.epfd)
}

// Wait blocks until readiness or the next eviction deadline,
// false on fatal failure
func (p *Poller) Wait() ([]unix.EpollEvent, bool) {
	for {
		n, err := unix.EpollWait(p.epfd, p.events[:], p.TimeoutMs())
		if err == unix.EINTR {
			continue
		}
		p.now = time.Now()
		if err != nil {
			return nil, false
		}
		return p.events[:n], true
	}
}

// Now is the timestamp of the current tick
func (p *Poller) Now() time.Time {
	return p.now
}

// Add registers the connection for read readiness, edge triggered,
// false when the connection is nil (acceptor drained) or epoll refused it
func (p *Poller) Add(c *Conn) bool {
	if c == nil {
		return false
	}
	ev := unix.EpollEvent{Events: unix.EPOLLIN | unix.EPOLLET, Fd: int32(c.Sock.Fd())}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, c.Sock.Fd(), &ev); err != nil {
		c.Rd.Close()
		c.Sock.Release()
		return false
	}
	if p.Find(c.Sock.Fd()) == nil {
		p.conns = append(p.conns, c)
	}
	return true
}

// Remove drops the record, clones held by worker tasks may outlive it
func (p *Poller) Remove(c *Conn) {
	for i, v := range p.conns {
		if v == c {
			unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, c.Sock.Fd(), nil)
			last := len(p.conns) - 1
			p.conns[i] = p.conns[last]
			p.conns = p.conns[:last]
			c.Rd.Close()
			c.Sock.Release()
			return
		}
	}
}

// Find is a linear scan, the table is bounded by the concurrency
// budget and every request already costs a syscall
func (p *Poller) Find(fd int) *Conn {
	for _, c := range p.conns {
		if c.Sock.Fd() == fd {
			return c
		}
	}
	return nil
}

// RemoveAllIdle evicts every connection whose last activity is older
// than the idle timeout relative to this tick's timestamp
func (p *Poller) RemoveAllIdle() {
	for i := 0; i < len(p.conns); {
		if p.now.Sub(p.conns[i].LastActive) >= p.idle {
			p.Remove(p.conns[i])
		} else {
			i++
		}
	}
}

// TimeoutMs is the ms until the earliest eviction deadline,
// -1 (block forever) when the table is empty
func (p *Poller) TimeoutMs() int {
	if len(p.conns) == 0 {
		return -1
	}
	least := p.idle
	for _, c := range p.conns {
		if rem := p.idle - p.now.Sub(c.LastActive); rem < least {
			least = rem
		}
	}
	if least < 0 {
		return 0
	}
	return int(least / time.Millisecond)
}

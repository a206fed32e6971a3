// refcounted wrapper around a kernel descriptor
// the event loop keeps the fd registered w epoll while a worker holds a
// clone to write the response, whoever lets go last closes it
package engine

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Socket is a shared handle to one descriptor
// share via Clone only, plain assignment doesn't bump the count
type Socket struct {
	fd  int
	ref *atomic.Int32
	log *logrus.Logger
}

// NewSocket takes ownership of fd, a negative fd gives an empty handle
func NewSocket(fd int, log *logrus.Logger) Socket {
	if fd < 0 {
		return Socket{fd: -1}
	}
	ref := &atomic.Int32{}
	ref.Store(1)
	return Socket{fd: fd, ref: ref, log: log}
}

// Ok reports whether the handle holds a descriptor
func (s Socket) Ok() bool {
	return s.ref != nil
}

func (s Socket) Fd() int {
	return s.fd
}

// Clone adds one more holder of the same descriptor
func (s Socket) Clone() Socket {
	if s.ref != nil {
		s.ref.Add(1)
	}
	return s
}

// Release drops one holder, the last one closes the fd exactly once
func (s Socket) Release() {
	if s.ref == nil {
		return
	}
	if s.ref.Add(-1) == 0 {
		unix.Close(s.fd)
		if s.log != nil {
			s.log.Infof("Socket %d: Closed", s.fd)
		}
	}
}

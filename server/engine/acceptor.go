// nonblocking listening socket and the accept drain
package engine

import (
	"errors"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

var errBadAddress = errors.New("bad bind address")

// Acceptor owns the nonblocking listener bound to ip:port
type Acceptor struct {
	sock Socket
	log  *logrus.Logger
}

func NewAcceptor(ip string, port int, log *logrus.Logger) (*Acceptor, error) {
	addr := net.ParseIP(ip)
	if addr = addr.To4(); addr == nil {
		return nil, errBadAddress
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)

	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], addr)
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, err
	}

	return &Acceptor{sock: NewSocket(fd, log), log: log}, nil
}

func (a *Acceptor) Fd() int {
	return a.sock.Fd()
}

// Port is the bound port, useful when the caller asked for port 0
func (a *Acceptor) Port() int {
	sa, err := unix.Getsockname(a.sock.Fd())
	if err != nil {
		return 0
	}
	if in4, ok := sa.(*unix.SockaddrInet4); ok {
		return in4.Port
	}
	return 0
}

func (a *Acceptor) Close() {
	a.sock.Release()
}

// Accept pops one pending connection, nil when the queue is drained.
// Other accept errors also end the drain, the listener is level
// triggered so the next tick retries instead of hot-spinning here.
func (a *Acceptor) Accept(now time.Time) *Conn {
	nfd, _, err := unix.Accept(a.sock.Fd())
	if err != nil {
		return nil
	}
	if err := unix.SetNonblock(nfd, true); err != nil {
		unix.Close(nfd)
		return nil
	}
	if a.log != nil {
		a.log.Infof("Socket %d: Opened", nfd)
	}
	return NewConn(NewSocket(nfd, a.log), now)
}

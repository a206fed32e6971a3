// the response side of one request, runs on a worker
// workers never read from the socket and the event loop never writes
// to it, so no per-socket lock is needed
package server

import (
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/kfcemployee/staticd/server/engine"
	"github.com/kfcemployee/staticd/server/protocol"
)

var plainText = protocol.MediaType{Mime: "text/plain"}

// request carries everything needed to produce one response
type request struct {
	sock engine.Socket
	dir  string
	line string
	bad  bool
	id   uint64
	log  *logrus.Logger
}

// Perform builds and sends one response, then lets go of the socket
func (r *request) Perform() {
	defer r.sock.Release()

	if r.bad {
		r.respond(400, plainText, []byte("Bad Request"), false)
		return
	}

	method, uri, _ := protocol.SplitRequestLine(r.line)
	if method != "GET" && method != "HEAD" {
		r.respond(501, plainText, []byte("Not Implemented"), false)
		return
	}

	path := r.dir + protocol.StripQuery(uri)
	body, err := os.ReadFile(path)
	if err != nil {
		r.respond(404, plainText, []byte("Not Found"), false)
		return
	}
	r.respond(200, protocol.LookupMediaType(path), body, method == "HEAD")
}

// respond assembles the response and pushes it out in one piece,
// HEAD keeps the real Content-length but drops the body
func (r *request) respond(code int, mt protocol.MediaType, body []byte, headOnly bool) {
	contentLen := len(body)
	if headOnly {
		body = nil
	}
	res := protocol.BuildResponse(code, mt.Mime, contentLen, body)
	if r.log != nil {
		r.log.Infof("Response %d:%d: HTTP/1.1 %s", r.sock.Fd(), r.id, protocol.StatusText(code))
	}
	sendAll(r.sock.Fd(), res)
}

// sendAll pushes the whole buffer, sigpipe suppressed
// the fd is nonblocking so would-block is retried until the kernel
// buffer drains, any other error abandons the write and the connection
// expires via the idle timeout
func sendAll(fd int, data []byte) {
	for len(data) > 0 {
		n, err := unix.SendmsgN(fd, data, nil, nil, unix.MSG_NOSIGNAL)
		if err == unix.EINTR || err == unix.EAGAIN {
			continue
		}
		if err != nil {
			return
		}
		data = data[n:]
	}
}

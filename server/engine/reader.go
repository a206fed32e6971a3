package engine

import "golang.org/x/sys/unix"

const readerBufSize = 1024

// BufReader reads lines from a nonblocking socket
// eof is sticky only after the peer really closed (read returned 0),
// would-block just ends the current call so the event loop can retry
// on the next readiness edge
type BufReader struct {
	s   Socket
	buf [readerBufSize]byte
	cur int
	rem int
	eof bool
}

// NewBufReader takes over one holder of s
func NewBufReader(s Socket) *BufReader {
	return &BufReader{s: s}
}

// Close releases the reader's hold on the socket
func (r *BufReader) Close() {
	r.s.Release()
}

func (r *BufReader) Eof() bool {
	return r.eof
}

// ReadChar returns one byte, ok=false means nothing to read right now
func (r *BufReader) ReadChar() (byte, bool) {
	if r.eof {
		return 0, false
	}
	if r.rem == 0 {
		n, err := unix.Read(r.s.Fd(), r.buf[:])
		if n == 0 && err == nil {
			r.eof = true
			return 0, false
		}
		if n <= 0 {
			return 0, false
		}
		r.cur = 0
		r.rem = n
	}
	c := r.buf[r.cur]
	r.cur++
	r.rem--
	return c, true
}

// ReadLine accumulates bytes through '\n' inclusive, possibly empty
func (r *BufReader) ReadLine() string {
	var line []byte
	for {
		c, ok := r.ReadChar()
		if !ok {
			break
		}
		line = append(line, c)
		if c == '\n' {
			break
		}
	}
	return string(line)
}

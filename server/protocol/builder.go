// response assembly, fixed header set in fixed order
package protocol

// lookup table for status lines
// flat list instead of map bc codes is fixed
var statusTable = [502][]byte{
	200: []byte("200 OK"),
	400: []byte("400 Bad Request"),
	404: []byte("404 Not Found"),
	501: []byte("501 Not Implemented"),
}

// for fast access
var (
	proto   = []byte("HTTP/1.1 ")
	crlf    = []byte("\r\n")
	fixed   = []byte("Server: HttpServer\r\nConnection: keep-alive\r\nKeep-Alive: timeout=5\r\n")
	ctype   = []byte("Content-type: ")
	nosniff = []byte("X-Content-Type-Options: nosniff\r\n")
	clen    = []byte("Content-length: ")
)

// StatusText is the status line tail for code, e.g. "200 OK"
func StatusText(code int) string {
	if code < 0 || code >= len(statusTable) || statusTable[code] == nil {
		code = 400
	}
	return string(statusTable[code])
}

// IntToBuf copies n into buf w zero alloc
// n is uint bc / 10 and % 10 compile to division by invariant integers
func IntToBuf(buf []byte, n uint) int {
	if n == 0 {
		buf[0] = '0'
		return 1
	}

	var tmp [20]byte
	i := len(tmp)
	for n > 0 {
		i--
		tmp[i] = byte(n%10) + '0'
		n /= 10
	}
	return copy(buf, tmp[i:])
}

// BuildResponse assembles the whole response into one buffer so the
// worker can push it out w a single send. contentLen is the advertised
// Content-length, body may be empty for HEAD.
func BuildResponse(code int, mime string, contentLen int, body []byte) []byte {
	if code < 0 || code >= len(statusTable) || statusTable[code] == nil {
		code = 400
	}
	st := statusTable[code]

	var num [20]byte
	n := IntToBuf(num[:], uint(contentLen))

	out := make([]byte, 0, len(proto)+len(st)+len(fixed)+len(ctype)+len(mime)+
		len(nosniff)+len(clen)+n+6+len(body))
	out = append(out, proto...)
	out = append(out, st...)
	out = append(out, crlf...)
	out = append(out, fixed...)
	out = append(out, ctype...)
	out = append(out, mime...)
	out = append(out, crlf...)
	out = append(out, nosniff...)
	out = append(out, clen...)
	out = append(out, num[:n]...)
	out = append(out, crlf...)
	out = append(out, crlf...)
	out = append(out, body...)
	return out
}

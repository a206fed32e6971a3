package protocol

import (
	"bytes"
	"testing"
)

// scriptReader plays back a fixed sequence of lines, then would-block
type scriptReader struct {
	lines []string
}

func (s *scriptReader) ReadLine() string {
	if len(s.lines) == 0 {
		return ""
	}
	l := s.lines[0]
	s.lines = s.lines[1:]
	return l
}

func TestReadRequest(t *testing.T) {
	tests := []struct {
		name      string
		lines     []string
		wantOk    bool
		wantBad   bool
		wantLine  string
		leftLines int
	}{
		{
			name:     "valid get request",
			lines:    []string{"GET /index.html HTTP/1.1\r\n", "Host: localhost\r\n", "User-Agent: test\r\n", "\r\n"},
			wantOk:   true,
			wantLine: "GET /index.html HTTP/1.1\r\n",
		},
		{
			name:   "nothing to read",
			lines:  nil,
			wantOk: false,
		},
		{
			name:     "peer closed mid headers",
			lines:    []string{"GET / HTTP/1.1\r\n", "Host: loc"},
			wantOk:   true,
			wantBad:  true,
			wantLine: "GET / HTTP/1.1\r\n",
		},
		{
			name:      "stops at the message boundary",
			lines:     []string{"GET /1 HTTP/1.1\r\n", "\r\n", "GET /2 HTTP/1.1\r\n", "\r\n"},
			wantOk:    true,
			wantLine:  "GET /1 HTTP/1.1\r\n",
			leftLines: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rd := &scriptReader{lines: tt.lines}
			req, ok := ReadRequest(rd)
			if ok != tt.wantOk {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOk)
			}
			if !ok {
				return
			}
			if req.Bad != tt.wantBad {
				t.Errorf("bad = %v, want %v", req.Bad, tt.wantBad)
			}
			if req.Line != tt.wantLine {
				t.Errorf("line = %q, want %q", req.Line, tt.wantLine)
			}
			if len(rd.lines) != tt.leftLines {
				t.Errorf("%d lines left unconsumed, want %d", len(rd.lines), tt.leftLines)
			}
		})
	}
}

func TestSplitRequestLine(t *testing.T) {
	tests := []struct {
		line                 string
		method, uri, version string
	}{
		{"GET /index.html HTTP/1.1\r\n", "GET", "/index.html", "HTTP/1.1"},
		{"HEAD / HTTP/1.1\r\n", "HEAD", "/", "HTTP/1.1"},
		{"POST\r\n", "POST", "", ""},
		{"\r\n", "", "", ""},
	}
	for _, tt := range tests {
		m, u, v := SplitRequestLine(tt.line)
		if m != tt.method || u != tt.uri || v != tt.version {
			t.Errorf("SplitRequestLine(%q) = %q %q %q", tt.line, m, u, v)
		}
	}
}

func TestStripQuery(t *testing.T) {
	if got := StripQuery("/x.html?y=1"); got != "/x.html" {
		t.Errorf("got %q", got)
	}
	if got := StripQuery("/x.html"); got != "/x.html" {
		t.Errorf("got %q", got)
	}
	if got := StripQuery("/?a=b?c=d"); got != "/" {
		t.Errorf("got %q", got)
	}
}

func TestLookupMediaType(t *testing.T) {
	tests := []struct {
		path   string
		mime   string
		binary bool
	}{
		{"/index.html", "text/html", false},
		{"/site.css", "text/css", false},
		{"/app.js", "text/javascript", false},
		{"/logo.png", "image/png", true},
		{"/anim.gif", "image/gif", true},
		{"/photo.jpg", "image/jpeg", true},
		{"/icon.svg", "image/svg+xml", true},
		{"/font.eot", "application/vnd.ms-fontobject", true},
		{"/font.ttf", "font/ttf", true},
		{"/font.woff", "font/woff", true},
		// first substring match wins, .woff shadows .woff2
		{"/font.woff2", "font/woff", true},
		{"/README", "text/plain", false},
		{"/data.bin", "text/plain", false},
	}
	for _, tt := range tests {
		mt := LookupMediaType(tt.path)
		if mt.Mime != tt.mime || mt.Binary != tt.binary {
			t.Errorf("LookupMediaType(%q) = %+v, want %s binary=%v", tt.path, mt, tt.mime, tt.binary)
		}
	}
}

func TestBuildResponse(t *testing.T) {
	want := "HTTP/1.1 200 OK\r\n" +
		"Server: HttpServer\r\n" +
		"Connection: keep-alive\r\n" +
		"Keep-Alive: timeout=5\r\n" +
		"Content-type: text/html\r\n" +
		"X-Content-Type-Options: nosniff\r\n" +
		"Content-length: 11\r\n" +
		"\r\n" +
		"<h1>hi</h1>"
	got := BuildResponse(200, "text/html", 11, []byte("<h1>hi</h1>"))
	if !bytes.Equal(got, []byte(want)) {
		t.Fatalf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestBuildResponseHeadParity(t *testing.T) {
	full := BuildResponse(200, "text/html", 11, []byte("<h1>hi</h1>"))
	head := BuildResponse(200, "text/html", 11, nil)

	// same headers including Content-length, no body
	if !bytes.HasPrefix(full, head) {
		t.Fatal("head response is not a prefix of the full one")
	}
	if !bytes.HasSuffix(head, []byte("\r\n\r\n")) {
		t.Fatal("head response must end at the header boundary")
	}
}

func TestBuildResponseErrors(t *testing.T) {
	tests := []struct {
		code int
		body string
	}{
		{400, "Bad Request"},
		{404, "Not Found"},
		{501, "Not Implemented"},
	}
	for _, tt := range tests {
		got := string(BuildResponse(tt.code, "text/plain", len(tt.body), []byte(tt.body)))
		wantStatus := "HTTP/1.1 " + StatusText(tt.code) + "\r\n"
		if got[:len(wantStatus)] != wantStatus {
			t.Errorf("code %d: wrong status line in %q", tt.code, got)
		}
		if got[len(got)-len(tt.body):] != tt.body {
			t.Errorf("code %d: wrong body in %q", tt.code, got)
		}
	}
}

func TestStatusTextUnknownCode(t *testing.T) {
	if got := StatusText(999); got != "400 Bad Request" {
		t.Fatalf("got %q", got)
	}
}

func TestIntToBuf(t *testing.T) {
	tests := []struct {
		n    uint
		want string
	}{
		{0, "0"},
		{7, "7"},
		{11, "11"},
		{123456, "123456"},
	}
	var buf [20]byte
	for _, tt := range tests {
		n := IntToBuf(buf[:], tt.n)
		if got := string(buf[:n]); got != tt.want {
			t.Errorf("IntToBuf(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func BenchmarkBuildResponse(b *testing.B) {
	body := []byte("<h1>benchmark body</h1>")

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		_ = BuildResponse(200, "text/html", len(body), body)
	}
}

func BenchmarkReadRequest(b *testing.B) {
	lines := []string{"GET /index.html HTTP/1.1\r\n", "Host: localhost\r\n", "\r\n"}
	rd := &scriptReader{}

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		rd.lines = lines
		if _, ok := ReadRequest(rd); !ok {
			b.Fatal("expected a request")
		}
	}
}

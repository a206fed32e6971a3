package protocol

import "strings"

// MediaType is the detected content type for a path
type MediaType struct {
	Mime   string
	Binary bool
}

// flat list instead of a map bc order matters, first substring match
// wins (so .woff shadows .woff2, same as the lookup it mirrors)
var mediaTypes = []struct {
	ext string
	mt  MediaType
}{
	{".html", MediaType{"text/html", false}},
	{".css", MediaType{"text/css", false}},
	{".js", MediaType{"text/javascript", false}},
	{".png", MediaType{"image/png", true}},
	{".gif", MediaType{"image/gif", true}},
	{".jpg", MediaType{"image/jpeg", true}},
	{".svg", MediaType{"image/svg+xml", true}},
	{".eot", MediaType{"application/vnd.ms-fontobject", true}},
	{".ttf", MediaType{"font/ttf", true}},
	{".woff", MediaType{"font/woff", true}},
	{".woff2", MediaType{"font/woff2", true}},
}

// LookupMediaType matches by substring anywhere in the path,
// anything unknown is plain text
func LookupMediaType(path string) MediaType {
	for _, e := range mediaTypes {
		if strings.Contains(path, e.ext) {
			return e.mt
		}
	}
	return MediaType{"text/plain", false}
}

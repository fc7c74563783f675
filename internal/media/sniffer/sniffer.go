// Package sniffer identifies avatar images by their leading bytes instead of trusting the
// declared content type.
package sniffer

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
)

type MediaType string

const (
	TypeJPEG MediaType = "jpeg"
	TypePNG  MediaType = "png"
	TypeGIF  MediaType = "gif"
	TypeWEBP MediaType = "webp"
	TypeSVG  MediaType = "svg"
)

// HeadSize is how many leading bytes detection looks at.
const HeadSize = 512

var ErrUnknownType = errors.New("unknown media type")

type Result struct {
	Type MediaType
	MIME string
}

// Accepts reports whether a client-declared type is consistent with the detected one.
// Browsers send application/octet-stream when they do not know better, so that is accepted.
func (r Result) Accepts(declared string) bool {
	switch declared {
	case "", "application/octet-stream", r.MIME:
		return true
	}
	return r.Type == TypeJPEG && declared == "image/jpg"
}

type signature struct {
	result Result
	match  func(head []byte) bool
}

var signatures = []signature{
	{Result{TypeJPEG, "image/jpeg"}, prefix(0xff, 0xd8, 0xff)},
	{Result{TypePNG, "image/png"}, prefix(0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n')},
	{Result{TypeGIF, "image/gif"}, func(head []byte) bool {
		return bytes.HasPrefix(head, []byte("GIF87a")) || bytes.HasPrefix(head, []byte("GIF89a"))
	}},
	{Result{TypeWEBP, "image/webp"}, func(head []byte) bool {
		return len(head) >= 12 && bytes.HasPrefix(head, []byte("RIFF")) && string(head[8:12]) == "WEBP"
	}},
	{Result{TypeSVG, "image/svg+xml"}, looksLikeSVG},
}

func prefix(magic ...byte) func([]byte) bool {
	return func(head []byte) bool { return bytes.HasPrefix(head, magic) }
}

// looksLikeSVG accepts a bare <svg root or an XML prolog followed by one.
func looksLikeSVG(head []byte) bool {
	text := strings.ToLower(strings.TrimSpace(string(head)))
	switch {
	case strings.HasPrefix(text, "<svg"):
		return true
	case strings.HasPrefix(text, "<?xml"):
		return strings.Contains(text, "<svg")
	}
	return false
}

// Detect reads up to HeadSize bytes from r and returns them with the detection result so
// callers can stitch the stream back together.
func Detect(r io.Reader) (Result, []byte, error) {
	buf := make([]byte, HeadSize)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, nil, err
	}
	result, err := DetectHead(buf[:n])
	return result, buf[:n], err
}

func DetectHead(head []byte) (Result, error) {
	if len(head) > HeadSize {
		head = head[:HeadSize]
	}
	for _, sig := range signatures {
		if len(head) > 0 && sig.match(head) {
			return sig.result, nil
		}
	}
	return Result{}, ErrUnknownType
}

// MimeTypeFromHTTP returns the declared media type of a multipart part, without parameters.
func MimeTypeFromHTTP(header http.Header) string {
	contentType, _, _ := strings.Cut(header.Get("Content-Type"), ";")
	return strings.ToLower(strings.TrimSpace(contentType))
}

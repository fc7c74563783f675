package sniffer

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectHead(t *testing.T) {
	cases := []struct {
		name string
		head []byte
		want MediaType
		mime string
	}{
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0}, TypePNG, "image/png"},
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0}, TypeJPEG, "image/jpeg"},
		{"gif", []byte("GIF89a...."), TypeGIF, "image/gif"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), TypeWEBP, "image/webp"},
		{"svg", []byte("  <svg xmlns=\"http://www.w3.org/2000/svg\"></svg>"), TypeSVG, "image/svg+xml"},
		{"xml svg", []byte("<?xml version=\"1.0\"?>\n<svg></svg>"), TypeSVG, "image/svg+xml"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := DetectHead(tc.head)
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Type)
			assert.Equal(t, tc.mime, result.MIME)
		})
	}
}

func TestDetectHeadRejectsUnknown(t *testing.T) {
	for _, head := range [][]byte{nil, []byte("%PDF-1.7"), []byte("<?xml version=\"1.0\"?><note/>")} {
		_, err := DetectHead(head)
		assert.ErrorIs(t, err, ErrUnknownType)
	}
}

func TestDetectReturnsHead(t *testing.T) {
	data := append([]byte("GIF87a"), bytes.Repeat([]byte{1}, 1000)...)

	result, head, err := Detect(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, TypeGIF, result.Type)
	assert.Len(t, head, HeadSize)
}

func TestMimeTypeFromHTTP(t *testing.T) {
	h := http.Header{}
	assert.Empty(t, MimeTypeFromHTTP(h))

	h.Set("Content-Type", "Image/PNG; charset=binary")
	assert.Equal(t, "image/png", MimeTypeFromHTTP(h))
}

func TestResultAccepts(t *testing.T) {
	png := Result{Type: TypePNG, MIME: "image/png"}
	assert.True(t, png.Accepts(""))
	assert.True(t, png.Accepts("application/octet-stream"))
	assert.True(t, png.Accepts("image/png"))
	assert.False(t, png.Accepts("image/gif"))

	jpeg := Result{Type: TypeJPEG, MIME: "image/jpeg"}
	assert.True(t, jpeg.Accepts("image/jpg"))
}

func TestDetectHeadTruncatesLongInput(t *testing.T) {
	data := append(bytes.Repeat([]byte(" "), HeadSize), []byte("<svg></svg>")...)
	_, err := DetectHead(data)
	assert.ErrorIs(t, err, ErrUnknownType)
}

package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"unsritalk/internal/media/sniffer"
	"unsritalk/internal/media/svg"
)

var (
	ErrEmptyFile       = errors.New("empty file")
	ErrFileTooLarge    = errors.New("file too large")
	ErrContentMismatch = errors.New("declared content type does not match file")
)

// AvatarService turns an uploaded image into the data URI stored as an avatar reference.
type AvatarService struct {
	maxBytes int64
}

func NewAvatarService(maxBytes int64) *AvatarService {
	return &AvatarService{maxBytes: maxBytes}
}

// DataURI validates the upload by content sniffing and returns it base64 encoded.
// SVG documents are sanitized first. declared may be empty.
func (s *AvatarService) DataURI(file io.Reader, declared string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(data)) > s.maxBytes {
		return "", ErrFileTooLarge
	}

	result, err := sniffer.DetectHead(data)
	if err != nil {
		return "", fmt.Errorf("detect type: %w", err)
	}
	if !result.Accepts(declared) {
		return "", fmt.Errorf("%w: declared %s, actual %s", ErrContentMismatch, declared, result.MIME)
	}

	if result.Type == sniffer.TypeSVG {
		clean, err := svg.Sanitize(data)
		if err != nil {
			return "", fmt.Errorf("sanitize svg: %w", err)
		}
		data = clean
	}

	return "data:" + result.MIME + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Package events publishes background tasks onto the redis stream the worker consumes.
// Every entry is a signed envelope so the worker only runs tasks the portal issued.
package events

import (
	"errors"
	"fmt"
	"time"

	"unsritalk/internal/models"
	"unsritalk/internal/security"
)

const (
	TaskBackup       = "backup"
	TaskDigest       = "digest"
	TaskAnnouncement = "announcement"
)

// Stream entry fields.
const (
	FieldType      = "type"
	FieldPayload   = "payload"
	FieldDate      = "date"
	FieldNonce     = "nonce"
	FieldSignature = "signature"
)

var ErrMalformedEnvelope = errors.New("malformed task envelope")

type BackupPayload struct {
	Namespace string          `json:"namespace"`
	TakenAt   time.Time       `json:"takenAt"`
	Snapshot  models.Snapshot `json:"snapshot"`
}

type DigestPayload struct {
	Namespace     string    `json:"namespace"`
	TakenAt       time.Time `json:"takenAt"`
	Users         int       `json:"users"`
	Chats         int       `json:"chats"`
	Messages      int       `json:"messages"`
	Announcements int       `json:"announcements"`
	Degraded      bool      `json:"degraded"`
}

type AnnouncementPayload struct {
	Announcement models.Announcement `json:"announcement"`
	Audience     int                 `json:"audience"`
}

type Envelope struct {
	Type      string
	Payload   []byte
	Date      string
	Nonce     string
	Signature string
}

func DecodeEnvelope(values map[string]interface{}) (Envelope, error) {
	var env Envelope
	fields := []struct {
		name string
		dst  *string
	}{
		{FieldType, &env.Type},
		{FieldDate, &env.Date},
		{FieldNonce, &env.Nonce},
		{FieldSignature, &env.Signature},
	}
	for _, f := range fields {
		v, ok := values[f.name].(string)
		if !ok || v == "" {
			return Envelope{}, fmt.Errorf("%w: missing %s", ErrMalformedEnvelope, f.name)
		}
		*f.dst = v
	}

	payload, ok := values[FieldPayload].(string)
	if !ok {
		return Envelope{}, fmt.Errorf("%w: missing %s", ErrMalformedEnvelope, FieldPayload)
	}
	env.Payload = []byte(payload)
	return env, nil
}

func (e Envelope) Verify(secret string) bool {
	return security.ValidateTaskSignature(secret, e.Signature, e.Type, e.Payload, e.Date, e.Nonce)
}

// IssuedAt parses the envelope date.
func (e Envelope) IssuedAt() (time.Time, error) {
	return time.Parse(time.RFC3339, e.Date)
}

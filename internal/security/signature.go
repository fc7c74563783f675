package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

func hmacTag(secret, data string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func ComputeBodyHash(body []byte) string {
	sum := sha256.Sum256(body)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// ComputeTaskSignature signs a queued task envelope. The worker recomputes it before
// running the task.
func ComputeTaskSignature(secret, taskType, bodyHash, date, nonce string) string {
	return hmacTag(secret, strings.Join([]string{strings.ToLower(taskType), bodyHash, date, nonce}, "\n"))
}

func ValidateTaskSignature(secret, signature, taskType string, body []byte, date, nonce string) bool {
	expected := ComputeTaskSignature(secret, taskType, ComputeBodyHash(body), date, nonce)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// SignResource derives a URL-safe tag for an object key so backup names cannot be guessed.
func SignResource(secret string, parts ...string) string {
	return hmacTag(secret, strings.Join(parts, ":"))
}

func VerifyResource(secret, signature string, parts ...string) bool {
	return hmac.Equal([]byte(signature), []byte(SignResource(secret, parts...)))
}

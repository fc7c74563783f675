package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const encodedPrefix = "$argon2id$"

type Argon2Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

var defaultParams = Argon2Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 2,
	KeyLen:  32,
	SaltLen: 16,
}

func EncodeCredential(password string) (string, error) {
	return EncodeCredentialWithParams(password, defaultParams)
}

func EncodeCredentialWithParams(password string, params Argon2Params) (string, error) {
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, params.KeyLen)

	return fmt.Sprintf("%sv=19$t=%d,m=%d,p=%d$%s$%s",
		encodedPrefix,
		params.Time, params.Memory, params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// IsEncodedCredential reports whether stored holds an argon2id encoding rather than plain text.
func IsEncodedCredential(stored string) bool {
	return strings.HasPrefix(stored, encodedPrefix)
}

// MatchCredential compares a login attempt with the stored credential. Plain stored values
// require exact, case-sensitive equality.
func MatchCredential(input, stored string) bool {
	if stored == "" {
		return false
	}
	if !IsEncodedCredential(stored) {
		return subtle.ConstantTimeCompare([]byte(input), []byte(stored)) == 1
	}
	ok, err := verifyEncoded(input, stored)
	return err == nil && ok
}

func verifyEncoded(password, encoded string) (bool, error) {
	// "", "argon2id", "v=19", "t=..,m=..,p=..", salt, hash
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false, fmt.Errorf("parse hash: unexpected format")
	}

	var (
		time    uint32
		memory  uint32
		threads uint8
	)
	if _, err := fmt.Sscanf(parts[3], "t=%d,m=%d,p=%d", &time, &memory, &threads); err != nil {
		return false, fmt.Errorf("parse hash params: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(hash)))

	return subtle.ConstantTimeCompare(hash, computed) == 1, nil
}

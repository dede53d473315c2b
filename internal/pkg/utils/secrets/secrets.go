package secrets

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	Time      = 2
	MemoryMB  = 16
	Threads   = 1
	KeyLen    = 32
	SaltBytes = 16
)

var (
	ErrEmptyPassword     = errors.New("empty password")
	ErrUnsupportedFormat = errors.New("unsupported hash format")
	ErrMalformedHash     = errors.New("malformed password hash")
)

// HashPassword returns an argon2id hash in PHC string form. The pepper is a
// server-side secret appended to the password and never stored.
func HashPassword(password, pepper string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	salt := make([]byte, SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password+pepper), salt, Time, MemoryMB*1024, Threads, KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, MemoryMB*1024, Time, Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword reports whether password matches the stored hash. A mismatch
// is (false, nil); only unreadable hashes produce an error.
func VerifyPassword(password, pepper, phc string) (bool, error) {
	p, err := parsePHC(phc)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password+pepper), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(got, p.key) == 1, nil
}

// NeedsRehash is true when the hash was produced with weaker parameters than the current ones.
func NeedsRehash(phc string) bool {
	p, err := parsePHC(phc)
	if err != nil {
		return true
	}
	return p.memory < MemoryMB*1024 || p.time < Time || len(p.key) < KeyLen
}

type phcParams struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

func parsePHC(phc string) (*phcParams, error) {
	if !strings.HasPrefix(phc, "$argon2id$") {
		return nil, ErrUnsupportedFormat
	}
	parts := strings.Split(phc, "$")
	if len(parts) != 6 {
		return nil, ErrMalformedHash
	}

	var m, t, p uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, fmt.Errorf("%w: salt: %v", ErrMalformedHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, fmt.Errorf("%w: key: %v", ErrMalformedHash, err)
	}
	return &phcParams{memory: m, time: t, threads: uint8(p), salt: salt, key: key}, nil
}

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argonAlgorithm  = "argon2id"
	argonSaltLength = 16
	argonKeyLength  = 32
)

// Hasher hashes and verifies passwords using argon2id. The salt is embedded
// in the PHC-formatted output, so hashing the same password twice never
// yields the same string.
type Hasher struct {
	memory      uint32
	time        uint32
	parallelism uint8
}

// NewHasher creates a password hasher with the given work factors
func NewHasher(memory, time uint32, parallelism uint8) *Hasher {
	return &Hasher{
		memory:      memory,
		time:        time,
		parallelism: parallelism,
	}
}

// Hash derives an argon2id hash of the password and encodes it in PHC format
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(password), salt, h.time, h.memory, h.parallelism, argonKeyLength)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argonAlgorithm,
		argon2.Version,
		h.memory,
		h.time,
		h.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches the encoded hash. It fails closed:
// a malformed hash yields false, never an error. Comparison is constant-time
// over the derived keys.
func (h *Hasher) Verify(encodedHash, password string) bool {
	parsed, err := parseHash(encodedHash)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), parsed.salt, parsed.time, parsed.memory, parsed.parallelism, uint32(len(parsed.key)))
	return subtle.ConstantTimeCompare(computed, parsed.key) == 1
}

type parsedHash struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func parseHash(encodedHash string) (*parsedHash, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != argonAlgorithm {
		return nil, errors.New("invalid hash format")
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || version != argon2.Version {
		return nil, errors.New("unsupported argon2 version")
	}

	var p parsedHash
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.parallelism); err != nil {
		return nil, errors.New("invalid hash parameters")
	}
	if p.memory == 0 || p.time == 0 || p.parallelism == 0 {
		return nil, errors.New("invalid hash parameters")
	}

	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(p.salt) == 0 {
		return nil, errors.New("invalid salt encoding")
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(p.key) == 0 {
		return nil, errors.New("invalid key encoding")
	}

	return &p, nil
}

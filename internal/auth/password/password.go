package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
	argonSaltLen        = 16
)

const prefix = "$argon2id$"

// Hash encodes a secret as a salted Argon2id string.
func Hash(secret string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey([]byte(secret), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	saltB64 := base64.RawStdEncoding.EncodeToString(salt)
	hashB64 := base64.RawStdEncoding.EncodeToString(hash)
	return fmt.Sprintf("%sv=19$m=%d,t=%d,p=%d$%s$%s", prefix, argonMemory, argonTime, argonThreads, saltB64, hashB64), nil
}

// IsEncoded reports whether value looks like a Hash output rather than a
// plaintext secret written by older installs.
func IsEncoded(value string) bool {
	return strings.HasPrefix(value, prefix)
}

// Verify checks secret against an encoded Argon2id hash.
func Verify(secret, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return false
	}

	memory, timeCost, threads, ok := parseParams(parts[3])
	if !ok {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	check := argon2.IDKey([]byte(secret), salt, timeCost, memory, threads, uint32(len(hash)))
	return subtle.ConstantTimeCompare(hash, check) == 1
}

// parseParams reads the "m=..,t=..,p=.." segment.
func parseParams(segment string) (memory, timeCost uint32, threads uint8, ok bool) {
	values := map[string]uint64{}
	for _, kv := range strings.Split(segment, ",") {
		key, raw, found := strings.Cut(kv, "=")
		if !found {
			return 0, 0, 0, false
		}
		bits := 32
		if key == "p" {
			bits = 8
		}
		n, err := strconv.ParseUint(raw, 10, bits)
		if err != nil || n == 0 {
			return 0, 0, 0, false
		}
		values[key] = n
	}
	m, hasM := values["m"]
	t, hasT := values["t"]
	p, hasP := values["p"]
	if len(values) != 3 || !hasM || !hasT || !hasP {
		return 0, 0, 0, false
	}
	return uint32(m), uint32(t), uint8(p), true
}

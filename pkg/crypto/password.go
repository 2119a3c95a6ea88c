package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aistudy/authkit/core"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHandler is re-exported so callers need not import core.
type PasswordHandler = core.PasswordHandler

// Ensure both handlers implement PasswordHandler
var (
	_ PasswordHandler = (*Bcrypt)(nil)
	_ PasswordHandler = (*Argon2)(nil)
)

var (
	ErrInvalidHashFormat    = errors.New("invalid hash format")
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
)

// Bcrypt is the default handler.
type Bcrypt struct {
	Cost int
}

func NewBcrypt(cost ...int) *Bcrypt {
	c := core.DefaultBcryptCost
	if len(cost) > 0 && cost[0] > 0 {
		c = cost[0]
	}
	return &Bcrypt{Cost: c}
}

func (b *Bcrypt) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), b.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports a mismatch as (false, nil). Only malformed hashes are
// errors.
func (b *Bcrypt) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrInvalidHashFormat, err)
	}
}

// bcrypt only reads 72 bytes; longer inputs are reduced with SHA-256 so
// every byte still counts.
func bcryptInput(password string) []byte {
	if len(password) <= 72 {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	out := make([]byte, base64.RawStdEncoding.EncodedLen(len(sum)))
	base64.RawStdEncoding.Encode(out, sum[:])
	return out
}

// Argon2Params are the argon2id costs written into every hash. Verify reads
// them back from the hash, so changing them never breaks old records.
type Argon2Params struct {
	MemoryKiB uint32
	Time      uint32
	Threads   uint8
	SaltLen   uint32
	KeyLen    uint32
}

// Upper bounds accepted when decoding a stored hash.
const (
	maxArgon2MemoryKiB = 1 << 20 // 1 GiB
	maxArgon2Time      = 16
	minArgon2KeyLen    = 16
	maxArgon2KeyLen    = 128
)

// DefaultArgon2Params follow the OWASP password storage cheat sheet.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{MemoryKiB: 64 * 1024, Time: 3, Threads: 2, SaltLen: 16, KeyLen: 32}
}

// Argon2 is the argon2id handler, an alternative to Bcrypt.
type Argon2 struct {
	Params Argon2Params
}

// NewArgon2 uses the default parameters, with the memory cost overridden
// when memoryKiB is given.
func NewArgon2(memoryKiB ...uint32) *Argon2 {
	p := DefaultArgon2Params()
	if len(memoryKiB) > 0 && memoryKiB[0] > 0 {
		p.MemoryKiB = memoryKiB[0]
	}
	return &Argon2{Params: p}
}

// Hash encodes as $argon2id$v=19$m=<kib>,t=<time>,p=<threads>$<salt>$<key>.
func (a *Argon2) Hash(password string) (string, error) {
	salt := make([]byte, a.Params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, a.Params.Time, a.Params.MemoryKiB, a.Params.Threads, a.Params.KeyLen)

	b64 := base64.RawStdEncoding
	return strings.Join([]string{
		"",
		"argon2id",
		"v=" + strconv.Itoa(argon2.Version),
		fmt.Sprintf("m=%d,t=%d,p=%d", a.Params.MemoryKiB, a.Params.Time, a.Params.Threads),
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	}, "$"), nil
}

func (a *Argon2) Verify(password, encoded string) (bool, error) {
	p, salt, key, err := parseArgon2(encoded)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password), salt, p.Time, p.MemoryKiB, p.Threads, p.KeyLen)
	return subtle.ConstantTimeCompare(key, got) == 1, nil
}

func parseArgon2(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" {
		return p, nil, nil, ErrInvalidHashFormat
	}
	if fields[1] != "argon2id" || fields[2] != "v="+strconv.Itoa(argon2.Version) {
		return p, nil, nil, ErrUnsupportedAlgorithm
	}

	for _, kv := range strings.Split(fields[3], ",") {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return p, nil, nil, ErrInvalidHashFormat
		}
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return p, nil, nil, fmt.Errorf("%w: parameter %s", ErrInvalidHashFormat, name)
		}
		switch name {
		case "m":
			p.MemoryKiB = uint32(n)
		case "t":
			p.Time = uint32(n)
		case "p":
			if n > 255 {
				return p, nil, nil, fmt.Errorf("%w: parameter p", ErrInvalidHashFormat)
			}
			p.Threads = uint8(n)
		default:
			return p, nil, nil, fmt.Errorf("%w: unknown parameter %s", ErrInvalidHashFormat, name)
		}
	}
	if p.MemoryKiB == 0 || p.MemoryKiB > maxArgon2MemoryKiB || p.Time == 0 || p.Time > maxArgon2Time || p.Threads == 0 {
		return p, nil, nil, fmt.Errorf("%w: parameters out of range", ErrInvalidHashFormat)
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, fmt.Errorf("%w: salt", ErrInvalidHashFormat)
	}
	key, err := base64.RawStdEncoding.DecodeString(fields[5])
	if err != nil || len(key) < minArgon2KeyLen || len(key) > maxArgon2KeyLen {
		return p, nil, nil, fmt.Errorf("%w: key", ErrInvalidHashFormat)
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}

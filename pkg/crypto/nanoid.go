package crypto

import (
	"crypto/rand"
	"errors"
	"math"
)

const (
	urlAlphabet   = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"
	tokenIDLength = 22 // 22 * 6 = 132 bits, more than a uuid
)

var (
	ErrAlphabetSize  = errors.New("alphabet must contain between 2 and 255 characters")
	ErrAlphabetASCII = errors.New("alphabet must contain only ASCII characters")
)

// NanoIDGenerator produces URL-safe random ids. Used for the jti claim.
type NanoIDGenerator struct {
	alphabet string
	mask     byte
	step     int
	size     int
}

// NewNanoID returns a generator over the URL-safe alphabet, or over the
// given one.
func NewNanoID(alphabet ...string) (*NanoIDGenerator, error) {
	a := urlAlphabet
	if len(alphabet) > 0 && alphabet[0] != "" {
		a = alphabet[0]
	}
	if len(a) < 2 || len(a) > 255 {
		return nil, ErrAlphabetSize
	}
	for i := 0; i < len(a); i++ {
		if a[i] > 127 {
			return nil, ErrAlphabetASCII
		}
	}

	// smallest all-ones mask covering every alphabet index
	mask := 1
	for mask < len(a)-1 {
		mask = mask<<1 | 1
	}

	return &NanoIDGenerator{
		alphabet: a,
		mask:     byte(mask),
		step:     int(math.Ceil(1.6 * float64(mask*tokenIDLength) / float64(len(a)))),
		size:     tokenIDLength,
	}, nil
}

// Generate rejects random bytes falling outside the alphabet after masking,
// which keeps the distribution uniform.
func (n *NanoIDGenerator) Generate() (string, error) {
	id := make([]byte, 0, n.size)
	buf := make([]byte, n.step)

	for len(id) < n.size {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			idx := int(b & n.mask)
			if idx >= len(n.alphabet) {
				continue
			}
			id = append(id, n.alphabet[idx])
			if len(id) == n.size {
				break
			}
		}
	}

	return string(id), nil
}

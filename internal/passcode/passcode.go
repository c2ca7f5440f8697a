// Package passcode derives the per-event codes that unlock the staff event
// control panel.
package passcode

import (
	"crypto/subtle"
	"encoding/base32"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/crypto/blake2b"
)

const (
	legacySalt = "YOUTHOPIA2025"
	legacyPad  = "9X7P2M5N"
	codeLength = 10

	ModeLegacy = "legacy"
	ModeKeyed  = "keyed"
)

// Legacy reproduces the published event codes: a 32-bit rolling hash
// (h = h*31 + unit over the UTF-16 units of id+salt), base 36, upper case,
// padded and cut to at most ten characters.
func Legacy(eventID string) string {
	var h int32
	for _, unit := range utf16.Encode([]rune(eventID + legacySalt)) {
		h = h*31 + int32(unit)
	}
	n := int64(h)
	if n < 0 {
		n = -n
	}
	code := strings.ToUpper(strconv.FormatInt(n, 36)) + legacyPad
	if len(code) > codeLength {
		code = code[:codeLength]
	}
	return code
}

var keyedEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Keyed derives a code from a BLAKE2b-256 MAC of eventID under key. Unlike
// Legacy it cannot be recomputed without the key.
func Keyed(key []byte, eventID string) (string, error) {
	mac, err := blake2b.New256(key)
	if err != nil {
		return "", err
	}
	mac.Write([]byte(eventID))
	return keyedEncoding.EncodeToString(mac.Sum(nil))[:codeLength], nil
}

// Generator produces event codes in one of the two modes.
type Generator struct {
	mode string
	key  []byte
}

// NewGenerator returns a legacy generator unless mode is keyed and a key is
// configured.
func NewGenerator(mode string, key []byte) *Generator {
	if mode != ModeKeyed || len(key) == 0 {
		return &Generator{mode: ModeLegacy}
	}
	if len(key) > blake2b.Size {
		key = key[:blake2b.Size]
	}
	return &Generator{mode: ModeKeyed, key: key}
}

func (g *Generator) Mode() string {
	return g.mode
}

func (g *Generator) Code(eventID string) string {
	if g.mode == ModeKeyed {
		code, err := Keyed(g.key, eventID)
		if err == nil {
			return code
		}
	}
	return Legacy(eventID)
}

// Verify accepts the event's code or, as a fallback, the raw event id.
func (g *Generator) Verify(eventID, input string) bool {
	input = strings.TrimSpace(input)
	if eventID == "" || input == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(strings.ToUpper(input)), []byte(g.Code(eventID))) == 1 {
		return true
	}
	return input == eventID
}

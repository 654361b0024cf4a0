// Package tokens generates and normalizes the opaque hex credentials used to
// address tables, masters and characters.
package tokens

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

const (
	// SharedTokenBytes is the size of the player-facing table token (32 hex chars).
	SharedTokenBytes = 16
	// MasterTokenBytes is the size of the secret master token (48 hex chars).
	MasterTokenBytes = 24
	// CharacterTokenBytes is the size of a character token (32 hex chars).
	CharacterTokenBytes = 16

	DefaultChunkSize = 4
)

var validFormat = regexp.MustCompile(`^[a-f0-9]{16,64}$`)

// Generate returns a cryptographically random token, hex-encoded, with
// 2*byteLength characters.
func Generate(byteLength int) (string, error) {
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Format renders a token for display: uppercase, grouped by chunkSize and
// joined with hyphens (A1B2-C3D4). A chunkSize <= 0 uses DefaultChunkSize.
func Format(token string, chunkSize int) string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var chunks []string
	for i := 0; i < len(token); i += chunkSize {
		end := min(i+chunkSize, len(token))
		chunks = append(chunks, token[i:end])
	}
	return strings.ToUpper(strings.Join(chunks, "-"))
}

// Clean strips hyphens and lowercases. It is idempotent.
func Clean(formatted string) string {
	return strings.ToLower(strings.ReplaceAll(formatted, "-", ""))
}

// IsValidFormat reports whether the cleaned token is 16-64 hex characters.
// It never fails: callers decide between "malformed" and "not found".
func IsValidFormat(token string) bool {
	return validFormat.MatchString(Clean(token))
}

// TablePair holds the two independently drawn credentials of a table.
type TablePair struct {
	Shared string
	Master string
}

func NewTableTokens() (TablePair, error) {
	shared, err := Generate(SharedTokenBytes)
	if err != nil {
		return TablePair{}, err
	}
	master, err := Generate(MasterTokenBytes)
	if err != nil {
		return TablePair{}, err
	}
	return TablePair{Shared: shared, Master: master}, nil
}

func NewCharacterToken() (string, error) {
	return Generate(CharacterTokenBytes)
}

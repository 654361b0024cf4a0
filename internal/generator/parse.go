package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrUnparseable means the provider text was not JSON after fence removal.
	ErrUnparseable = errors.New("generator output is not valid JSON")
	// ErrInvalidShape means the JSON lacked a field or had the wrong type.
	ErrInvalidShape = errors.New("generator output has an invalid shape")
)

// GeneratedNPC is the validated provider record. Numeric fields are passed
// through exactly as returned.
type GeneratedNPC struct {
	Name           string  `json:"name"`
	Origin         string  `json:"origin"`
	Nex            float64 `json:"nex"`
	Agi            float64 `json:"agi"`
	For            float64 `json:"for"`
	Int            float64 `json:"int"`
	Pre            float64 `json:"pre"`
	Vig            float64 `json:"vig"`
	HighlightSkill string  `json:"highlight_skill"`
	DarkSecret     string  `json:"dark_secret"`
}

var fenceRe = regexp.MustCompile("```(?:json)?")

// stripFences removes ``` and ```json markers and surrounding whitespace.
func stripFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}

// ParseNPC turns raw provider text into a GeneratedNPC.
func ParseNPC(raw string) (*GeneratedNPC, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(stripFences(raw)), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	npc := &GeneratedNPC{}
	name, ok := fields["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name must be a non-empty string", ErrInvalidShape)
	}
	npc.Name = name

	numbers := []struct {
		key string
		dst *float64
	}{
		{"nex", &npc.Nex},
		{"agi", &npc.Agi},
		{"for", &npc.For},
		{"int", &npc.Int},
		{"pre", &npc.Pre},
		{"vig", &npc.Vig},
	}
	for _, n := range numbers {
		v, ok := fields[n.key].(float64)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidShape, n.key)
		}
		*n.dst = v
	}

	npc.Origin, _ = fields["origin"].(string)
	npc.HighlightSkill, _ = fields["highlight_skill"].(string)
	npc.DarkSecret, _ = fields["dark_secret"].(string)
	return npc, nil
}

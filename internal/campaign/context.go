package campaign

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/veritasos/ordem-backend/internal/apperr"
	"github.com/veritasos/ordem-backend/internal/tokens"
)

const (
	contextNoteLimit  = 5
	contextExcerptLen = 200

	noContextPlaceholder = "Nenhum contexto adicional da campanha foi registrado."
)

// BuildContext renders the campaign block injected into generation prompts:
// table name, description and the most recent shared notes. It does not
// touch the store.
func BuildContext(table Table, notes []Note) string {
	var b strings.Builder

	if name := trimmed(table.Name); name != "" {
		fmt.Fprintf(&b, "Mesa: %s\n", name)
	}
	if desc := trimmed(table.Description); desc != "" {
		fmt.Fprintf(&b, "Descrição da campanha: %s\n", desc)
	}

	shared := recentShared(notes)
	if len(shared) > 0 {
		b.WriteString("Notas compartilhadas recentes:\n")
		for i, n := range shared {
			fmt.Fprintf(&b, "%d. %s: %s\n", i+1, n.Title, excerpt(n.Content, contextExcerptLen))
		}
	}

	if b.Len() == 0 {
		return noContextPlaceholder
	}
	return strings.TrimRight(b.String(), "\n")
}

func recentShared(notes []Note) []Note {
	shared := make([]Note, 0, len(notes))
	for _, n := range notes {
		if n.Type == NoteShared {
			shared = append(shared, n)
		}
	}
	sort.SliceStable(shared, func(i, j int) bool {
		if !shared[i].CreatedAt.Equal(shared[j].CreatedAt) {
			return shared[i].CreatedAt.After(shared[j].CreatedAt)
		}
		return shared[i].ID > shared[j].ID
	})
	if len(shared) > contextNoteLimit {
		shared = shared[:contextNoteLimit]
	}
	return shared
}

// excerpt truncates s to n characters, appending "..." when it cut.
func excerpt(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// ContextLoader reads the campaign context of a table from the store.
type ContextLoader struct{}

// CampaignContext builds the prompt context for the table addressed by a raw
// (possibly formatted) shared token.
func (ContextLoader) CampaignContext(ctx context.Context, rawTableToken string) (string, error) {
	if !tokens.IsValidFormat(rawTableToken) {
		return "", errTokenInvalid
	}
	table, err := FindTableByToken(ctx, tokens.Clean(rawTableToken))
	if errors.Is(err, ErrTableNotFound) {
		return "", errTableMissing
	}
	if err != nil {
		return "", apperr.Internal("Failed to load table", err)
	}

	notes, err := RecentSharedNotes(ctx, table.ID, contextNoteLimit)
	if err != nil {
		return "", apperr.Internal("Failed to load notes", err)
	}
	return BuildContext(*table, notes), nil
}

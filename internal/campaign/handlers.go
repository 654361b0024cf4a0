package campaign

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/veritasos/ordem-backend/internal/apperr"
	"github.com/veritasos/ordem-backend/internal/httputil"
	"github.com/veritasos/ordem-backend/internal/tokens"
)

var (
	errTokenRequired = apperr.Validation("table_token is required")
	errTokenInvalid  = apperr.Validation("Invalid table token")
	errTableMissing  = apperr.NotFound("Table not found. Check the table token.")
)

// resolveTable validates a raw token, cleans it and loads the table through
// find. Errors come back already classified.
func resolveTable(ctx context.Context, raw string, find func(context.Context, string) (*Table, error)) (*Table, error) {
	if raw == "" {
		return nil, errTokenRequired
	}
	if !tokens.IsValidFormat(raw) {
		return nil, errTokenInvalid
	}
	table, err := find(ctx, tokens.Clean(raw))
	if errors.Is(err, ErrTableNotFound) {
		return nil, errTableMissing
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load table", err)
	}
	return table, nil
}

func storageError(msg string, err error) error {
	if errors.Is(err, ErrTokenExhausted) {
		return apperr.Internal("Could not generate a unique token. Try again.", err)
	}
	if apperr.KindOf(err) != apperr.KindInternal {
		return err
	}
	return apperr.Internal(msg, err)
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

type tableView struct {
	*Table
	TableTokenFormatted  string `json:"table_token_formatted"`
	MasterTokenFormatted string `json:"master_token_formatted"`
}

func viewTable(t *Table) tableView {
	return tableView{
		Table:                t,
		TableTokenFormatted:  tokens.Format(t.Token, tokens.DefaultChunkSize),
		MasterTokenFormatted: tokens.Format(t.MasterToken, tokens.DefaultChunkSize),
	}
}

// CreateTableHandler answers POST /tables.
func CreateTableHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name          *string       `json:"name"`
		Description   *string       `json:"description"`
		AttributeMode AttributeMode `json:"attribute_mode"`
		MasterUserID  *uint         `json:"master_user_id"`
	}
	if err := httputil.DecodeJSON(w, r, &input); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if input.AttributeMode != "" && !input.AttributeMode.Valid() {
		httputil.WriteError(w, apperr.Validation("attribute_mode must be ordem_paranormal or mundano_livre"))
		return
	}

	table, err := CreateTable(r.Context(), CreateTableInput{
		Name:          optional(input.Name),
		Description:   optional(input.Description),
		AttributeMode: input.AttributeMode,
		MasterUserID:  input.MasterUserID,
	})
	if err != nil {
		httputil.WriteError(w, storageError("Failed to create table", err))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"table":   viewTable(table),
		"message": "Table created",
	})
}

// GetTableHandler answers GET /tables?master_token=.
func GetTableHandler(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("master_token")
	if raw == "" {
		httputil.WriteError(w, apperr.Validation("master_token is required"))
		return
	}
	if !tokens.IsValidFormat(raw) {
		httputil.WriteError(w, apperr.Validation("Invalid master token"))
		return
	}

	table, err := FindTableByMasterToken(r.Context(), tokens.Clean(raw))
	if errors.Is(err, ErrTableNotFound) {
		httputil.WriteError(w, apperr.NotFound("Table not found. The token may be wrong or the table was removed."))
		return
	}
	if err != nil {
		httputil.WriteError(w, apperr.Internal("Failed to load table", err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"table":   viewTable(table),
	})
}

// CreateCharacterHandler answers POST /characters.
func CreateCharacterHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TableToken string  `json:"table_token"`
		UserID     *uint   `json:"user_id"`
		Name       string  `json:"name"`
		Origin     *string `json:"origin"`
		Attributes
	}
	if err := httputil.DecodeJSON(w, r, &input); err != nil {
		httputil.WriteError(w, err)
		return
	}
	name := strings.TrimSpace(input.Name)
	if input.TableToken == "" || name == "" {
		httputil.WriteError(w, apperr.Validation("table_token and name are required"))
		return
	}

	table, err := resolveTable(r.Context(), input.TableToken, FindTableByToken)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	char, err := CreateCharacter(r.Context(), table, CreateCharacterInput{
		UserID:     input.UserID,
		Name:       name,
		Origin:     optional(input.Origin),
		Attributes: input.Attributes,
	})
	if err != nil {
		httputil.WriteError(w, storageError("Failed to create character", err))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"character": map[string]any{
			"id":              char.ID,
			"token":           char.Token,
			"token_formatted": tokens.Format(char.Token, tokens.DefaultChunkSize),
			"table_token":     char.TableToken,
			"user_id":         char.UserID,
			"name":            char.Name,
		},
		"message": "Character created",
	})
}

// GetCharacterHandler answers GET /characters?character_token=&table_token=.
func GetCharacterHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	charToken, tableToken := q.Get("character_token"), q.Get("table_token")
	if charToken == "" || tableToken == "" {
		httputil.WriteError(w, apperr.Validation("character_token and table_token are required"))
		return
	}
	if !tokens.IsValidFormat(charToken) || !tokens.IsValidFormat(tableToken) {
		httputil.WriteError(w, apperr.Validation("Invalid tokens"))
		return
	}

	char, err := FindCharacter(r.Context(), tokens.Clean(charToken), tokens.Clean(tableToken))
	if errors.Is(err, ErrCharacterNotFound) {
		httputil.WriteError(w, apperr.NotFound("Character not found. Check the tokens provided."))
		return
	}
	if err != nil {
		httputil.WriteError(w, apperr.Internal("Failed to load character", err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"character": char,
	})
}

type npcInput struct {
	TableToken     string   `json:"table_token"`
	Name           string   `json:"name"`
	Origin         string   `json:"origin"`
	Nex            *float64 `json:"nex"`
	Agi            *float64 `json:"agi"`
	For            *float64 `json:"for"`
	Int            *float64 `json:"int"`
	Pre            *float64 `json:"pre"`
	Vig            *float64 `json:"vig"`
	HighlightSkill string   `json:"highlight_skill"`
	DarkSecret     string   `json:"dark_secret"`
}

func (in npcInput) attributes() (Attributes, error) {
	fields := []struct {
		name string
		v    *float64
	}{
		{"nex", in.Nex}, {"agi", in.Agi}, {"for", in.For},
		{"int", in.Int}, {"pre", in.Pre}, {"vig", in.Vig},
	}
	for _, f := range fields {
		if f.v == nil {
			return Attributes{}, apperr.Validation("Attribute " + f.name + " must be a number")
		}
		// Columns are integers; refuse anything that would not round-trip.
		if v := *f.v; v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return Attributes{}, apperr.Validation("Attribute " + f.name + " must be a whole number")
		}
	}
	return Attributes{
		Nex: int(*in.Nex), Agi: int(*in.Agi), For: int(*in.For),
		Int: int(*in.Int), Pre: int(*in.Pre), Vig: int(*in.Vig),
	}, nil
}

// CreateNPCHandler answers POST /npcs, archiving a (possibly generated) NPC.
func CreateNPCHandler(w http.ResponseWriter, r *http.Request) {
	var input npcInput
	if err := httputil.DecodeJSON(w, r, &input); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Origin) == "" {
		httputil.WriteError(w, apperr.Validation("name and origin are required"))
		return
	}
	attrs, err := input.attributes()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	table, err := resolveTable(r.Context(), input.TableToken, FindTableByToken)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	npc := &NPC{
		Name:           strings.TrimSpace(input.Name),
		Origin:         strings.TrimSpace(input.Origin),
		Attributes:     attrs,
		HighlightSkill: input.HighlightSkill,
		DarkSecret:     input.DarkSecret,
	}
	if err := CreateNPC(r.Context(), table, npc); err != nil {
		httputil.WriteError(w, apperr.Internal("Failed to archive NPC", err))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"id":      npc.ID,
		"npc":     npc,
		"message": "NPC archived",
	})
}

// ListNPCsHandler answers GET /npcs?table_token=.
func ListNPCsHandler(w http.ResponseWriter, r *http.Request) {
	table, err := resolveTable(r.Context(), r.URL.Query().Get("table_token"), FindTableByToken)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	npcs, err := ListNPCs(r.Context(), table.ID)
	if err != nil {
		httputil.WriteError(w, apperr.Internal("Failed to list NPCs", err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"npcs":    npcs,
		"count":   len(npcs),
	})
}

// CreateNoteHandler answers POST /notes.
func CreateNoteHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		TableToken     string   `json:"table_token"`
		CharacterToken *string  `json:"character_token"`
		Type           NoteType `json:"type"`
		Title          string   `json:"title"`
		Content        string   `json:"content"`
	}
	if err := httputil.DecodeJSON(w, r, &input); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !input.Type.Valid() {
		httputil.WriteError(w, apperr.Validation("type must be individual or shared"))
		return
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Content) == "" {
		httputil.WriteError(w, apperr.Validation("title and content are required"))
		return
	}

	table, err := resolveTable(r.Context(), input.TableToken, FindTableByToken)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	note := &Note{
		Type:    input.Type,
		Title:   strings.TrimSpace(input.Title),
		Content: input.Content,
	}
	if raw := optional(input.CharacterToken); raw != nil {
		if !tokens.IsValidFormat(*raw) {
			httputil.WriteError(w, apperr.Validation("Invalid character token"))
			return
		}
		char, err := FindCharacter(r.Context(), tokens.Clean(*raw), table.Token)
		if errors.Is(err, ErrCharacterNotFound) {
			httputil.WriteError(w, apperr.NotFound("Character not found in this table"))
			return
		}
		if err != nil {
			httputil.WriteError(w, apperr.Internal("Failed to load character", err))
			return
		}
		note.CharacterToken = &char.Token
	}

	if err := CreateNote(r.Context(), table, note); err != nil {
		httputil.WriteError(w, apperr.Internal("Failed to create note", err))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"note":    note,
	})
}

// ListNotesHandler answers GET /notes?table_token=&type=.
func ListNotesHandler(w http.ResponseWriter, r *http.Request) {
	noteType := NoteType(r.URL.Query().Get("type"))
	if noteType != "" && !noteType.Valid() {
		httputil.WriteError(w, apperr.Validation("type must be individual or shared"))
		return
	}

	table, err := resolveTable(r.Context(), r.URL.Query().Get("table_token"), FindTableByToken)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	notes, err := ListNotes(r.Context(), table.ID, noteType)
	if err != nil {
		httputil.WriteError(w, apperr.Internal("Failed to list notes", err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"notes":   notes,
		"count":   len(notes),
	})
}

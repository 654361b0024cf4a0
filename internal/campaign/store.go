package campaign

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"gorm.io/gorm/clause"

	"github.com/veritasos/ordem-backend/internal/db"
	"github.com/veritasos/ordem-backend/internal/tokens"
)

// maxTokenAttempts bounds the collision-retry loop of every token-creating
// insert.
const maxTokenAttempts = 10

var (
	ErrTableNotFound     = errors.New("table not found")
	ErrCharacterNotFound = errors.New("character not found")
	ErrTokenExhausted    = errors.New("could not generate a unique token")
)

// Token sources. Tests replace them to force collisions.
var (
	newTableTokens    = tokens.NewTableTokens
	newCharacterToken = tokens.NewCharacterToken
)

// withUniqueToken runs insert until it stops failing with a unique-constraint
// conflict, at most maxTokenAttempts times.
func withUniqueToken(what string, insert func() error) error {
	for attempt := 1; attempt <= maxTokenAttempts; attempt++ {
		err := insert()
		if err == nil {
			return nil
		}
		if !db.IsUniqueViolation(err) {
			return err
		}
		log.Printf("[campaign] %s token collision (attempt %d/%d)", what, attempt, maxTokenAttempts)
	}
	return fmt.Errorf("%s: %w", what, ErrTokenExhausted)
}

type CreateTableInput struct {
	Name          *string
	Description   *string
	AttributeMode AttributeMode
	MasterUserID  *uint
}

func CreateTable(ctx context.Context, in CreateTableInput) (*Table, error) {
	mode := in.AttributeMode
	if mode == "" {
		mode = ModeFixedPool
	}

	var table *Table
	err := withUniqueToken("table", func() error {
		pair, err := newTableTokens()
		if err != nil {
			return err
		}
		table = &Table{
			Token:         pair.Shared,
			MasterToken:   pair.Master,
			Name:          in.Name,
			Description:   in.Description,
			AttributeMode: mode,
			MasterUserID:  in.MasterUserID,
		}
		return db.DB.WithContext(ctx).Create(table).Error
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

func findTable(ctx context.Context, column, token string) (*Table, error) {
	var table Table
	err := db.DB.WithContext(ctx).Where(column+" = ?", token).First(&table).Error
	if db.IsNotFound(err) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// FindTableByToken looks up a table by its cleaned shared token.
func FindTableByToken(ctx context.Context, token string) (*Table, error) {
	return findTable(ctx, "token", token)
}

// FindTableByMasterToken looks up a table by its cleaned master token.
func FindTableByMasterToken(ctx context.Context, masterToken string) (*Table, error) {
	return findTable(ctx, "master_token", masterToken)
}

type CreateCharacterInput struct {
	UserID *uint
	Name   string
	Origin *string
	Attributes
}

func CreateCharacter(ctx context.Context, table *Table, in CreateCharacterInput) (*Character, error) {
	var char *Character
	err := withUniqueToken("character", func() error {
		token, err := newCharacterToken()
		if err != nil {
			return err
		}
		char = &Character{
			Token:      token,
			TableID:    table.ID,
			TableToken: table.Token,
			UserID:     in.UserID,
			Name:       in.Name,
			Origin:     in.Origin,
			Attributes: in.Attributes,
		}
		return db.DB.WithContext(ctx).Omit(clause.Associations).Create(char).Error
	})
	if err != nil {
		return nil, err
	}
	return char, nil
}

// FindCharacter returns the character only when both tokens match.
func FindCharacter(ctx context.Context, characterToken, tableToken string) (*Character, error) {
	var char Character
	err := db.DB.WithContext(ctx).
		Where("token = ? AND table_token = ?", characterToken, tableToken).
		First(&char).Error
	if db.IsNotFound(err) {
		return nil, ErrCharacterNotFound
	}
	if err != nil {
		return nil, err
	}
	return &char, nil
}

// TablesForUser lists the tables the user has a character in, newest table
// first.
func TablesForUser(ctx context.Context, userID uint) ([]Membership, error) {
	var chars []Character
	err := db.DB.WithContext(ctx).
		Preload("Table").
		Where("user_id = ?", userID).
		Order("id").
		Find(&chars).Error
	if err != nil {
		return nil, err
	}

	out := make([]Membership, 0, len(chars))
	created := make(map[uint]int64, len(chars))
	for _, c := range chars {
		if c.Table == nil {
			continue
		}
		created[c.Table.ID] = c.Table.CreatedAt.UnixNano()
		out = append(out, Membership{
			TableID:        c.Table.ID,
			TableToken:     c.Table.Token,
			TableName:      c.Table.Name,
			Description:    c.Table.Description,
			CharacterToken: c.Token,
			CharacterName:  c.Name,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := created[out[i].TableID], created[out[j].TableID]
		if ci != cj {
			return ci > cj
		}
		return out[i].TableID > out[j].TableID
	})
	return out, nil
}

func CreateNPC(ctx context.Context, table *Table, npc *NPC) error {
	npc.ID = 0
	npc.TableID = table.ID
	npc.TableToken = table.Token
	return db.DB.WithContext(ctx).Omit(clause.Associations).Create(npc).Error
}

// ListNPCs returns a table's NPCs, most recent first.
func ListNPCs(ctx context.Context, tableID uint) ([]NPC, error) {
	var npcs []NPC
	err := db.DB.WithContext(ctx).
		Where("table_id = ?", tableID).
		Order("created_at DESC").Order("id DESC").
		Find(&npcs).Error
	return npcs, err
}

func CreateNote(ctx context.Context, table *Table, note *Note) error {
	note.ID = 0
	note.TableID = table.ID
	note.TableToken = table.Token
	return db.DB.WithContext(ctx).Omit(clause.Associations).Create(note).Error
}

// ListNotes returns a table's notes, most recent first, optionally filtered
// by type.
func ListNotes(ctx context.Context, tableID uint, noteType NoteType) ([]Note, error) {
	q := db.DB.WithContext(ctx).Where("table_id = ?", tableID)
	if noteType != "" {
		q = q.Where("type = ?", noteType)
	}
	var notes []Note
	err := q.Order("created_at DESC").Order("id DESC").Find(&notes).Error
	return notes, err
}

// RecentSharedNotes returns up to limit shared notes, newest first, ties
// broken by insertion order.
func RecentSharedNotes(ctx context.Context, tableID uint, limit int) ([]Note, error) {
	var notes []Note
	err := db.DB.WithContext(ctx).
		Where("table_id = ? AND type = ?", tableID, NoteShared).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&notes).Error
	return notes, err
}

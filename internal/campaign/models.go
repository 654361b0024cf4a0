package campaign

import "time"

type AttributeMode string

const (
	// ModeFixedPool is the standard Ordem Paranormal point-buy.
	ModeFixedPool AttributeMode = "ordem_paranormal"
	// ModeFreeForm lets the master set attributes freely.
	ModeFreeForm AttributeMode = "mundano_livre"
)

func (m AttributeMode) Valid() bool {
	return m == ModeFixedPool || m == ModeFreeForm
}

type NoteType string

const (
	NoteIndividual NoteType = "individual"
	NoteShared     NoteType = "shared"
)

func (t NoteType) Valid() bool {
	return t == NoteIndividual || t == NoteShared
}

// Attributes is the fixed six-attribute schema shared by characters and NPCs.
type Attributes struct {
	Nex int `gorm:"column:nex;not null;default:0" json:"nex"`
	Agi int `gorm:"column:agi;not null;default:0" json:"agi"`
	For int `gorm:"column:for;not null;default:0" json:"for"`
	Int int `gorm:"column:int;not null;default:0" json:"int"`
	Pre int `gorm:"column:pre;not null;default:0" json:"pre"`
	Vig int `gorm:"column:vig;not null;default:0" json:"vig"`
}

type Table struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	Token         string        `gorm:"uniqueIndex;size:64;not null" json:"table_token"`
	MasterToken   string        `gorm:"uniqueIndex;size:64;not null" json:"master_token"`
	Name          *string       `json:"name"`
	Description   *string       `json:"description"`
	AttributeMode AttributeMode `gorm:"size:32;not null;default:'ordem_paranormal'" json:"attribute_mode"`
	MasterUserID  *uint         `gorm:"index" json:"master_user_id"`
	CreatedAt     time.Time     `json:"created_at"`
}

type Character struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	Token      string  `gorm:"uniqueIndex;size:64;not null" json:"token"`
	TableID    uint    `gorm:"not null;index" json:"-"`
	Table      *Table  `gorm:"foreignKey:TableID;constraint:OnDelete:CASCADE" json:"-"`
	TableToken string  `gorm:"size:64;not null;index" json:"table_token"`
	UserID     *uint   `gorm:"index" json:"user_id"`
	Name       string  `gorm:"not null" json:"name"`
	Origin     *string `json:"origin"`
	Attributes `gorm:"embedded"`
	PV         int       `gorm:"column:pv;not null;default:0" json:"pv"`
	PE         int       `gorm:"column:pe;not null;default:0" json:"pe"`
	San        int       `gorm:"column:san;not null;default:0" json:"san"`
	Inventory  *string   `json:"inventory"`
	Rituals    *string   `json:"rituals"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type NPC struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	TableID        uint   `gorm:"not null;index" json:"-"`
	Table          *Table `gorm:"foreignKey:TableID;constraint:OnDelete:CASCADE" json:"-"`
	TableToken     string `gorm:"size:64;not null;index" json:"table_token"`
	Name           string `gorm:"not null" json:"name"`
	Origin         string `json:"origin"`
	Attributes     `gorm:"embedded"`
	HighlightSkill string    `json:"highlight_skill"`
	DarkSecret     string    `json:"dark_secret"`
	CreatedAt      time.Time `json:"created_at"`
}

type Note struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TableID        uint      `gorm:"not null;index" json:"-"`
	Table          *Table    `gorm:"foreignKey:TableID;constraint:OnDelete:CASCADE" json:"-"`
	TableToken     string    `gorm:"size:64;not null;index" json:"table_token"`
	CharacterToken *string   `gorm:"size:64" json:"character_token"`
	Type           NoteType  `gorm:"size:16;not null" json:"type"`
	Title          string    `gorm:"not null" json:"title"`
	Content        string    `gorm:"not null" json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Membership is one (table, character) pair a user plays in.
type Membership struct {
	TableID        uint    `json:"table_id"`
	TableToken     string  `json:"table_token"`
	TableName      *string `json:"table_name"`
	Description    *string `json:"description"`
	CharacterToken string  `json:"character_token"`
	CharacterName  string  `json:"character_name"`
}

// Models lists every campaign model in migration order.
func Models() []any {
	return []any{&Table{}, &Character{}, &NPC{}, &Note{}}
}

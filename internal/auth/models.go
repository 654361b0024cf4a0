package auth

import "time"

// Username length is bounded by CreateUser to fit the column.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsMaster     bool      `gorm:"not null;default:false" json:"is_master"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a server-side bearer session. Tokens carry no claims; the row is
// the only source of truth and expires at ExpiresAt.
type Session struct {
	Token     string    `gorm:"primaryKey;size:64" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func Models() []any {
	return []any{&User{}, &Session{}}
}

package auth

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/veritasos/ordem-backend/internal/apperr"
	"github.com/veritasos/ordem-backend/internal/campaign"
	"github.com/veritasos/ordem-backend/internal/db"
	"github.com/veritasos/ordem-backend/internal/httputil"
	"github.com/veritasos/ordem-backend/internal/middleware"
	"github.com/veritasos/ordem-backend/internal/utils"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 64 // matches the users.username column size
	minPasswordLen = 6
)

// NormalizeUsername trims and NFC-normalizes a username so accented names
// typed on different keyboards resolve to the same account.
func NormalizeUsername(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// CreateUser validates and stores a new user.
func CreateUser(ctx context.Context, username, password string, isMaster bool) (*User, error) {
	username = NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, apperr.Validation("username and password are required")
	}
	if utf8.RuneCountInString(username) < minUsernameLen {
		return nil, apperr.Validation("username must have at least 3 characters")
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return nil, apperr.Validation("username must have at most 64 characters")
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return nil, apperr.Validation("password must have at least 6 characters")
	}

	var count int64
	if err := db.DB.WithContext(ctx).Model(&User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, apperr.Internal("Failed to check username", err)
	}
	if count > 0 {
		return nil, apperr.Conflict("Username already exists", nil)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, apperr.Internal("Server error hashing password", err)
	}

	user := &User{Username: username, PasswordHash: hash, IsMaster: isMaster}
	if err := db.DB.WithContext(ctx).Create(user).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.Conflict("Username already exists", err)
		}
		return nil, apperr.Internal("Failed to create user", err)
	}
	return user, nil
}

// Default master credentials created by EnsureMaster callers.
const (
	DefaultMasterUsername = "mestre"
	DefaultMasterPassword = "mestre123"
)

// EnsureMaster creates a master user unless the username is already taken.
// created reports whether a new row was written.
func EnsureMaster(ctx context.Context, username, password string) (user *User, created bool, err error) {
	user, err = CreateUser(ctx, username, password, true)
	if apperr.Is(err, apperr.KindConflict) {
		var existing User
		if err := db.DB.WithContext(ctx).First(&existing, "username = ?", NormalizeUsername(username)).Error; err != nil {
			return nil, false, err
		}
		return &existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// RegisterHandler answers POST /users.
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
		IsMaster bool   `json:"is_master"`
	}
	if err := httputil.DecodeJSON(w, r, &input); err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := CreateUser(r.Context(), input.Username, input.Password, input.IsMaster)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"user":    user,
		"message": "User created",
	})
}

// GetUserHandler answers GET /users?username=.
func GetUserHandler(w http.ResponseWriter, r *http.Request) {
	username := NormalizeUsername(r.URL.Query().Get("username"))
	if username == "" {
		httputil.WriteError(w, apperr.Validation("username is required"))
		return
	}

	var user User
	err := db.DB.WithContext(r.Context()).First(&user, "username = ?", username).Error
	if db.IsNotFound(err) {
		httputil.WriteError(w, apperr.NotFound("User not found"))
		return
	}
	if err != nil {
		httputil.WriteError(w, apperr.Internal("Failed to load user", err))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

type loginResponse struct {
	Success      bool                  `json:"success"`
	User         *User                 `json:"user"`
	SessionToken string                `json:"session_token"`
	ExpiresAt    time.Time             `json:"expires_at"`
	Tables       []campaign.Membership `json:"tables"`
}

// LoginHandler answers POST /auth/login. On success it issues a new session
// and lists the tables the user plays in.
func LoginHandler(sessionTTL time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := httputil.DecodeJSON(w, r, &input); err != nil {
			httputil.WriteError(w, err)
			return
		}
		username := NormalizeUsername(input.Username)
		if username == "" || input.Password == "" {
			httputil.WriteError(w, apperr.Validation("username and password are required"))
			return
		}

		var user User
		if err := db.DB.WithContext(r.Context()).First(&user, "username = ?", username).Error; err != nil {
			if !db.IsNotFound(err) {
				log.Printf("[auth] loading user %q: %v", username, err)
			}
			httputil.WriteError(w, apperr.Unauthorized("Invalid credentials"))
			return
		}
		if !VerifyPassword(input.Password, user.PasswordHash) {
			httputil.WriteError(w, apperr.Unauthorized("Invalid credentials"))
			return
		}

		token, err := NewSessionToken()
		if err != nil {
			httputil.WriteError(w, apperr.Internal("Failed to issue session", err))
			return
		}
		now := time.Now()
		session := Session{Token: token, UserID: user.ID, ExpiresAt: now.Add(sessionTTL)}

		// Drop this user's stale sessions before adding the new one.
		if err := db.DB.WithContext(r.Context()).Where("user_id = ? AND expires_at < ?", user.ID, now).Delete(&Session{}).Error; err != nil {
			log.Printf("[auth] pruning sessions for user %d: %v", user.ID, err)
		}
		if err := db.DB.WithContext(r.Context()).Omit("User").Create(&session).Error; err != nil {
			httputil.WriteError(w, apperr.Internal("Failed to store session", err))
			return
		}

		tables, err := campaign.TablesForUser(r.Context(), user.ID)
		if err != nil {
			log.Printf("[auth] listing tables for user %d: %v", user.ID, err)
			tables = []campaign.Membership{}
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookieName,
			Value:    token,
			Path:     "/",
			Expires:  session.ExpiresAt,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		httputil.WriteJSON(w, http.StatusOK, loginResponse{
			Success:      true,
			User:         &user,
			SessionToken: token,
			ExpiresAt:    session.ExpiresAt,
			Tables:       tables,
		})
	}
}

// LogoutHandler deletes the caller's session.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	token, ok := utils.GetSessionTokenFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, apperr.Unauthorized("Missing session token"))
		return
	}

	if err := db.DB.WithContext(r.Context()).Delete(&Session{}, "token = ?", token).Error; err != nil {
		httputil.WriteError(w, apperr.Internal("Failed to end session", err))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   middleware.SessionCookieName,
		Value:  "",
		MaxAge: -1,
		Path:   "/",
	})
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logout successful"})
}

// MeHandler returns the session's user.
func MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, apperr.Unauthorized("Missing user in session"))
		return
	}

	var user User
	if err := db.DB.WithContext(r.Context()).First(&user, userID).Error; err != nil {
		httputil.WriteError(w, apperr.NotFound("Couldn't find user"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

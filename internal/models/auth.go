package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a teacher.
type LoginRequest struct {
	TeacherID string `json:"teacher_id" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token and teacher info.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	Teacher     Session   `json:"teacher"`
	IssuedAt    time.Time `json:"issued_at"`
}

// Session is the authenticated identity carried through a request. It
// replaces any process-wide notion of a current user.
type Session struct {
	TeacherID string   `json:"teacher_id"`
	Name      string   `json:"name"`
	Role      UserRole `json:"role"`
}

// Actor returns the identifier recorded in deleted_by style columns.
func (s Session) Actor() string {
	return s.TeacherID
}

// IsAdmin reports whether the session may manage the catalog.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	TeacherID string   `json:"teacher_id"`
	Name      string   `json:"name"`
	Role      UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Session converts the claims into a request session.
func (c *JWTClaims) Session() Session {
	return Session{TeacherID: c.TeacherID, Name: c.Name, Role: c.Role}
}

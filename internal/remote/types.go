package remote

import (
	"time"

	"github.com/nikbrunner/spots/internal/model"
)

// Session is the token pair issued by the auth endpoints.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    int64  `json:"expires_at,omitempty"`
}

// User is the account profile returned by login and verify.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Session Session
	User    User
}

// Share is a shared category list as served by the share backend.
type Share struct {
	ID        string            `json:"id"`
	Category  string            `json:"category"`
	Items     []model.SavedItem `json:"items"`
	Views     int               `json:"views"`
	CreatedAt *time.Time        `json:"created_at,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool     `json:"success"`
	Session *Session `json:"session"`
	User    *User    `json:"user"`
	Error   string   `json:"error"`
}

type verifyResponse struct {
	Valid bool  `json:"valid"`
	User  *User `json:"user"`
}

type createSaveRequest struct {
	Platform model.Platform `json:"platform"`
	URL      string         `json:"url"`
	Content  string         `json:"content"`
	Images   []string       `json:"images"`
	Author   string         `json:"author"`
	Category *string        `json:"category"`
}

type saveResponse struct {
	Success bool             `json:"success"`
	Item    *model.SavedItem `json:"item"`
}

type listSavesResponse struct {
	Saves []model.SavedItem `json:"saves"`
	Items []model.SavedItem `json:"items"`
}

type shareRequest struct {
	Category string            `json:"category"`
	Items    []model.SavedItem `json:"items"`
}

type shareResponse struct {
	ShareURL string `json:"share_url"`
}

type reorderRequest struct {
	Items []model.SavedItem `json:"items"`
}

package users

import (
	"strings"
	"time"

	"github.com/2beens/gymlog/internal/validation"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID
	Username       string
	PasswordHash   string
	Name           string
	Bio            string
	Language       string
	PrivateProfile bool
	Created        time.Time
	Modified       time.Time
}

// UserView is the public representation of a user.
type UserView struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	Bio            string    `json:"bio"`
	URL            string    `json:"url"`
	Language       string    `json:"language"`
	PrivateProfile bool      `json:"privateProfile"`
}

func (u User) View() UserView {
	return UserView{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		Bio:            u.Bio,
		URL:            "/users/" + u.Username,
		Language:       u.Language,
		PrivateProfile: u.PrivateProfile,
	}
}

type SignupInput struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"max=255"`
}

func (in SignupInput) Validate() validation.Errors {
	return validation.Struct(in)
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (in LoginInput) Validate() validation.Errors {
	return validation.Struct(in)
}

// ProfilePatch is the body of PUT /users/me; omitted fields keep their value.
type ProfilePatch struct {
	Name           *string `json:"name" validate:"omitempty,max=255"`
	Bio            *string `json:"bio"`
	Language       *string `json:"language" validate:"omitempty,max=10"`
	PrivateProfile *bool   `json:"privateProfile"`
}

func (p ProfilePatch) Validate() validation.Errors {
	return validation.Struct(p)
}

func (p ProfilePatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Language != nil {
		u.Language = *p.Language
	}
	if p.PrivateProfile != nil {
		u.PrivateProfile = *p.PrivateProfile
	}
}

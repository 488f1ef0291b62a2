package model

import (
	"errors"
	"strings"
)

var ErrEmptyName = errors.New("model: user name is required")

type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// NewUser builds a user whose avatar is avatarBase with the new id appended.
func NewUser(name, avatarBase string) User {
	id := NewID(UserIDPrefix)
	return User{
		ID:        id,
		Name:      strings.TrimSpace(name),
		AvatarURL: AvatarFor(avatarBase, id),
	}
}

func AvatarFor(avatarBase, seed string) string {
	if avatarBase == "" {
		return ""
	}
	return avatarBase + seed
}

func (u User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return errors.New("model: user id is required")
	}
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func FindUser(users []User, id string) (User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

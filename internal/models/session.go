package models

import "time"

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

type User struct {
	ID        string    `json:"id" yaml:"id"`
	Email     string    `json:"email" yaml:"email" validate:"email"`
	Name      string    `json:"name" yaml:"name" validate:"min=1"`
	Avatar    string    `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Role      Role      `json:"role,omitempty" yaml:"role,omitempty" validate:"omitempty,oneof=admin manager member"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Session is the identity of the current user. It is
// authenticated only when both the user and the token are set.
type Session struct {
	User  *User  `json:"user"`
	Token string `json:"token,omitempty"`
}

func (s Session) IsAuthenticated() bool {
	return s.User != nil && s.Token != ""
}

func (s Session) Clone() Session {
	out := s
	if s.User != nil {
		user := *s.User
		out.User = &user
	}
	return out
}

type AuthState string

const (
	AuthStateLoading         AuthState = "loading"
	AuthStateUnauthenticated AuthState = "unauthenticated"
	AuthStateAuthenticated   AuthState = "authenticated"
	AuthStateError           AuthState = "error"
)

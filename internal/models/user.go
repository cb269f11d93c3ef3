package models

import "time"

const (
	RoleCoach   = "coach"
	RoleTrainee = "trainee"
)

type User struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	Role               string    `json:"role"`
	AvatarURL          *string   `json:"avatar_url,omitempty"`
	Goal               *string   `json:"goal,omitempty"`
	ExternalRef        *string   `json:"external_ref,omitempty"`
	SubscriptionStatus string    `json:"subscription_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// UserSummary is the profile slice embedded in chat payloads.
type UserSummary struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Goal      *string `json:"goal,omitempty"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Goal:      u.Goal,
	}
}

// OppositeRole maps each chat role to its counterparty role.
func OppositeRole(role string) string {
	if role == RoleCoach {
		return RoleTrainee
	}
	return RoleCoach
}

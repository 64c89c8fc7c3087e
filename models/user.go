package models

import (
	"time"

	"gorm.io/gorm"
)

// ContestUser is a local snapshot of the account data the pipeline needs to
// reach a contest owner. Populated out-of-band from the profile service;
// Contest.OwnerID links to ExternalUserID.
type ContestUser struct {
	ID             string  `json:"id" gorm:"primaryKey"`
	ExternalUserID string  `json:"external_user_id" gorm:"uniqueIndex;not null"`
	Username       string  `json:"username" gorm:"index;not null"`
	Email          string  `json:"email,omitempty"`
	FirstName      *string `json:"first_name,omitempty"`
	LastName       *string `json:"last_name,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// DisplayName prefers "First Last", falling back to the username.
func (u *ContestUser) DisplayName() string {
	name := ""
	if u.FirstName != nil {
		name = *u.FirstName
	}
	if u.LastName != nil {
		if name != "" {
			name += " "
		}
		name += *u.LastName
	}
	if name == "" {
		name = u.Username
	}
	return name
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

package models

import "time"

// Worker represents a schedulable staff member ("talent").
type Worker struct {
	ID        string    `db:"id" json:"id"`
	BadgeID   *string   `db:"badge_id" json:"badge_id,omitempty"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Role      string    `db:"role" json:"role"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// WorkerFilter captures filtering options for listing workers.
type WorkerFilter struct {
	Search    string
	Role      string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

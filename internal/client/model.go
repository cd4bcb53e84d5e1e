package client

import "time"

// Client is a gym member record. The membership_* columns are a cached
// summary of the current entitlement, refreshed inside the same
// transaction as every membership sale or renewal so list views never
// join the memberships table.
type Client struct {
	ID               int        `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	Email            string     `db:"email" json:"email"`
	Phone            string     `db:"phone" json:"phone"`
	MembershipStatus string     `db:"membership_status" json:"membership_status"`
	MembershipID     *int       `db:"membership_id" json:"membership_id,omitempty"`
	MembershipStart  *time.Time `db:"membership_start" json:"membership_start,omitempty"`
	MembershipEnd    *time.Time `db:"membership_end" json:"membership_end,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

type CreateClientRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

// EntitlementSummary is what membership transactions write back onto
// the client row.
type EntitlementSummary struct {
	Status       string
	MembershipID *int
	Start        *time.Time
	End          *time.Time
}

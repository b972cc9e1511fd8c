package models

import "time"

const (
	PlanFree       = "free"
	PlanBasic      = "basic"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

type User struct {
	ID            int64      `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	Username      string     `db:"username" json:"username"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	Name          string     `db:"name" json:"name"`
	Avatar        string     `db:"avatar" json:"avatar"`
	Bio           string     `db:"bio" json:"bio"`
	Location      string     `db:"location" json:"location"`
	Website       string     `db:"website" json:"website"`
	IsActive      bool       `db:"is_active" json:"is_active"`
	Plan          string     `db:"plan" json:"plan"`
	PlanExpiresAt *time.Time `db:"plan_expires_at" json:"plan_expires_at"`
	Timezone      string     `db:"timezone" json:"timezone"`
	LastSeen      time.Time  `db:"last_seen" json:"last_seen"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// EffectivePlan accounts for expiry: an expired paid plan behaves as free.
func (u *User) EffectivePlan(now time.Time) string {
	if u.Plan != PlanFree && u.PlanExpiresAt != nil && u.PlanExpiresAt.Before(now) {
		return PlanFree
	}
	return u.Plan
}

// SocialAccount is a user's stored OAuth credential set for one platform.
// Tokens are stored AES-GCM encrypted. At most one active row exists per
// (user, platform); reconnecting replaces the prior entry.
type SocialAccount struct {
	ID             int64      `db:"id" json:"id"`
	UserID         int64      `db:"user_id" json:"user_id"`
	Platform       string     `db:"platform" json:"platform"`
	PlatformUserID string     `db:"platform_user_id" json:"platform_user_id"`
	Username       string     `db:"username" json:"username"`
	DisplayName    string     `db:"display_name" json:"display_name"`
	Avatar         string     `db:"avatar" json:"avatar"`
	AccessToken    string     `db:"access_token" json:"-"`
	RefreshToken   string     `db:"refresh_token" json:"-"`
	TokenExpiresAt *time.Time `db:"token_expires_at" json:"token_expires_at"`
	Scopes         string     `db:"scopes" json:"scopes"`
	IsActive       bool       `db:"is_active" json:"is_active"`
	LastSync       time.Time  `db:"last_sync" json:"last_sync"`
	ConnectedAt    time.Time  `db:"connected_at" json:"connected_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// SocialPage is a page/channel/company sub-resource of a connected account.
type SocialPage struct {
	ID          int64     `db:"id" json:"id"`
	AccountID   int64     `db:"account_id" json:"account_id"`
	PageID      string    `db:"page_id" json:"page_id"`
	Name        string    `db:"name" json:"name"`
	AccessToken string    `db:"access_token" json:"-"`
	PageType    string    `db:"page_type" json:"page_type"`
	Followers   int64     `db:"followers" json:"followers"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

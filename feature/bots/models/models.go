package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles, in ascending order of privilege.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// User represents the 'users' table. Users own bot instances; admins and
// superadmins may manage any bot.
type User struct {
	ID        uint           `gorm:"column:id;primaryKey;autoIncrement"`
	Fullname  string         `gorm:"column:fullname;size:255"`
	Email     string         `gorm:"column:email;size:255;uniqueIndex"`
	Username  string         `gorm:"column:username;size:255;uniqueIndex"`
	Role      string         `gorm:"column:role;size:32;default:user"`
	Password  string         `gorm:"column:password;size:255"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// TableName overrides the table name for users.
func (User) TableName() string {
	return "users"
}

// CanManage reports whether the user may operate on a bot owned by ownerID.
// Plain users only manage their own bots; admins manage everything.
func (u User) CanManage(ownerID *uint) bool {
	if u.Role == RoleAdmin || u.Role == RoleSuperadmin {
		return true
	}
	return ownerID != nil && *ownerID == u.ID
}

// Bot represents the 'bots' table: one row per managed bot instance. BotID
// doubles as the pod and service name in the cluster.
type Bot struct {
	ID         uint           `gorm:"column:id;primaryKey;autoIncrement"`
	BotID      string         `gorm:"column:bot_id;size:64;uniqueIndex"`
	UserID     *uint          `gorm:"column:user_id;index"`
	Image      string         `gorm:"column:image;size:255"`
	Version    string         `gorm:"column:version;size:64"`
	APIURL     string         `gorm:"column:api_url;size:255"`
	Strategy   string         `gorm:"column:strategy;size:255"`
	Exchange   string         `gorm:"column:exchange;size:64"`
	State      string         `gorm:"column:state;size:32"`
	IsActive   bool           `gorm:"column:is_active"`
	IsStrategy bool           `gorm:"column:is_strategy"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	UpdatedAt  time.Time      `gorm:"column:updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// TableName overrides the table name for bots.
func (Bot) TableName() string {
	return "bots"
}

// BotResponse is the API representation of a bot row.
type BotResponse struct {
	BotID      string    `json:"bot_id"`
	UserID     *uint     `json:"user_id,omitempty"`
	Image      string    `json:"image"`
	Version    string    `json:"version"`
	Strategy   string    `json:"strategy,omitempty"`
	Exchange   string    `json:"exchange,omitempty"`
	State      string    `json:"state"`
	IsActive   bool      `json:"is_active"`
	IsStrategy bool      `json:"is_strategy"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToResponse converts the row to its API representation.
func (b Bot) ToResponse() BotResponse {
	return BotResponse{
		BotID:      b.BotID,
		UserID:     b.UserID,
		Image:      b.Image,
		Version:    b.Version,
		Strategy:   b.Strategy,
		Exchange:   b.Exchange,
		State:      b.State,
		IsActive:   b.IsActive,
		IsStrategy: b.IsStrategy,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

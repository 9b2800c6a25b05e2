package model

import "time"

// APIKey is a client's bearer key for the gateway. Rows are never
// physically deleted; revocation clears the Active flag.
type APIKey struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Key        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"key"`
	UserID     string    `gorm:"type:varchar(255);index" json:"user_id"`
	Active     bool      `gorm:"default:true;not null" json:"active"`
	UsageCount int64     `gorm:"default:0;not null" json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
}

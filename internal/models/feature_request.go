package models

import "time"

// FeatureRequestTable is the table suggestions are inserted into
const FeatureRequestTable = "feature_requests"

// FeatureRequest is a stored user suggestion
type FeatureRequest struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserName  string    `gorm:"size:50;not null" json:"user_name"`
	Details   string    `gorm:"size:1000;not null" json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

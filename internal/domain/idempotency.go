// Package domain defines the core persistence models for the application.
// These types are used by GORM for database schema mapping and are shared
// across the repository and service layers.
package domain

import "time"

// Idempotency records the cafe created by a POST /add that carried an
// Idempotency-Key header, keyed by (client, key). A retried add with the same
// key is answered from this record instead of inserting again.
type Idempotency struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Client    string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_client_key,priority:1"`
	Key       string    `gorm:"column:idem_key;type:varchar(200);not null;uniqueIndex:ux_client_key,priority:2"`
	CafeID    uint      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }

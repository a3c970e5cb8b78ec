// Package model defines database models
package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Verified     bool   `gorm:"default:false"`
	CreatedAt    time.Time
	VerifiedAt   *time.Time
}

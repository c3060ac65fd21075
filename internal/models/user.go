package models

import "gorm.io/gorm"

// User represents an account in the system. XP, Level and TasksCompleted
// form the score profile read by the leaderboards; they are only ever
// written by the progress handlers, never by the relationship code.
type User struct {
	gorm.Model
	Nickname     string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:50;not null;default:'user';index"`
	Avatar       string `gorm:"size:512"`

	XP             int64 `gorm:"not null;default:0;index"`
	Level          int   `gorm:"not null;default:1"`
	TasksCompleted int   `gorm:"not null;default:0"`
}

// LevelForXP derives the level for a given XP total (100 XP per level).
func LevelForXP(xp int64) int {
	return int(xp/100) + 1
}

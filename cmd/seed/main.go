// Command seed creates a roster of test users for exercising the friends and
// leaderboard features in development. All test users share the password
// "password123".
package main

import (
	"log"

	"questlog/backend/internal/config"
	"questlog/backend/internal/database"
	"questlog/backend/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type seedUser struct {
	Nickname       string
	Email          string
	XP             int64
	Level          int
	TasksCompleted int
}

var roster = []seedUser{
	{Nickname: "alice", Email: "alice@test.com", XP: 450, Level: 5, TasksCompleted: 25},
	{Nickname: "bob", Email: "bob@test.com", XP: 280, Level: 3, TasksCompleted: 15},
	{Nickname: "charlie", Email: "charlie@test.com", XP: 720, Level: 7, TasksCompleted: 42},
	{Nickname: "diana", Email: "diana@test.com", XP: 150, Level: 2, TasksCompleted: 8},
	{Nickname: "edward", Email: "edward@test.com", XP: 1200, Level: 10, TasksCompleted: 75},
}

func main() {
	config.LoadConfig()
	database.Connect(config.AppConfig.DatabaseURL)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash seed password: %v", err)
	}

	created := make([]models.User, 0, len(roster))
	for _, s := range roster {
		var existing models.User
		if err := database.DB.Where("email = ?", s.Email).First(&existing).Error; err == nil {
			log.Printf("User %s already exists, skipping", s.Nickname)
			created = append(created, existing)
			continue
		}

		user := models.User{
			Nickname:       s.Nickname,
			Email:          s.Email,
			PasswordHash:   string(hash),
			XP:             s.XP,
			Level:          s.Level,
			TasksCompleted: s.TasksCompleted,
		}
		if err := database.DB.Create(&user).Error; err != nil {
			log.Fatalf("Failed to create user %s: %v", s.Nickname, err)
		}
		log.Printf("Created user %s (id=%d)", s.Nickname, user.ID)
		created = append(created, user)
	}

	// Make everyone friends with everyone, like the original test fixture.
	for i := range created {
		for j := i + 1; j < len(created); j++ {
			low, high := created[i].ID, created[j].ID
			if low > high {
				low, high = high, low
			}
			edge := models.RelationshipEdge{
				UserLowID:  low,
				UserHighID: high,
				State:      models.EdgeStateFriends,
			}
			if err := database.DB.FirstOrCreate(&edge, models.RelationshipEdge{UserLowID: low, UserHighID: high}).Error; err != nil {
				log.Fatalf("Failed to create friendship %d-%d: %v", low, high, err)
			}
		}
	}

	log.Println("Seed complete.")
}

//go:build ignore

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sanadchat/sanad/internal/auth"
	"github.com/sanadchat/sanad/internal/database"
	"github.com/sanadchat/sanad/internal/database/models"
	"github.com/sanadchat/sanad/pkg/config"
	"github.com/sanadchat/sanad/pkg/util"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	name := os.Getenv("ADMIN_NAME")

	if email == "" {
		email = "admin@example.com"
	}
	if password == "" {
		password = "Admin123pass"
	}
	if name == "" {
		name = "Admin"
	}

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		log.Fatalf("failed to check for existing admin: %v", err)
	}
	if count > 0 {
		fmt.Printf("Admin user already exists: %s\n", email)
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	// Seeded admins are created pre-verified; there is no inbox to confirm.
	admin := models.User{
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		Role:          models.RoleAdmin,
		EmailVerified: true,
	}

	if err := db.Create(&admin).Error; err != nil {
		log.Fatalf("failed to create admin user: %v", err)
	}

	fmt.Printf("Admin user created successfully!\n")
	fmt.Printf("Email: %s\n", admin.Email)
	fmt.Printf("Role: %s\n", admin.Role)
}

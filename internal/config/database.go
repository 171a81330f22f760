package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"bus_notify/internal/models"
)

var (
	// DB is the globally accessible database handle
	DB *gorm.DB
)

// InitDB opens the in-memory store and migrates the schema. Nothing
// survives a restart; the DSN can point at a file for local debugging.
func InitDB() {
	// 1) Load .env (if present)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found – relying on env vars")
	}

	dsn := getEnv("DB_DSN", "file::memory:?cache=shared")

	// TranslateError maps driver unique-constraint failures onto
	// gorm.ErrDuplicatedKey so controllers can answer 409.
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Route{},
		&models.Stop{},
		&models.Bus{},
		&models.User{},
		&models.Subscription{},
		&models.Notification{},
		&models.Broadcast{},
	); err != nil {
		log.Fatalf("auto-migration failed: %v", err)
	}

	// Assign to global
	DB = db
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists {
		return v
	}
	return defaultValue
}

// GetDB returns the initialized DB handle
func GetDB() *gorm.DB {
	return DB
}

// Port returns the HTTP listen port.
func Port() string {
	return getEnv("PORT", "8080")
}

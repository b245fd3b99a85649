package main

import (
	"log"
	"os"
	"strings"

	"github.com/ChangeLaterX/Cookify-sub001/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN.")
	}
	db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect postgres database:", err)
	}
	// Control schema migrations with env DB_AUTO_MIGRATE (default true). Any permission errors will be logged and ignored.
	shouldMigrate := true
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			shouldMigrate = false
		}
	}
	// Ensure the roles master table exists first and seed it so users FK can be applied safely.
	if shouldMigrate {
		if err := db.AutoMigrate(&models.Role{}); err != nil {
			log.Printf("migration warning (roles): %v", err)
		}
	}
	// seed master roles immediately
	roles := []models.Role{{Name: "administrator", Description: "full access"}, {Name: "user", Description: "regular user"}}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}

	// Now migrate the rest (users will get FK to roles)
	if shouldMigrate {
		// Migrate models individually so a failure on one doesn't block others
		if err := db.AutoMigrate(&models.User{}); err != nil {
			log.Printf("migration warning (users): %v", err)
		}
		if err := db.AutoMigrate(&models.Ingredient{}); err != nil {
			log.Printf("migration warning (ingredients): %v", err)
		}
		if err := db.AutoMigrate(&models.ReceiptScan{}); err != nil {
			log.Printf("migration warning (receipt_scans): %v", err)
		}
		if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
			log.Printf("migration warning (refresh_tokens): %v", err)
		}
	}

	seedDB()
}

func seedDB() {
	// Ensure master roles exist
	roles := []models.Role{{Name: "administrator", Description: "full access"}, {Name: "user", Description: "regular user"}}
	for _, r := range roles {
		var cnt int64
		db.Model(&models.Role{}).Where("name = ?", r.Name).Count(&cnt)
		if cnt == 0 {
			db.Create(&r)
		}
	}

	// Check if admin user exists
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count == 0 {
		// find administrator role id
		var role models.Role
		if err := db.Where("name = ?", "administrator").First(&role).Error; err != nil {
			log.Printf("failed to find administrator role: %v", err)
		}
		// Seed admin user
		rid := role.ID
		admin := models.User{
			Username: "admin",
			RoleID:   &rid,
		}
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		admin.HashedPassword = hashedPassword
		db.Create(&admin)
		log.Println("Seeded admin user: username=admin, password=admin123")
	}

	seedIngredients()

	// Ensure upload directory exists
	ensureUploadBase()
}

// seedIngredients fills an empty catalog with a starter set so matching works
// out of the box. Existing rows are never touched.
func seedIngredients() {
	var cnt int64
	db.Model(&models.Ingredient{}).Count(&cnt)
	if cnt > 0 {
		return
	}
	starter := []models.Ingredient{
		{Name: "Tomatoes", Category: "produce"},
		{Name: "Garlic", Category: "produce"},
		{Name: "Onions", Category: "produce"},
		{Name: "Potatoes", Category: "produce"},
		{Name: "Carrots", Category: "produce"},
		{Name: "Spinach", Category: "produce"},
		{Name: "Celery", Category: "produce"},
		{Name: "Apples", Category: "produce"},
		{Name: "Bananas", Category: "produce"},
		{Name: "Oranges", Category: "produce"},
		{Name: "Milk", Category: "dairy"},
		{Name: "Butter", Category: "dairy"},
		{Name: "Cheese", Category: "dairy"},
		{Name: "Yogurt", Category: "dairy"},
		{Name: "Eggs", Category: "dairy"},
		{Name: "Chicken Breast", Category: "meat"},
		{Name: "Ground Beef", Category: "meat"},
		{Name: "Salmon", Category: "seafood"},
		{Name: "Bread", Category: "bakery"},
		{Name: "Rice", Category: "pantry"},
		{Name: "Pasta", Category: "pantry"},
		{Name: "Olive Oil", Category: "pantry"},
		{Name: "Flour", Category: "pantry"},
		{Name: "Sugar", Category: "pantry"},
	}
	for _, ing := range starter {
		if err := db.Where("name = ?", ing.Name).FirstOrCreate(&ing).Error; err != nil {
			log.Printf("failed to seed ingredient %q: %v", ing.Name, err)
		}
	}
	log.Printf("Seeded %d starter ingredients", len(starter))
}

// ensureUploadBase creates the base uploads directory.
func ensureUploadBase() {
	base := uploadBaseDir()
	if err := os.MkdirAll(base, 0755); err != nil {
		log.Printf("failed to create upload base dir %s: %v", base, err)
	}
}

// uploadBaseDir returns the base directory for stored receipt images (configurable via UPLOAD_BASE env)
func uploadBaseDir() string {
	if v := os.Getenv("UPLOAD_BASE"); v != "" {
		return v
	}
	return "uploads"
}

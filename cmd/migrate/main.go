package main

import (
	"log"

	"mygrownet-engine/internal/database"
	"mygrownet-engine/internal/models"

	"github.com/joho/godotenv"
	"gorm.io/gorm/clause"
)

// Default tier table. Amounts are in minor units (ngwee).
var defaultTiers = []models.Tier{
	{Name: "Starter", Rank: 1, MinimumPrincipal: 50_000, FixedProfitBps: 800},
	{Name: "Builder", Rank: 2, MinimumPrincipal: 250_000, FixedProfitBps: 1000, MatrixDirectBps: 300},
	{Name: "Growth", Rank: 3, MinimumPrincipal: 1_000_000, FixedProfitBps: 1200, MatrixDirectBps: 400, MatrixLevel2Bps: 200},
	{Name: "Premier", Rank: 4, MinimumPrincipal: 5_000_000, FixedProfitBps: 1400, MatrixDirectBps: 500, MatrixLevel2Bps: 300, MatrixLevel3Bps: 100, LeadershipEligible: true},
	{Name: "Elite", Rank: 5, MinimumPrincipal: 10_000_000, FixedProfitBps: 1500, MatrixDirectBps: 600, MatrixLevel2Bps: 400, MatrixLevel3Bps: 200, LeadershipEligible: true},
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found in current directory, trying parent")
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
	}

	// Initialize Database
	database.Connect()

	// Run Migrations
	log.Println("Running database migrations...")
	database.Migrate()

	// Seed tiers; re-running updates rates in place
	log.Println("Seeding tier table...")
	err := database.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"rank", "minimum_principal", "fixed_profit_bps",
			"matrix_direct_bps", "matrix_level2_bps", "matrix_level3_bps",
			"leadership_eligible",
		}),
	}).Create(&defaultTiers).Error
	if err != nil {
		log.Fatalf("Failed to seed tiers: %v", err)
	}

	log.Println("Migrations completed successfully!")
}

package main

import (
	"log"
	"os"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"mygrownet-engine/internal/database"
	"mygrownet-engine/internal/services"
	"mygrownet-engine/internal/worker"
)

func main() {
	// Load env
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found in ../../.env, trying .env")
		if err := godotenv.Load(".env"); err != nil {
			log.Println("No .env file found, using system env")
		}
	}

	// Connect DB
	database.Connect()
	db := database.DB

	// Init Services
	helperService := services.NewHelperService(db)
	networkService := services.NewNetworkService(db, helperService)
	commissionService := services.NewCommissionService(db, helperService, networkService)
	teamVolumeService := services.NewTeamVolumeService(db, networkService)
	distributionService := services.NewDistributionService(db, helperService)
	withdrawalService := services.NewWithdrawalService(db, helperService)

	w := worker.NewWorker(teamVolumeService, commissionService, distributionService, withdrawalService)

	redisAddr := os.Getenv("REDIS_URL")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	log.Printf("Worker connecting to redis at %s", redisAddr)
	worker.StartWorker(asynq.RedisClientOpt{Addr: redisAddr}, w)
}

package main

import (
	"log"
	"os"

	"mygrownet-engine/internal/database"
	"mygrownet-engine/internal/handlers"
	"mygrownet-engine/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found in current directory, trying parent")
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found, using system environment variables")
		}
	}

	if mode := os.Getenv("GIN_MODE"); mode != "" {
		gin.SetMode(mode)
	}

	// Initialize Database
	database.Connect()
	database.Migrate()
	db := database.DB

	// Init Services
	helperService := services.NewHelperService(db)
	networkService := services.NewNetworkService(db, helperService)
	commissionService := services.NewCommissionService(db, helperService, networkService)
	withdrawalService := services.NewWithdrawalService(db, helperService)
	purchaseService := services.NewPurchaseService(db, helperService, networkService, commissionService)

	// Redis/Asynq Client
	redisAddr := os.Getenv("REDIS_URL")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer asynqClient.Close()

	// Handlers
	networkHandler := handlers.NewNetworkHandler(db, networkService)
	capitalHandler := handlers.NewCapitalHandler(db, purchaseService, withdrawalService)
	distributionHandler := handlers.NewDistributionHandler(db, asynqClient)

	// Initialize Gin
	r := gin.Default()

	// Ping endpoint
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Welcome to MyGrowNet engine",
		})
	})

	// Network Routes
	r.POST("/members", networkHandler.CreateMember)
	r.POST("/members/:id/sponsor", networkHandler.AttachSponsor)
	r.GET("/members/:id/downline", networkHandler.Downline)
	r.GET("/matrix/:root/stats", networkHandler.MatrixStats)

	// Capital Routes
	r.POST("/purchases", capitalHandler.ProcessPurchase)
	r.POST("/withdrawals/validate", capitalHandler.ValidateWithdrawal)
	r.POST("/withdrawals", capitalHandler.ProcessWithdrawal)
	r.GET("/members/:id/lock-in", capitalHandler.LockInRemaining)
	r.GET("/members/:id/volume", capitalHandler.TeamVolume)

	// Distribution Routes
	r.POST("/distributions/annual", distributionHandler.RunAnnual)
	r.POST("/distributions/quarterly", distributionHandler.RunQuarterly)
	r.GET("/distributions/:id/shares", distributionHandler.ListShares)

	// Start Cron Schedulers
	schedulerService := services.NewSchedulerService(asynqClient)
	schedulerService.StartScheduler()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("HTTP Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

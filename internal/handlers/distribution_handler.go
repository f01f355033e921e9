package handlers

import (
	"net/http"
	"strconv"
	"time"

	"mygrownet-engine/internal/models"
	"mygrownet-engine/internal/worker"
	"mygrownet-engine/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

// DistributionHandler accepts distribution requests over HTTP and hands the
// actual run to the worker queue. Runs are idempotent per period so a retried
// enqueue is harmless.
type DistributionHandler struct {
	DB     *gorm.DB
	Client *asynq.Client
}

func NewDistributionHandler(db *gorm.DB, client *asynq.Client) *DistributionHandler {
	return &DistributionHandler{DB: db, Client: client}
}

type DistributionRequest struct {
	Period string `json:"period" binding:"required"`
	Pool   int64  `json:"pool" binding:"required"`
}

func (h *DistributionHandler) RunAnnual(c *gin.Context) {
	h.enqueue(c, worker.TypeAnnualDistribution)
}

func (h *DistributionHandler) RunQuarterly(c *gin.Context) {
	h.enqueue(c, worker.TypeQuarterlyDistribution)
}

func (h *DistributionHandler) enqueue(c *gin.Context, taskType string) {
	var req DistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Pool <= 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "pool must be positive"})
		return
	}
	if _, _, err := common.PeriodWindow(req.Period); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be formatted YYYY-MM"})
		return
	}

	payload := worker.DistributionPayload{Period: req.Period, Pool: req.Pool, At: time.Now().UTC()}
	var (
		task *asynq.Task
		err  error
	)
	if taskType == worker.TypeAnnualDistribution {
		task, err = worker.NewAnnualDistributionTask(payload)
	} else {
		task, err = worker.NewQuarterlyDistributionTask(payload)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	info, err := h.Client.Enqueue(task, asynq.Queue("critical"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue distribution"})
		return
	}
	c.JSON(http.StatusAccepted, common.NewSuccessResponse(gin.H{
		"task_id": info.ID,
		"queue":   info.Queue,
	}, "Distribution queued"))
}

// ListShares returns the share records of a completed cycle, paginated.
func (h *DistributionHandler) ListShares(c *gin.Context) {
	cycleID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cycle id"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var cycle models.ProfitDistributionCycle
	if err := h.DB.First(&cycle, cycleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "cycle not found"})
		return
	}

	var total int64
	if err := h.DB.Model(&models.ProfitShareRecord{}).Where("cycle_id = ?", cycleID).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var shares []models.ProfitShareRecord
	if err := h.DB.Where("cycle_id = ?", cycleID).
		Order("id ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&shares).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, common.PaginateResponse(shares, total, page, limit, ""))
}

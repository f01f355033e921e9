package handlers

import (
	"errors"
	"net/http"
	"time"

	"mygrownet-engine/internal/models"
	"mygrownet-engine/internal/services"
	"mygrownet-engine/pkg/common"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CapitalHandler struct {
	DB         *gorm.DB
	Purchase   *services.PurchaseService
	Withdrawal *services.WithdrawalService
}

func NewCapitalHandler(db *gorm.DB, purchase *services.PurchaseService, withdrawal *services.WithdrawalService) *CapitalHandler {
	return &CapitalHandler{DB: db, Purchase: purchase, Withdrawal: withdrawal}
}

type PurchaseRequest struct {
	MemberID  uint  `json:"member_id" binding:"required"`
	TierID    uint  `json:"tier_id" binding:"required"`
	Principal int64 `json:"principal" binding:"required"`
}

func (h *CapitalHandler) ProcessPurchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.Purchase.ProcessPurchase(req.MemberID, req.TierID, req.Principal, time.Now().UTC())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrBelowTierMinimum) {
			status = http.StatusUnprocessableEntity
		} else if errors.Is(err, gorm.ErrRecordNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(result, "Purchase processed"))
}

type WithdrawalRequest struct {
	MemberID uint  `json:"member_id" binding:"required"`
	Amount   int64 `json:"amount" binding:"required"`
}

// ValidateWithdrawal returns the decision without executing anything. The
// surrounding approval workflow presents Reason to the member.
func (h *CapitalHandler) ValidateWithdrawal(c *gin.Context) {
	var req WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	decision, err := h.Withdrawal.ValidateWithdrawal(req.MemberID, req.Amount, time.Now().UTC())
	if err != nil {
		c.JSON(statusForWithdrawalError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(decision, "Withdrawal validated"))
}

// ProcessWithdrawal executes an approved withdrawal including the clawback
// fan-out. Approval itself happens upstream.
func (h *CapitalHandler) ProcessWithdrawal(c *gin.Context) {
	var req WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, clawbacks, err := h.Withdrawal.ProcessWithdrawal(req.MemberID, req.Amount, time.Now().UTC())
	if err != nil {
		c.JSON(statusForWithdrawalError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{
		"event":     event,
		"clawbacks": clawbacks,
	}, "Withdrawal processed"))
}

func (h *CapitalHandler) LockInRemaining(c *gin.Context) {
	memberID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member id"})
		return
	}

	months, err := h.Withdrawal.LockInRemaining(memberID, time.Now().UTC())
	if err != nil {
		c.JSON(statusForWithdrawalError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"member_id": memberID, "months_remaining": months})
}

func (h *CapitalHandler) TeamVolume(c *gin.Context) {
	memberID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member id"})
		return
	}
	period := c.Query("period")
	if period == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period is required"})
		return
	}

	var snapshot models.TeamVolumeSnapshot
	if err := h.DB.Where("member_id = ? AND period = ?", memberID, period).First(&snapshot).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot for period"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func statusForWithdrawalError(err error) int {
	switch {
	case errors.Is(err, services.ErrNoActivePosition),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrExceedsPartialLimit),
		errors.Is(err, services.ErrInvalidAmount):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

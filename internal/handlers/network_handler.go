package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"mygrownet-engine/internal/models"
	"mygrownet-engine/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type NetworkHandler struct {
	DB      *gorm.DB
	Network *services.NetworkService
}

func NewNetworkHandler(db *gorm.DB, network *services.NetworkService) *NetworkHandler {
	return &NetworkHandler{DB: db, Network: network}
}

type CreateMemberRequest struct {
	Username  string `json:"username" binding:"required"`
	SponsorID *uint  `json:"sponsor_id"`
}

func (h *NetworkHandler) CreateMember(c *gin.Context) {
	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member := models.Member{
		Username: req.Username,
		Status:   models.MemberStatusInactive,
	}
	if err := h.DB.Create(&member).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.SponsorID != nil {
		if err := h.Network.AttachSponsor(member.ID, *req.SponsorID); err != nil {
			c.JSON(statusForNetworkError(err), gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusCreated, member)
}

type AttachSponsorRequest struct {
	SponsorID uint `json:"sponsor_id" binding:"required"`
}

func (h *NetworkHandler) AttachSponsor(c *gin.Context) {
	memberID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member id"})
		return
	}

	var req AttachSponsorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.Network.AttachSponsor(memberID, req.SponsorID); err != nil {
		c.JSON(statusForNetworkError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"member_id": memberID, "sponsor_id": req.SponsorID})
}

func (h *NetworkHandler) MatrixStats(c *gin.Context) {
	rootID, err := pathID(c, "root")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid root id"})
		return
	}

	stats, err := h.Network.MatrixStatistics(rootID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *NetworkHandler) Downline(c *gin.Context) {
	memberID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member id"})
		return
	}

	depth := 0
	if v := c.Query("depth"); v != "" {
		depth, err = strconv.Atoi(v)
		if err != nil || depth < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid depth"})
			return
		}
	}

	levels, err := h.Network.Downline(memberID, depth)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"member_id": memberID, "levels": levels})
}

func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	return uint(id), err
}

func statusForNetworkError(err error) int {
	switch {
	case errors.Is(err, services.ErrSponsorCycle),
		errors.Is(err, services.ErrInactiveSponsor),
		errors.Is(err, services.ErrSelfSponsor):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

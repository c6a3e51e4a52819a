package routes

import (
	"net/http"

	"Kindfund/internal/contracts"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetMyDashboard(c *gin.Context) {
	donorID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	dashboard, err := h.DashboardService.GetDonorDashboard(c.Request.Context(), donorID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *Handler) ListMyMilestones(c *gin.Context) {
	donorID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	milestones, err := h.MilestoneService.ListDonorMilestones(c.Request.Context(), donorID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"milestones": milestones, "total": len(milestones)})
}

func (h *Handler) GetMe(c *gin.Context) {
	donorID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	found, err := h.DonorService.GetByID(c.Request.Context(), donorID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *Handler) UpdateMyName(c *gin.Context) {
	var body contracts.DonorUpdateNameRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondBindError(c, err)
		return
	}

	donorID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := h.DonorService.UpdateName(c.Request.Context(), donorID, body.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

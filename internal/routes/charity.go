package routes

import (
	"net/http"

	"Kindfund/internal/contracts"
	"Kindfund/internal/domain/charity"
	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/pkg"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateCharity(c *gin.Context) {
	var body contracts.CharityCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondBindError(c, err)
		return
	}

	ownerID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	created, err := h.CharityService.CreateCharity(c.Request.Context(), charity.CreateRequest{
		OwnerId:     ownerID,
		Name:        body.Name,
		Description: body.Description,
		Email:       body.Email,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateCharity(c *gin.Context) {
	var body contracts.CharityUpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondBindError(c, err)
		return
	}

	actor, err := h.GetActor(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	id, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := h.CharityService.UpdateCharity(c.Request.Context(), id, actor, charity.UpdateRequest{
		Name:        body.Name,
		Description: body.Description,
		Email:       body.Email,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) GetCharity(c *gin.Context) {
	id, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	found, err := h.CharityService.GetCharity(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *Handler) GetCharityStats(c *gin.Context) {
	id, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	stats, err := h.CharityService.GetCharityStats(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListCharities(c *gin.Context) {
	filters := &charity.Filters{Search: c.Query("search")}

	// a listagem publica mostra apenas instituicoes aprovadas
	status := charity.VerificationApproved
	if raw := c.Query("status"); raw != "" {
		status = charity.VerificationStatus(raw)
		if !status.IsValid() {
			h.respondError(c, appErrors.NewValidationError("status", "status inválido"))
			return
		}
	}
	filters.Status = &status

	ownerID, err := h.parseIDQuery(c, "owner_id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	filters.OwnerId = ownerID

	pagination := h.parsePagination(c)
	items, total, err := h.CharityService.ListCharities(c.Request.Context(), filters, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination, total))
}

func (h *Handler) ApproveCharity(c *gin.Context) {
	actor, err := h.GetActor(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	id, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := h.CharityService.ApproveCharity(c.Request.Context(), id, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) RejectCharity(c *gin.Context) {
	var body contracts.ReasonRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondBindError(c, err)
		return
	}

	actor, err := h.GetActor(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	id, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := h.CharityService.RejectCharity(c.Request.Context(), id, actor, body.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

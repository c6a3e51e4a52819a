package routes

import (
	"context"
	"net/http"

	"Kindfund/internal/contracts"
	"Kindfund/internal/domain/campaign"
	"Kindfund/internal/domain/shared"
	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

func toRecurrence(body *contracts.RecurrenceRequest, fallbackStart *contracts.CampaignCreateRequest) *campaign.RecurrenceRequest {
	if body == nil {
		return nil
	}
	req := &campaign.RecurrenceRequest{
		Type:        shared.Frequency(body.Type),
		Interval:    body.Interval,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
		AutoPublish: body.AutoPublish,
	}
	if req.Interval == 0 {
		req.Interval = 1
	}
	if req.StartDate == nil && fallbackStart != nil {
		req.StartDate = fallbackStart.StartDate
	}
	return req
}

func (h *Handler) CreateCampaign(c *gin.Context) {
	var body contracts.CampaignCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondBindError(c, err)
		return
	}

	actor, err := h.GetActor(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	charityID, err := pkg.ParseID(body.CharityID)
	if err != nil {
		h.respondError(c, appErrors.NewValidationError("charity_id", "formato inválido"))
		return
	}

	req := campaign.CreateRequest{
		CharityId:   charityID,
		Title:       body.Title,
		Description: body.Description,
		GoalAmount:  body.GoalAmount,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
		Recurrence:  toRecurrence(body.Recurrence, &body),
	}

	created, err := h.CampaignService.CreateCampaign(c.Request.Context(), actor, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateCampaign(c *gin.Context) {
	var body contracts.CampaignUpdateRequest
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

	req := campaign.UpdateRequest{
		Title:       body.Title,
		Description: body.Description,
		GoalAmount:  body.GoalAmount,
		EndDate:     body.EndDate,
		Recurrence:  toRecurrence(body.Recurrence, nil),
	}

	updated, err := h.CampaignService.UpdateCampaign(c.Request.Context(), id, actor, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteCampaign(c *gin.Context) {
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

	if err := h.CampaignService.DeleteCampaign(c.Request.Context(), id, actor); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.MessageResponse{Message: "Campanha removida com sucesso"})
}

func (h *Handler) GetCampaign(c *gin.Context) {
	id, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	found, err := h.CampaignService.GetCampaign(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *Handler) GetCampaignProgress(c *gin.Context) {
	id, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	progress, err := h.CampaignService.GetProgress(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

func (h *Handler) ListCampaigns(c *gin.Context) {
	filters := &campaign.Filters{}

	charityID, err := h.parseIDQuery(c, "charity_id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	filters.CharityId = charityID

	parentID, err := h.parseIDQuery(c, "parent_id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	filters.ParentId = parentID

	// sem filtro explicito a listagem publica mostra apenas campanhas publicadas
	status := campaign.StatusPublished
	if raw := c.Query("status"); raw != "" {
		status = campaign.Status(raw)
		if !status.IsValid() {
			h.respondError(c, appErrors.NewValidationError("status", "status inválido"))
			return
		}
	}
	filters.Status = &status

	pagination := h.parsePagination(c)
	items, total, err := h.CampaignService.ListCampaigns(c.Request.Context(), filters, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination, total))
}

func (h *Handler) PublishCampaign(c *gin.Context) {
	h.changeCampaignStatus(c, h.CampaignService.PublishCampaign)
}

func (h *Handler) CloseCampaign(c *gin.Context) {
	h.changeCampaignStatus(c, h.CampaignService.CloseCampaign)
}

func (h *Handler) ArchiveCampaign(c *gin.Context) {
	h.changeCampaignStatus(c, h.CampaignService.ArchiveCampaign)
}

func (h *Handler) changeCampaignStatus(c *gin.Context, apply func(ctx context.Context, id ulid.ULID, actor shared.Actor) (*campaign.Campaign, error)) {
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

	updated, err := apply(c.Request.Context(), id, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

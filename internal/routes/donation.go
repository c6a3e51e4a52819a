package routes

import (
	"context"
	"net/http"
	"strconv"

	"Kindfund/internal/contracts"
	"Kindfund/internal/domain/donation"
	"Kindfund/internal/domain/shared"
	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

func (h *Handler) CreateDonation(c *gin.Context) {
	var body contracts.DonationCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondBindError(c, err)
		return
	}

	donorID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	charityID, err := pkg.ParseID(body.CharityID)
	if err != nil {
		h.respondError(c, appErrors.NewValidationError("charity_id", "formato inválido"))
		return
	}
	campaignID, err := pkg.ParseOptionalID(body.CampaignID)
	if err != nil {
		h.respondError(c, appErrors.NewValidationError("campaign_id", "formato inválido"))
		return
	}

	req := donation.CreateRequest{
		DonorId:         donorID,
		CharityId:       charityID,
		CampaignId:      campaignID,
		Amount:          body.Amount,
		Status:          donation.StatusPending,
		PaymentMethod:   body.PaymentMethod,
		ReferenceNumber: body.ReferenceNumber,
		Message:         body.Message,
		IsAnonymous:     body.IsAnonymous,
	}
	if body.Recurring != nil {
		req.Recurring = &donation.RecurringRequest{
			Frequency: shared.Frequency(body.Recurring.Frequency),
			StartDate: body.Recurring.StartDate,
			EndDate:   body.Recurring.EndDate,
		}
	}

	created, err := h.DonationService.CreateDonation(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateDonation(c *gin.Context) {
	var body contracts.DonationUpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.respondBindError(c, err)
		return
	}

	donorID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	id, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	updated, err := h.DonationService.UpdateDonation(c.Request.Context(), id, donorID, donation.UpdateRequest{
		Amount:      body.Amount,
		Message:     body.Message,
		IsAnonymous: body.IsAnonymous,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) GetDonation(c *gin.Context) {
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

	found, err := h.DonationService.GetDonation(c.Request.Context(), id, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *Handler) ListMyDonations(c *gin.Context) {
	donorID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	filters, err := h.parseDonationFilters(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pagination := h.parsePagination(c)
	items, total, err := h.DonationService.ListDonorDonations(c.Request.Context(), donorID, filters, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination, total))
}

func (h *Handler) ListCharityDonations(c *gin.Context) {
	h.listManagedDonations(c, h.DonationService.ListCharityDonations)
}

func (h *Handler) ListCampaignDonations(c *gin.Context) {
	h.listManagedDonations(c, h.DonationService.ListCampaignDonations)
}

type managedLister func(ctx context.Context, id ulid.ULID, actor shared.Actor, filters *donation.Filters, pagination *pkg.PaginationParams) ([]*donation.Donation, int64, error)

func (h *Handler) listManagedDonations(c *gin.Context, list managedLister) {
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

	filters, err := h.parseDonationFilters(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	pagination := h.parsePagination(c)
	items, total, err := list(c.Request.Context(), id, actor, filters, pagination)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.NewPaginatedResponse(items, pagination, total))
}

func (h *Handler) ConfirmDonation(c *gin.Context) {
	actor, id, ok := h.donationTarget(c)
	if !ok {
		return
	}

	updated, err := h.DonationService.ConfirmDonation(c.Request.Context(), id, actor)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) RejectDonation(c *gin.Context) {
	h.transitionWithReason(c, h.DonationService.RejectDonation)
}

func (h *Handler) RefundDonation(c *gin.Context) {
	h.transitionWithReason(c, h.DonationService.RefundDonation)
}

func (h *Handler) transitionWithReason(c *gin.Context, apply func(ctx context.Context, id ulid.ULID, actor shared.Actor, reason string) (*donation.Donation, error)) {
	var body contracts.ReasonRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			h.respondBindError(c, err)
			return
		}
	}

	actor, id, ok := h.donationTarget(c)
	if !ok {
		return
	}

	updated, err := apply(c.Request.Context(), id, actor, body.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteDonation(c *gin.Context) {
	actor, id, ok := h.donationTarget(c)
	if !ok {
		return
	}

	if err := h.DonationService.DeleteDonation(c.Request.Context(), id, actor); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.MessageResponse{Message: "Doação removida com sucesso"})
}

func (h *Handler) CancelRecurringDonation(c *gin.Context) {
	actor, id, ok := h.donationTarget(c)
	if !ok {
		return
	}

	updated, err := h.DonationService.CancelRecurring(c.Request.Context(), id, actor.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) donationTarget(c *gin.Context) (shared.Actor, ulid.ULID, bool) {
	actor, err := h.GetActor(c)
	if err != nil {
		h.respondError(c, err)
		return shared.Actor{}, ulid.ULID{}, false
	}

	id, err := h.parseIDParam(c, "id")
	if err != nil {
		h.respondError(c, err)
		return shared.Actor{}, ulid.ULID{}, false
	}

	return actor, id, true
}

func (h *Handler) parseDonationFilters(c *gin.Context) (*donation.Filters, error) {
	filters := &donation.Filters{}

	if raw := c.Query("status"); raw != "" {
		status := donation.Status(raw)
		filters.Status = &status
	}

	if raw := c.Query("recurring"); raw != "" {
		recurring, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, appErrors.NewValidationError("recurring", "deve ser true ou false")
		}
		filters.Recurring = &recurring
	}

	campaignID, err := h.parseIDQuery(c, "campaign_id")
	if err != nil {
		return nil, err
	}
	filters.CampaignId = campaignID

	return filters, nil
}

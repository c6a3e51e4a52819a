package routes

import (
	"context"
	"net/http"

	"Kindfund/internal/contracts"
	"Kindfund/internal/domain/ledger"
	"Kindfund/internal/domain/milestone"
	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/logger"
	"Kindfund/internal/pkg"
	"Kindfund/internal/scheduler"

	"github.com/gin-gonic/gin"
)

func (h *Handler) RecalculateTotals(c *gin.Context) {
	var body contracts.RecalculateTotalsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			h.respondBindError(c, err)
			return
		}
	}

	campaignID, err := pkg.ParseOptionalID(body.CampaignID)
	if err != nil {
		h.respondError(c, appErrors.NewValidationError("campaign_id", "formato inválido"))
		return
	}
	charityID, err := pkg.ParseOptionalID(body.CharityID)
	if err != nil {
		h.respondError(c, appErrors.NewValidationError("charity_id", "formato inválido"))
		return
	}

	opts := ledger.RecalculateOptions{
		CampaignID:       campaignID,
		CharityID:        charityID,
		IncludeCharities: body.IncludeCharities,
		DryRun:           body.DryRun,
		BatchSize:        body.BatchSize,
	}

	var report *ledger.Report
	err = h.Jobs.WithLock(c.Request.Context(), scheduler.JobRecalculateTotals, func(ctx context.Context) error {
		var runErr error
		report, runErr = h.LedgerService.RecalculateAll(ctx, opts)
		return runErr
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	actorID, _ := h.GetUserIDFromContext(c)
	logger.Info().
		Str("actor_id", actorID.String()).
		Bool("dry_run", report.DryRun).
		Int("corrected", len(report.Corrected)).
		Msg("Recalculo de totais solicitado via API")

	c.JSON(http.StatusOK, report)
}

func (h *Handler) RefreshDonorMilestones(c *gin.Context) {
	donorID, err := h.parseIDQuery(c, "donor_id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	var result *milestone.RefreshResult
	err = h.Jobs.WithLock(c.Request.Context(), scheduler.JobRefreshDonorMilestones, func(ctx context.Context) error {
		var runErr error
		result, runErr = h.MilestoneService.RefreshDonorMilestones(ctx, milestone.RefreshOptions{DonorID: donorID})
		return runErr
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

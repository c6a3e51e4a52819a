package routes

import (
	"context"
	"strconv"

	"Kindfund/internal/domain/campaign"
	"Kindfund/internal/domain/charity"
	"Kindfund/internal/domain/dashboard"
	"Kindfund/internal/domain/donation"
	"Kindfund/internal/domain/donor"
	"Kindfund/internal/domain/ledger"
	"Kindfund/internal/domain/milestone"
	"Kindfund/internal/domain/shared"
	appErrors "Kindfund/internal/errors"
	"Kindfund/internal/logger"
	"Kindfund/internal/middleware"
	"Kindfund/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

// JobRunner executa uma tarefa de manutencao sob o mesmo lock dos jobs agendados.
type JobRunner interface {
	WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

type Handler struct {
	DonorService     *donor.Service
	CharityService   *charity.Service
	CampaignService  *campaign.Service
	DonationService  *donation.Service
	LedgerService    *ledger.Service
	MilestoneService *milestone.Service
	DashboardService *dashboard.Service
	Jobs             JobRunner
}

func (h *Handler) GetUserIDFromContext(c *gin.Context) (ulid.ULID, error) {
	userIDStr := c.GetString(middleware.ContextUserID)
	if userIDStr == "" {
		return ulid.ULID{}, appErrors.ErrUnauthorized
	}

	userID, err := pkg.ParseID(userIDStr)
	if err != nil {
		return ulid.ULID{}, appErrors.ErrUnauthorized.WithError(err)
	}

	return userID, nil
}

func (h *Handler) GetActor(c *gin.Context) (shared.Actor, error) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		return shared.Actor{}, err
	}

	role, _ := c.Get(middleware.ContextRole)
	r, ok := role.(shared.Role)
	if !ok {
		r = shared.RoleDonor
	}

	return shared.Actor{ID: userID, Role: r}, nil
}

func (h *Handler) parseIDParam(c *gin.Context, name string) (ulid.ULID, error) {
	id, err := pkg.ParseID(c.Param(name))
	if err != nil {
		return ulid.ULID{}, appErrors.NewValidationError(name, "formato inválido")
	}
	return id, nil
}

func (h *Handler) parseIDQuery(c *gin.Context, name string) (*ulid.ULID, error) {
	value, ok := c.GetQuery(name)
	if !ok {
		return nil, nil
	}
	id, err := pkg.ParseOptionalID(&value)
	if err != nil {
		return nil, appErrors.NewValidationError(name, "formato inválido")
	}
	return id, nil
}

func (h *Handler) parsePagination(c *gin.Context) *pkg.PaginationParams {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(pkg.DefaultPageSize)))
	if err != nil || limit < 1 {
		limit = pkg.DefaultPageSize
	}

	return pkg.NormalizePagination(&pkg.PaginationParams{Page: page, Limit: limit})
}

func (h *Handler) respondBindError(c *gin.Context, err error) {
	h.respondError(c, appErrors.ParseValidationErrors(err))
}

func (h *Handler) respondError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	event := logger.Warn()
	if appErr.StatusCode >= 500 {
		event = logger.Error()
	}
	event = event.Str("code", appErr.Code).Str("path", c.FullPath()).Str("method", c.Request.Method)
	if appErr.Err != nil {
		event = event.Err(appErr.Err)
	}
	event.Msg("request_error")

	payload := gin.H{
		"error":   appErr.Code,
		"message": appErr.Message,
	}
	if len(appErr.Details) > 0 {
		payload["details"] = appErr.Details
	}
	c.JSON(appErr.StatusCode, payload)
}

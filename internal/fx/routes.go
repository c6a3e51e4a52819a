package fx

import (
	"Kindfund/internal/domain/campaign"
	"Kindfund/internal/domain/charity"
	"Kindfund/internal/domain/dashboard"
	"Kindfund/internal/domain/donation"
	"Kindfund/internal/domain/donor"
	"Kindfund/internal/domain/ledger"
	"Kindfund/internal/domain/milestone"
	"Kindfund/internal/routes"
	"Kindfund/internal/scheduler"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

// RoutesModule fornece os handlers HTTP
var RoutesModule = fx.Module("routes",
	fx.Provide(
		newHandler,
		newHealthHandler,
	),
)

func newHandler(
	donorSvc *donor.Service,
	charitySvc *charity.Service,
	campaignSvc *campaign.Service,
	donationSvc *donation.Service,
	ledgerSvc *ledger.Service,
	milestoneSvc *milestone.Service,
	dashboardSvc *dashboard.Service,
	sched *scheduler.Scheduler,
) *routes.Handler {
	return &routes.Handler{
		DonorService:     donorSvc,
		CharityService:   charitySvc,
		CampaignService:  campaignSvc,
		DonationService:  donationSvc,
		LedgerService:    ledgerSvc,
		MilestoneService: milestoneSvc,
		DashboardService: dashboardSvc,
		Jobs:             sched,
	}
}

func newHealthHandler(db *gorm.DB) *routes.HealthHandler {
	return &routes.HealthHandler{DB: db}
}

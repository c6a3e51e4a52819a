package fx

import (
	"Kindfund/internal/domain/campaign"
	"Kindfund/internal/domain/charity"
	"Kindfund/internal/domain/dashboard"
	"Kindfund/internal/domain/donation"
	"Kindfund/internal/domain/donor"
	"Kindfund/internal/domain/ledger"
	"Kindfund/internal/domain/milestone"
	"Kindfund/internal/domain/shared"
	"Kindfund/internal/infrastructure"
	"Kindfund/internal/observability"

	"go.uber.org/fx"
)

// DomainModule fornece todos os services do domínio
var DomainModule = fx.Module("domain",
	fx.Provide(
		newDonorService,
		newUserCheckerService,
		newCharityService,
		newCampaignService,
		newLedgerService,
		newMilestoneService,
		newDonationService,
		newDashboardService,
	),
)

func newDonorService(repo *infrastructure.DonorRepository) *donor.Service {
	return donor.NewService(repo)
}

func newUserCheckerService(donorSvc *donor.Service) *shared.UserCheckerService {
	return shared.NewUserCheckerService(donorSvc)
}

func newCharityService(
	repo *infrastructure.CharityRepository,
	userChecker *shared.UserCheckerService,
) *charity.Service {
	return &charity.Service{
		BaseService: shared.BaseService{UserChecker: userChecker},
		Repository:  repo,
	}
}

func newCampaignService(
	repo *infrastructure.CampaignRepository,
	charitySvc *charity.Service,
	tx shared.TxManager,
	metrics *observability.Metrics,
) *campaign.Service {
	return &campaign.Service{
		Repository: repo,
		Charities:  charitySvc,
		Tx:         tx,
		Metrics:    metrics,
	}
}

func newLedgerService(
	repo *infrastructure.LedgerRepository,
	tx shared.TxManager,
	metrics *observability.Metrics,
) *ledger.Service {
	return &ledger.Service{
		Repository: repo,
		Tx:         tx,
		Metrics:    metrics,
	}
}

func newMilestoneService(
	repo *infrastructure.MilestoneRepository,
	donorSvc *donor.Service,
	metrics *observability.Metrics,
) *milestone.Service {
	return &milestone.Service{
		Repository: repo,
		Donors:     donorSvc,
		Metrics:    metrics,
	}
}

func newDonationService(
	repo *infrastructure.DonationRepository,
	userChecker *shared.UserCheckerService,
	ledgerSvc *ledger.Service,
	charitySvc *charity.Service,
	campaignSvc *campaign.Service,
	milestoneSvc *milestone.Service,
	tx shared.TxManager,
	metrics *observability.Metrics,
) *donation.Service {
	return &donation.Service{
		BaseService: shared.BaseService{UserChecker: userChecker},
		Repository:  repo,
		Ledger:      ledgerSvc,
		Charities:   charitySvc,
		Campaigns:   campaignSvc,
		Milestones:  milestoneSvc,
		Tx:          tx,
		Metrics:     metrics,
	}
}

func newDashboardService(
	repo *infrastructure.DashboardRepository,
	milestoneSvc *milestone.Service,
) *dashboard.Service {
	return &dashboard.Service{
		Repository: repo,
		Milestones: milestoneSvc,
	}
}

package dashboard

import (
	"context"
	"time"

	"Kindfund/internal/domain/milestone"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

const recentDonationsLimit = 5

type MilestoneLister interface {
	ListDonorMilestones(ctx context.Context, donorID ulid.ULID) ([]*milestone.DonorMilestone, error)
}

type Service struct {
	Repository Repository
	Milestones MilestoneLister
}

func (s *Service) GetDonorDashboard(ctx context.Context, donorID ulid.ULID) (*DonorDashboard, error) {
	milestones, err := s.Milestones.ListDonorMilestones(ctx, donorID)
	if err != nil {
		return nil, err
	}

	summary, err := s.Repository.GetDonorSummary(ctx, donorID)
	if err != nil {
		return nil, err
	}

	recurring, err := s.Repository.CountActiveRecurring(ctx, donorID)
	if err != nil {
		return nil, err
	}
	summary.ActiveRecurring = recurring

	recent, err := s.Repository.GetRecentDonations(ctx, donorID, recentDonationsLimit)
	if err != nil {
		return nil, err
	}

	return &DonorDashboard{
		Summary:         summary,
		RecentDonations: recent,
		Milestones:      summarizeMilestones(milestones),
	}, nil
}

func summarizeMilestones(all []*milestone.DonorMilestone) *MilestoneSummary {
	out := &MilestoneSummary{Total: len(all), Recent: []*MilestoneItem{}}
	var next *milestone.DonorMilestone

	for _, m := range all {
		if m.IsAchieved() {
			out.Achieved++
			if len(out.Recent) < 3 {
				out.Recent = append(out.Recent, toItem(m))
			}
			continue
		}
		if next == nil || m.Progress() > next.Progress() {
			next = m
		}
	}
	if next != nil {
		out.Next = toItem(next)
	}
	return out
}

func toItem(m *milestone.DonorMilestone) *MilestoneItem {
	return &MilestoneItem{
		Key:        m.Key,
		Title:      m.Title,
		Icon:       m.Icon,
		Progress:   m.Progress(),
		AchievedAt: m.AchievedAt,
	}
}

type DonorDashboard struct {
	Summary         *DonorSummary      `json:"summary"`
	RecentDonations []*DonationSummary `json:"recentDonations"`
	Milestones      *MilestoneSummary  `json:"milestones"`
}

type DonorSummary struct {
	TotalDonated       decimal.Decimal `json:"totalDonated"`
	DonationsCount     int64           `json:"donationsCount"`
	CampaignsSupported int64           `json:"campaignsSupported"`
	CharitiesSupported int64           `json:"charitiesSupported"`
	PendingDonations   int64           `json:"pendingDonations"`
	ActiveRecurring    int64           `json:"activeRecurring"`
}

type DonationSummary struct {
	Id            string          `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	CharityId     string          `json:"charityId"`
	CharityName   string          `json:"charityName"`
	CampaignId    *string         `json:"campaignId,omitempty"`
	CampaignTitle *string         `json:"campaignTitle,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type MilestoneSummary struct {
	Total    int              `json:"total"`
	Achieved int              `json:"achieved"`
	Recent   []*MilestoneItem `json:"recent"`
	Next     *MilestoneItem   `json:"next,omitempty"`
}

type MilestoneItem struct {
	Key        string     `json:"key"`
	Title      string     `json:"title"`
	Icon       string     `json:"icon"`
	Progress   int        `json:"progress"`
	AchievedAt *time.Time `json:"achievedAt,omitempty"`
}

package milestone

import (
	"Kindfund/internal/pkg"

	"github.com/shopspring/decimal"
)

type Statistic string

const (
	StatDonationCount      Statistic = "donation_count"
	StatTotalDonated       Statistic = "total_donated"
	StatCampaignsSupported Statistic = "campaigns_supported"
	StatCharitiesSupported Statistic = "charities_supported"
	StatMembershipDays     Statistic = "membership_days"
)

type Definition struct {
	Key         string
	Title       string
	Description string
	Icon        string
	Statistic   Statistic
	Threshold   int64
}

var Catalogue = []Definition{
	{Key: "first_donation", Title: "Primeira doação", Description: "Fez a primeira doação confirmada", Icon: "heart", Statistic: StatDonationCount, Threshold: 1},
	{Key: "donations_5", Title: "Doador frequente", Description: "5 doações confirmadas", Icon: "repeat", Statistic: StatDonationCount, Threshold: 5},
	{Key: "donations_10", Title: "Doador fiel", Description: "10 doações confirmadas", Icon: "star", Statistic: StatDonationCount, Threshold: 10},
	{Key: "donations_25", Title: "Doador dedicado", Description: "25 doações confirmadas", Icon: "award", Statistic: StatDonationCount, Threshold: 25},
	{Key: "donated_1000", Title: "Apoiador", Description: "1.000 doados no total", Icon: "coins", Statistic: StatTotalDonated, Threshold: 1000},
	{Key: "donated_5000", Title: "Benfeitor", Description: "5.000 doados no total", Icon: "gem", Statistic: StatTotalDonated, Threshold: 5000},
	{Key: "donated_10000", Title: "Patrono", Description: "10.000 doados no total", Icon: "crown", Statistic: StatTotalDonated, Threshold: 10000},
	{Key: "donated_50000", Title: "Grande patrono", Description: "50.000 doados no total", Icon: "trophy", Statistic: StatTotalDonated, Threshold: 50000},
	{Key: "campaigns_3", Title: "Multicausa", Description: "Apoiou 3 campanhas diferentes", Icon: "flag", Statistic: StatCampaignsSupported, Threshold: 3},
	{Key: "campaigns_10", Title: "Embaixador de campanhas", Description: "Apoiou 10 campanhas diferentes", Icon: "megaphone", Statistic: StatCampaignsSupported, Threshold: 10},
	{Key: "charities_3", Title: "Coração aberto", Description: "Apoiou 3 instituições diferentes", Icon: "hands", Statistic: StatCharitiesSupported, Threshold: 3},
	{Key: "member_1_year", Title: "Um ano conosco", Description: "Membro há 1 ano", Icon: "calendar", Statistic: StatMembershipDays, Threshold: 365},
	{Key: "member_2_years", Title: "Dois anos conosco", Description: "Membro há 2 anos", Icon: "calendar-check", Statistic: StatMembershipDays, Threshold: 730},
}

func (s *DonorStats) Value(stat Statistic) decimal.Decimal {
	switch stat {
	case StatDonationCount:
		return decimal.NewFromInt(s.DonationCount)
	case StatTotalDonated:
		return s.TotalDonated
	case StatCampaignsSupported:
		return decimal.NewFromInt(s.CampaignsSupported)
	case StatCharitiesSupported:
		return decimal.NewFromInt(s.CharitiesSupported)
	case StatMembershipDays:
		return decimal.NewFromInt(int64(s.MembershipDays))
	default:
		return decimal.Zero
	}
}

// progressOf devolve min(100, floor(current*100/threshold)).
func progressOf(current decimal.Decimal, threshold int64) int {
	return pkg.Percent(current, decimal.NewFromInt(threshold))
}

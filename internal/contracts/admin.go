package contracts

type RecalculateTotalsRequest struct {
	CampaignID       *string `json:"campaign_id" binding:"omitempty,len=26"`
	CharityID        *string `json:"charity_id" binding:"omitempty,len=26"`
	IncludeCharities bool    `json:"include_charities"`
	DryRun           bool    `json:"dry_run"`
	BatchSize        int     `json:"batch_size" binding:"omitempty,gte=1,lte=1000"`
}

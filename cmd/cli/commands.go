package main

import (
	"context"
	"fmt"
	"io"

	"Kindfund/internal/domain/ledger"
	"Kindfund/internal/domain/milestone"
	"Kindfund/internal/pkg"
	"Kindfund/internal/scheduler"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "kindfund-cli",
		Short:        "Tarefas de manutenção do Kindfund",
		SilenceUsage: true,
	}

	root.AddCommand(
		newRecalculateCmd(),
		newProcessCampaignsCmd(),
		newProcessDonationsCmd(),
		newRefreshMilestonesCmd(),
	)
	return root
}

type recalculateFlags struct {
	campaign         string
	charity          string
	includeCharities bool
	dryRun           bool
	batchSize        int
}

func (f recalculateFlags) options() (ledger.RecalculateOptions, error) {
	opts := ledger.RecalculateOptions{
		IncludeCharities: f.includeCharities,
		DryRun:           f.dryRun,
		BatchSize:        f.batchSize,
	}

	var err error
	if opts.CampaignID, err = pkg.ParseOptionalID(&f.campaign); err != nil {
		return opts, fmt.Errorf("--campaign: %w", err)
	}
	if opts.CharityID, err = pkg.ParseOptionalID(&f.charity); err != nil {
		return opts, fmt.Errorf("--charity: %w", err)
	}
	if opts.BatchSize < 0 {
		return opts, fmt.Errorf("--batch-size deve ser positivo")
	}
	return opts, nil
}

func newRecalculateCmd() *cobra.Command {
	var flags recalculateFlags

	cmd := &cobra.Command{
		Use:   scheduler.JobRecalculateTotals,
		Short: "Recalcula total arrecadado e doadores a partir das doações",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}

			return withServices(cmd.Context(), func(ctx context.Context, s *services) error {
				var report *ledger.Report
				err := s.Scheduler.WithLock(ctx, scheduler.JobRecalculateTotals, func(ctx context.Context) error {
					var runErr error
					report, runErr = s.Ledger.RecalculateAll(ctx, opts)
					return runErr
				})
				if report != nil {
					printReport(cmd.OutOrStdout(), report)
				}
				return err
			})
		},
	}

	cmd.Flags().StringVar(&flags.campaign, "campaign", "", "recalcula apenas esta campanha")
	cmd.Flags().StringVar(&flags.charity, "charity", "", "recalcula apenas esta instituição")
	cmd.Flags().BoolVar(&flags.includeCharities, "include-charities", false, "inclui as instituições na varredura completa")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "apenas relata divergências, sem gravar")
	cmd.Flags().IntVar(&flags.batchSize, "batch-size", ledger.DefaultBatchSize, "tamanho do lote da varredura")
	return cmd
}

func newProcessCampaignsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   scheduler.JobProcessRecurringCampaigns,
		Short: "Gera as ocorrências vencidas das campanhas recorrentes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, s *services) error {
				return s.Scheduler.WithLock(ctx, scheduler.JobProcessRecurringCampaigns, func(ctx context.Context) error {
					result, err := s.Campaigns.ProcessRecurringCampaigns(ctx, s.Campaigns.Clock.Now())
					if result != nil {
						fmt.Fprintf(cmd.OutOrStdout(), "campanhas verificadas: %d\nocorrências criadas: %d\nfalhas: %d\n",
							result.Scanned, result.Created, result.Failed)
					}
					return err
				})
			})
		},
	}
}

func newProcessDonationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   scheduler.JobProcessRecurringDonations,
		Short: "Gera as parcelas vencidas das doações recorrentes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd.Context(), func(ctx context.Context, s *services) error {
				return s.Scheduler.WithLock(ctx, scheduler.JobProcessRecurringDonations, func(ctx context.Context) error {
					result, err := s.Donations.ProcessRecurringDonations(ctx, s.Donations.Clock.Now())
					if result != nil {
						fmt.Fprintf(cmd.OutOrStdout(), "modelos verificados: %d\nparcelas criadas: %d\nignoradas: %d\nfalhas: %d\n",
							result.Scanned, result.Created, result.Skipped, result.Failed)
					}
					return err
				})
			})
		},
	}
}

func newRefreshMilestonesCmd() *cobra.Command {
	var donorFlag string

	cmd := &cobra.Command{
		Use:   scheduler.JobRefreshDonorMilestones,
		Short: "Recalcula o progresso dos marcos dos doadores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			donorID, err := pkg.ParseOptionalID(&donorFlag)
			if err != nil {
				return fmt.Errorf("--donor: %w", err)
			}

			return withServices(cmd.Context(), func(ctx context.Context, s *services) error {
				return s.Scheduler.WithLock(ctx, scheduler.JobRefreshDonorMilestones, func(ctx context.Context) error {
					result, err := s.Milestones.RefreshDonorMilestones(ctx, milestone.RefreshOptions{DonorID: donorID})
					if result != nil {
						fmt.Fprintf(cmd.OutOrStdout(), "doadores verificados: %d\nmarcos conquistados: %d\nfalhas: %d\n",
							result.DonorsScanned, result.MilestonesUnlocked, result.Failed)
					}
					return err
				})
			})
		},
	}

	cmd.Flags().StringVar(&donorFlag, "donor", "", "processa apenas este doador")
	return cmd
}

func printReport(w io.Writer, report *ledger.Report) {
	mode := "gravado"
	if report.DryRun {
		mode = "simulação"
	}
	fmt.Fprintf(w, "modo: %s\ncampanhas verificadas: %d\ninstituições verificadas: %d\ndivergências: %d\nfalhas: %d\n",
		mode, report.CampaignsScanned, report.CharitiesScanned, len(report.Corrected), report.Failed)

	for _, d := range report.Corrected {
		fmt.Fprintf(w, "  %s %s: total %s -> %s, doadores %d -> %d\n",
			d.Kind, d.ID,
			d.Before.Amount.StringFixed(2), d.After.Amount.StringFixed(2),
			d.Before.Donors, d.After.Donors)
	}
}

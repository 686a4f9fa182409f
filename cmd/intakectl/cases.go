package main

import (
	"fmt"

	"legal_intake_backend/internal/adapters"
	"legal_intake_backend/internal/cases/promotion"
	casesrepo "legal_intake_backend/internal/cases/repository"
	"legal_intake_backend/internal/events"
	"legal_intake_backend/internal/leads/management"
	leadsrepo "legal_intake_backend/internal/leads/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func casesCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cases", Short: "Manage cases"}
	cmd.AddCommand(casesPromoteCmd())
	return cmd
}

func casesPromoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <lead-id>",
		Short: "Open a case for a lead, or show the one it already has",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			leadID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid lead id %q", args[0])
			}

			return withPool(cmd.Context(), func(pool *pgxpool.Pool) error {
				log := cliLogger()
				// Events have no subscribers here; notifications are the API's job.
				bus := events.NewInMemoryBus(log)
				leads := leadsrepo.New(pool)
				reader := adapters.NewCaseLeadReader(leads, management.New(leads, bus))
				svc := promotion.New(casesrepo.New(pool), reader, bus, log)

				result, err := svc.Promote(cmd.Context(), leadID)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(result)
				}
				verb := "existing case"
				if result.Created {
					verb = "created case"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", verb, result.ShortCode, result.CaseID)
				return nil
			})
		},
	}
}

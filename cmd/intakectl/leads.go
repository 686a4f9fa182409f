package main

import (
	"os"

	"legal_intake_backend/internal/events"
	"legal_intake_backend/internal/leads/management"
	"legal_intake_backend/internal/leads/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func leadsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "leads", Short: "Inspect leads"}
	cmd.AddCommand(leadsListCmd())
	return cmd
}

func leadsListCmd() *cobra.Command {
	var filter management.ListFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leads, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd.Context(), func(pool *pgxpool.Pool) error {
				svc := management.New(repository.New(pool), events.NewInMemoryBus(cliLogger()))
				result, err := svc.List(cmd.Context(), filter)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(result)
				}

				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Code", "Name", "Contact", "Channel", "Status", "Created"})
				for _, l := range result.Items {
					tw.AppendRow(table.Row{l.ShortCode, l.Name, leadContact(l), l.Channel, l.Status, l.CreatedAt.Format("2006-01-02 15:04")})
				}
				tw.AppendFooter(table.Row{"", "", "", "", "total", result.Total})
				tw.Render()
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filter.Status, "status", "", "filter by status (nuevo, contactado, descartado, valido)")
	cmd.Flags().StringVar(&filter.Channel, "channel", "", "filter by channel")
	cmd.Flags().StringVar(&filter.Search, "search", "", "search name, email, phone or code")
	cmd.Flags().IntVar(&filter.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&filter.PageSize, "page-size", 20, "rows per page")
	return cmd
}

func leadContact(l repository.Lead) string {
	if l.Email != nil && *l.Email != "" {
		return *l.Email
	}
	if l.Phone != nil {
		return *l.Phone
	}
	return ""
}

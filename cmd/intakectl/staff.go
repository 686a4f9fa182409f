package main

import (
	"fmt"

	"legal_intake_backend/internal/auth/repository"
	"legal_intake_backend/internal/auth/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func staffCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "staff", Short: "Manage staff accounts"}
	cmd.AddCommand(staffCreateCmd())
	return cmd
}

func staffCreateCmd() *cobra.Command {
	var in service.CreateStaffInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a staff account",
		Long:  "Creates a staff account. The password may come from --password or INTAKE_STAFF_PASSWORD.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password == "" {
				in.Password = viper.GetString("staff-password")
			}

			return withPool(cmd.Context(), func(pool *pgxpool.Pool) error {
				// Token settings are not needed to create accounts.
				svc := service.New(repository.New(pool), nil, cliLogger())
				user, err := svc.CreateStaff(cmd.Context(), in)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(map[string]any{
						"id":          user.ID,
						"email":       user.Email,
						"displayName": user.DisplayName,
						"role":        user.Role,
						"createdAt":   user.CreatedAt,
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", user.Role, user.Email, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.DisplayName, "name", "", "display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password (min 10 characters)")
	cmd.Flags().StringVar(&in.Role, "role", "staff", "staff or admin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

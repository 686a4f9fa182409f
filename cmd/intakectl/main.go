// Command intakectl runs operator tasks against the intake database:
// migrations, lead listing, case promotion and staff accounts.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"legal_intake_backend/platform/db"
	"legal_intake_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "INTAKE"

var rootCmd = &cobra.Command{
	Use:           "intakectl",
	Short:         "Operator CLI for the legal intake backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	// The API's own variable works too, so one .env serves both.
	_ = viper.BindEnv("database-url", envPrefix+"_DATABASE_URL", "DATABASE_URL")
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("database-url", "", "Postgres connection string")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().Bool("verbose", false, "log debug output to stderr")
	_ = viper.BindPFlag("database-url", rootCmd.PersistentFlags().Lookup("database-url"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func registerCommands() {
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(leadsCmd())
	rootCmd.AddCommand(casesCmd())
	rootCmd.AddCommand(staffCmd())
}

type cliConfig struct {
	databaseURL string
}

func (c cliConfig) GetDatabaseURL() string { return c.databaseURL }

// withPool opens a pool for the duration of fn.
func withPool(ctx context.Context, fn func(pool *pgxpool.Pool) error) error {
	url := strings.TrimSpace(viper.GetString("database-url"))
	if url == "" {
		return errors.New("database url is required (--database-url or " + envPrefix + "_DATABASE_URL)")
	}

	pool, err := db.NewPool(ctx, cliConfig{databaseURL: url})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(pool)
}

func cliLogger() *logger.Logger {
	if viper.GetBool("verbose") {
		return logger.NewWithWriter("development", os.Stderr)
	}
	return logger.Nop()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

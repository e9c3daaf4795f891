package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/mansurdincer/loomsched/internal/api"
	"github.com/mansurdincer/loomsched/internal/infra/sqlite"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("db", "loomsched.db", "SQLite file holding persisted runs")
	serveCmd.Flags().String("addr", ":8080", "address to listen on")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve persisted run results over HTTP",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	addr, _ := cmd.Flags().GetString("addr")

	db, err := sqlite.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	server := api.NewServer(db)
	server.EnableMetrics()

	fmt.Fprintf(cmd.OutOrStdout(), "listening on %s (db=%s)\n", addr, dbPath)
	return http.ListenAndServe(addr, server.Handler())
}

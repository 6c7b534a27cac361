package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moolen/pagecheck/internal/fixture"
	"github.com/moolen/pagecheck/internal/logging"
	"github.com/spf13/cobra"
)

var serveAddr string

var fixtureCmd = &cobra.Command{
	Use:   "fixture",
	Short: "Serve the offline replica of the Elements page",
	Long: `Serve a local replica of the Elements page, its Text Box form and its
Check Box tree. Point "pagecheck run --base-url" at the printed URL, or use
"pagecheck run --fixture" to start one for the duration of a run.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := logging.GetLogger("fixture")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := fixture.NewServer(serveAddr)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		logger.InfoWithFields("Fixture ready", logging.Field("url", srv.ElementsURL()))
		cmd.Println(srv.ElementsURL())

		<-ctx.Done()
		logger.Info("Shutdown signal received, stopping fixture")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	},
}

func init() {
	fixtureCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:8080", "Listen address")
}

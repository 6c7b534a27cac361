package commands

import (
	"fmt"

	"github.com/moolen/pagecheck/internal/browser/pwdriver"
	"github.com/moolen/pagecheck/internal/browser/roddriver"
	"github.com/moolen/pagecheck/internal/logging"
	"github.com/spf13/cobra"
)

var installDriver string

var installCmd = &cobra.Command{
	Use:   "install [browser...]",
	Short: "Download the browser binaries a driver needs",
	Long: `Download the driver and browsers used by "pagecheck run".

For the playwright driver, name the engines to fetch (chromium, firefox,
webkit); chromium is installed when none is given. The rod driver always
fetches a Chromium build.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("install")

		switch installDriver {
		case pwdriver.Name, "":
			if len(args) == 0 {
				args = []string{"chromium"}
			}
			if err := pwdriver.Install(args...); err != nil {
				return err
			}
			logger.InfoWithFields("Installed playwright browsers", logging.Field("browsers", args))
		case roddriver.Name:
			if len(args) > 0 {
				return fmt.Errorf("the rod driver only supports chromium")
			}
			path, err := roddriver.Install()
			if err != nil {
				return err
			}
			logger.InfoWithFields("Installed chromium", logging.Field("path", path))
		default:
			return fmt.Errorf("unknown driver %q (want playwright or rod)", installDriver)
		}
		return nil
	},
}

func init() {
	installCmd.Flags().StringVar(&installDriver, "driver", pwdriver.Name, "Driver to install browsers for: playwright or rod")
}

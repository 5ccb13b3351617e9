// internal/cli/sync.go
package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/javajoker/autoimport/internal/app"
	"github.com/javajoker/autoimport/internal/services"
	"github.com/javajoker/autoimport/internal/utils"
)

// SyncCmd returns the sync command
func SyncCmd() *cobra.Command {
	var opts services.SyncOptions

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import every car advert of the feed",
		Long: `Walk the listing feed page by page and upsert every car advert.

With --with-archive, cars of this source that the run did not see are
archived afterwards. A run capped by --max-items still archives everything
past the cap.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := utils.ValidateStruct(&opts); err != nil {
				return fmt.Errorf("invalid options: %w", err)
			}

			return withApp(func(ctx context.Context, a *app.App) error {
				if !opts.Archive {
					imported, err := a.Syncer.Sync(ctx, opts)
					fmt.Printf("Imported %d adverts\n", imported)
					return err
				}

				res, err := a.Syncer.SyncWithArchive(ctx, opts)
				if res != nil {
					fmt.Printf("Imported %d adverts, %d seen active, %s archived\n",
						res.Imported, res.ActiveSeen, color.New(color.FgYellow).Sprint(res.Archived))
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Archive, "with-archive", false, "Archive cars not seen by this run")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "Adverts per listing page (default from N999_PAGE_SIZE)")
	cmd.Flags().IntVar(&opts.MaxItems, "max-items", 0, "Stop after this many adverts")

	return cmd
}

// ImportCmd returns the import command
func ImportCmd() *cobra.Command {
	var advertID string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a single advert",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := utils.ValidateVar(advertID, "advert_id"); err != nil {
				return fmt.Errorf("invalid advert id %q", advertID)
			}

			return withApp(func(ctx context.Context, a *app.App) error {
				car, err := a.Importer.Upsert(ctx, advertID, now())
				if err != nil {
					return err
				}
				fmt.Printf("%s %s (%s)\n", color.New(color.FgGreen).Sprint("✓"), car.Title, car.ID)
				fmt.Printf("  fuel: %s, gearbox: %s, photos: %d\n", car.FuelTypeCode, car.TransmissionCode, len(car.Photos))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&advertID, "advert-id", "", "Marketplace advert id")
	cmd.MarkFlagRequired("advert-id")

	return cmd
}

// internal/cli/repair.go
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/javajoker/autoimport/internal/app"
	"github.com/javajoker/autoimport/internal/services"
)

var now = time.Now

// FixSpecsCmd returns the fix-specs command
func FixSpecsCmd() *cobra.Command {
	var ids string

	cmd := &cobra.Command{
		Use:   "fix-specs",
		Short: "Re-apply fuel, gearbox and year rules to stored cars",
		Long: `Re-run the reconciliation rules over cars already in the database, without
touching the network. Cars listed as "other" fuel get the model based hybrid
hints first. Safe to run multiple times.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			carIDs, err := parseIDs(ids)
			if err != nil {
				return err
			}

			return withApp(func(ctx context.Context, a *app.App) error {
				report, err := a.Repair.FixSpecs(ctx, carIDs)
				if report != nil {
					fmt.Printf("Scanned %d cars, fixed %s\n", report.Scanned, color.New(color.FgGreen).Sprint(report.Fixed))
				}
				return err
			})
		},
	}

	cmd.Flags().StringVar(&ids, "ids", "", "Comma separated car ids (default: every car of the source)")

	return cmd
}

// ScanMismatchesCmd returns the scan-mismatches command
func ScanMismatchesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan-mismatches",
		Short: "List cars whose stored codes disagree with their raw text",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app.App) error {
				mismatches, err := a.Repair.ScanMismatches(ctx)
				if err != nil {
					return err
				}

				if asJSON {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(mismatches)
				}

				if len(mismatches) == 0 {
					fmt.Println(color.New(color.FgGreen).Sprint("No mismatches found"))
					return nil
				}
				if err := renderTable(os.Stdout, mismatchHeaders, mismatchRows(mismatches)); err != nil {
					return err
				}
				fmt.Printf("\n%s\n", color.New(color.FgYellow).Sprintf("%d cars need attention", len(mismatches)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

var mismatchHeaders = []string{"EXTERNAL ID", "CAR", "YEAR", "GEARBOX", "FUEL", "REASONS"}

func mismatchRows(mismatches []services.Mismatch) [][]string {
	rows := make([][]string, 0, len(mismatches))
	for _, m := range mismatches {
		year := "-"
		if m.Year != nil {
			year = strconv.Itoa(*m.Year)
		}
		reasons := append(append([]string{}, m.TransmissionReasons...), m.FuelReasons...)
		rows = append(rows, []string{
			m.ExternalID,
			strings.TrimSpace(m.Make + " " + m.Model),
			year,
			fmt.Sprintf("%s (%s)", m.TransmissionCode, m.TransmissionRaw),
			fmt.Sprintf("%s (%s)", m.FuelCode, m.FuelRaw),
			strings.Join(reasons, "; "),
		})
	}
	return rows
}

func parseIDs(raw string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("invalid car id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

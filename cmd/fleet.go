package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/agvfleet/config"
	"github.com/kilianp07/agvfleet/core/model"
)

var fleetServer string

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List vehicles of a running scheduler",
	RunE:  runFleetLs,
}

func init() {
	fleetLsCmd.Flags().StringVar(&fleetServer, "server", "", "scheduler base URL (defaults to http.address)")
	fleetCmd.AddCommand(fleetLsCmd)
	rootCmd.AddCommand(fleetCmd)
}

func runFleetLs(cmd *cobra.Command, args []string) error {
	base := fleetServer
	if base == "" {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		base = serverURL(cfg.HTTP.Address)
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
	defer cancel()
	vehicles, err := fetchVehicles(ctx, base)
	if err != nil {
		return err
	}
	return printVehicles(cmd.OutOrStdout(), vehicles)
}

func serverURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func fetchVehicles(ctx context.Context, base string) ([]model.VehicleSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+"/api/vehicles", nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list vehicles: unexpected status %s", resp.Status)
	}
	var out []model.VehicleSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode vehicles: %w", err)
	}
	return out, nil
}

func printVehicles(w io.Writer, vehicles []model.VehicleSnapshot) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCHARGE\tTASK\tQUEUE\tSTALLED\tPOSITION")
	for _, v := range vehicles {
		kinds := make([]string, len(v.QueueKinds))
		for i, k := range v.QueueKinds {
			kinds[i] = k.String()
		}
		fmt.Fprintf(tw, "%d\t%.1f\t%s\t%s\t%t\t%g,%g,%g\n",
			v.ID, v.Charge, v.CurrentTask, strings.Join(kinds, ","), v.Stalled,
			v.Position.X, v.Position.Y, v.Position.Z)
	}
	return tw.Flush()
}

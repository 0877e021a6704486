package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/agvfleet/config"
	"github.com/kilianp07/agvfleet/core/model"
	"github.com/kilianp07/agvfleet/core/pathing"
	"github.com/kilianp07/agvfleet/infra/planner"
)

var (
	planFrom  string
	planTo    string
	planAvoid []int64
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute a path on the configured map",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planFrom, "from", "0,0,0", "start point as x,y,z")
	planCmd.Flags().StringVar(&planTo, "to", "", "target point as x,y,z")
	planCmd.Flags().Int64SliceVar(&planAvoid, "avoid", nil, "node ids to avoid")
	_ = planCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	from, err := parsePoint(planFrom)
	if err != nil {
		return err
	}
	to, err := parsePoint(planTo)
	if err != nil {
		return err
	}
	mapCfg, err := cfg.Planner.LoadMap()
	if err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	g, err := planner.New(mapCfg)
	if err != nil {
		return fmt.Errorf("planner: %w", err)
	}
	paths := pathing.NewAdapter(g, mapCfg.Timeout(), nil)
	path, err := paths.FindPathAvoiding(cmd.Context(), from, to, pathing.Blocked(planAvoid...))
	if err != nil {
		return err
	}
	for _, wp := range path {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\t%g,%g,%g\n", wp.Node, wp.Pos.X, wp.Pos.Y, wp.Pos.Z); err != nil {
			return err
		}
	}
	return nil
}

func parsePoint(s string) (model.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return model.Point{}, fmt.Errorf("point %q: want x,y,z", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return model.Point{}, fmt.Errorf("point %q: %w", s, err)
		}
		v[i] = f
	}
	return model.Point{X: v[0], Y: v[1], Z: v[2]}, nil
}

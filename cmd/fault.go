package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kilianp07/agvfleet/config"
	"github.com/kilianp07/agvfleet/infra/mqtt"
)

var faultSource string

var faultCmd = &cobra.Command{
	Use:   "fault NODE_ID",
	Short: "Publish a blocked-node fault on the broker",
	Args:  cobra.ExactArgs(1),
	RunE:  runFault,
}

func init() {
	faultCmd.Flags().StringVar(&faultSource, "source", "cli", "reporter recorded with the fault")
	rootCmd.AddCommand(faultCmd)
}

func runFault(cmd *cobra.Command, args []string) error {
	nodeID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("node id: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.MQTT.Enabled() {
		return errors.New("mqtt broker not configured")
	}
	mqttCfg := cfg.MQTT
	mqttCfg.ClientID = mqttCfg.ClientID + "-fault"
	client, err := mqtt.NewPahoClient(mqttCfg)
	if err != nil {
		return fmt.Errorf("mqtt client: %w", err)
	}
	defer client.Disconnect()
	if err := client.PublishFault(nodeID, faultSource); err != nil {
		return fmt.Errorf("publish fault: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "fault on node %d published to %s\n", nodeID, mqttCfg.FaultTopic)
	return err
}

package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/soypat/canard"
	"github.com/soypat/canard/internal/config"
)

var rootCmd = &cobra.Command{
	Use:          "cyphal",
	Short:        "Cyphal/CAN frame encoder and decoder",
	Long:         `Encode transfers into Cyphal/CAN frames, decode raw frame records and talk to SocketCAN interfaces.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if on, _ := cmd.Flags().GetBool(flagColor); !on {
			color.NoColor = true
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

const (
	flagConfig = "config"
	flagNode   = "node"
	flagMTU    = "mtu"
	flagIface  = "iface"
	flagDebug  = "debug"
	flagColor  = "color"
)

func init() {
	log.SetFlags(log.Lshortfile | log.LstdFlags)

	pf := rootCmd.PersistentFlags()
	pf.StringP(flagConfig, "c", "", "YAML config file")
	pf.IntP(flagNode, "n", int(canard.NodeIDUnset), "local node-ID, 255 = anonymous")
	pf.IntP(flagMTU, "m", canard.MTU_CAN_CLASSIC, "link MTU in bytes (8 for classic CAN, up to 64 for CAN FD)")
	pf.StringP(flagIface, "i", "can0", "SocketCAN interface")
	pf.BoolP(flagDebug, "d", false, "debug mode")
	pf.Bool(flagColor, true, "colorize frame output")
}

// loadConfig reads the config file if one is given and applies flag overrides on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	pf := cmd.Flags()
	path, err := pf.GetString(flagConfig)
	if err != nil {
		return cfg, err
	}
	if path != "" {
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	if pf.Changed(flagNode) {
		node, err := pf.GetInt(flagNode)
		if err != nil {
			return cfg, err
		}
		cfg.Node.ID = &node
	}
	if pf.Changed(flagMTU) {
		if cfg.Node.MTU, err = pf.GetInt(flagMTU); err != nil {
			return cfg, err
		}
	}
	if pf.Changed(flagIface) {
		if cfg.Interface, err = pf.GetString(flagIface); err != nil {
			return cfg, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if debug, _ := pf.GetBool(flagDebug); debug {
		log.Printf("config node=%s mtu=%d iface=%s heartbeat=%v/%s", cfg.NodeID(), cfg.Node.MTU, cfg.Interface, cfg.Heartbeat.Enable, cfg.Heartbeat.Interval)
	}
	return cfg, nil
}

func newInstance(cmd *cobra.Command) (*canard.Instance, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	ins, err := cfg.Instance()
	if err != nil {
		return nil, cfg, fmt.Errorf("instance: %w", err)
	}
	return ins, cfg, nil
}

package cmd

import (
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/soypat/canard"
	"github.com/soypat/canard/internal/socketcan"
)

func init() {
	heartbeatCmd.Flags().Duration("interval", 0, "publication interval, overrides heartbeat.interval")
	rootCmd.AddCommand(heartbeatCmd)
}

var heartbeatCmd = &cobra.Command{
	Use:   "heartbeat",
	Short: "publish heartbeats on a SocketCAN interface until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ins, cfg, err := newInstance(cmd)
		if err != nil {
			return err
		}
		interval := cfg.Heartbeat.Interval
		if d, _ := cmd.Flags().GetDuration("interval"); d > 0 {
			interval = d
		}
		conn, err := socketcan.Dial(cfg.Interface, ins.MTU() > canard.MTU_CAN_CLASSIC)
		if err != nil {
			return err
		}
		defer conn.Close()

		log.Printf("heartbeat iface=%s node=%s interval=%s", cfg.Interface, ins.NodeID(), interval)
		debug, _ := cmd.Flags().GetBool(flagDebug)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			frames, err := ins.Heartbeat()
			if err != nil {
				return err
			}
			if err := conn.Send(ctx, frames); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if debug {
				for i := range frames {
					log.Println(txString(&frames[i]))
				}
			}
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	},
}

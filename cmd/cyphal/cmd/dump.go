package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/soypat/canard"
	"github.com/soypat/canard/internal/socketcan"
)

func init() {
	dumpCmd.Flags().Bool("validate", false, "check frames against the Cyphal/CAN acceptance rules")
	rootCmd.AddCommand(dumpCmd)
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "print Cyphal frames received on a SocketCAN interface",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		ins, cfg, err := newInstance(cmd)
		if err != nil {
			return err
		}
		conn, err := socketcan.Dial(cfg.Interface, ins.MTU() > canard.MTU_CAN_CLASSIC)
		if err != nil {
			return err
		}
		defer conn.Close()
		log.Printf("dump iface=%s mtu=%d", cfg.Interface, ins.MTU())

		validate, _ := cmd.Flags().GetBool("validate")
		out := cmd.OutOrStdout()
		record := make([]byte, 0, ins.RecordSize())
		for {
			record, err = conn.Receive(ctx, record[:0], ins.MTU())
			switch {
			case ctx.Err() != nil:
				return nil
			case errors.Is(err, canard.ErrInvalidFrameSize):
				log.Printf("dropped frame err=%v", err)
				continue
			case err != nil:
				return err
			}
			frames, err := ins.Parse(record)
			if err != nil {
				log.Printf("parse failed err=%v", err)
				continue
			}
			for i := range frames {
				line := rxString(&frames[i])
				if validate {
					if err := frames[i].Validate(); err != nil {
						line += " || " + err.Error()
					}
				}
				fmt.Fprintln(out, line)
			}
		}
	},
}

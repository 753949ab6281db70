package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	decodeCmd.Flags().Bool("validate", false, "check frames against the Cyphal/CAN acceptance rules")
	rootCmd.AddCommand(decodeCmd)
}

var decodeCmd = &cobra.Command{
	Use:   "decode [hex records]",
	Short: "decode raw frame records, read from stdin when no argument is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ins, _, err := newInstance(cmd)
		if err != nil {
			return err
		}
		var text string
		if len(args) == 1 {
			text = args[0]
		} else {
			b, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			text = string(b)
		}
		raw, err := hex.DecodeString(strings.Join(strings.Fields(text), ""))
		if err != nil {
			return fmt.Errorf("records: %w", err)
		}
		frames, err := ins.Parse(raw)
		if err != nil {
			return err
		}
		validate, _ := cmd.Flags().GetBool("validate")
		out := cmd.OutOrStdout()
		for i := range frames {
			line := rxString(&frames[i])
			if validate {
				if err := frames[i].Validate(); err != nil {
					line += " || " + err.Error()
				}
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

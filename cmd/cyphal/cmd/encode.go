package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soypat/canard"
)

func init() {
	ef := encodeCmd.Flags()
	ef.StringP("kind", "k", "message", "transfer kind: message, request or response")
	ef.Uint16P("port", "p", 0, "subject-ID for messages, service-ID for services")
	ef.IntP("remote", "r", int(canard.NodeIDUnset), "destination node-ID of a service transfer")
	ef.Uint8P("tid", "t", 0, "transfer-ID")
	ef.Uint8("priority", uint8(canard.PriorityNominal), "priority level 0..7")
	ef.Bool("records", false, "print raw frame records as hex instead of frames")
	rootCmd.AddCommand(encodeCmd)
}

var encodeCmd = &cobra.Command{
	Use:   "encode [hex payload]",
	Short: "encode a transfer into Cyphal/CAN frames",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ins, _, err := newInstance(cmd)
		if err != nil {
			return err
		}
		var payload []byte
		if len(args) == 1 {
			payload, err = hex.DecodeString(strings.ReplaceAll(args[0], " ", ""))
			if err != nil {
				return fmt.Errorf("payload: %w", err)
			}
		}
		meta, err := metadataFromFlags(cmd)
		if err != nil {
			return err
		}
		frames, err := ins.Encode(&meta, payload)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if records, _ := cmd.Flags().GetBool("records"); records {
			raw, err := ins.MarshalRecords(frames)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, hex.EncodeToString(raw))
			return nil
		}
		for i := range frames {
			fmt.Fprintln(out, txString(&frames[i]))
		}
		return nil
	},
}

func metadataFromFlags(cmd *cobra.Command) (canard.Metadata, error) {
	f := cmd.Flags()
	kind, _ := f.GetString("kind")
	port, _ := f.GetUint16("port")
	remote, _ := f.GetInt("remote")
	tid, _ := f.GetUint8("tid")
	prio, _ := f.GetUint8("priority")
	meta := canard.Metadata{
		Priority: canard.Priority(prio),
		Port:     canard.PortID(port),
		Remote:   canard.NodeID(remote),
		TID:      canard.TID(tid),
	}
	switch kind {
	case "message", "msg":
		meta.TxKind = canard.TxKindMessage
	case "request", "req":
		meta.TxKind = canard.TxKindRequest
	case "response", "resp":
		meta.TxKind = canard.TxKindResponse
	default:
		return meta, fmt.Errorf("unknown transfer kind %q", kind)
	}
	if remote < 0 || remote > int(canard.NodeIDUnset) {
		return meta, fmt.Errorf("remote node %d out of range", remote)
	}
	return meta, nil
}

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/soypat/canard"
)

func init() {
	lf := loopbackCmd.Flags()
	lf.IntP("count", "N", 8, "number of transfers")
	lf.IntP("size", "s", 20, "payload size of the first transfer, grows by one per transfer")
	lf.Uint16P("port", "p", 100, "subject-ID")
	rootCmd.AddCommand(loopbackCmd)
}

var loopbackCmd = &cobra.Command{
	Use:   "loopback",
	Short: "encode transfers, pipe their raw records through a decoder and check the result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tx, _, err := newInstance(cmd)
		if err != nil {
			return err
		}
		f := cmd.Flags()
		count, _ := f.GetInt("count")
		size, _ := f.GetInt("size")
		port, _ := f.GetUint16("port")
		if count < 1 || size < 0 {
			return fmt.Errorf("count must be positive and size non-negative, got %d and %d", count, size)
		}
		rx, err := canard.NewInstance(canard.NodeIDUnset, tx.MTU())
		if err != nil {
			return err
		}
		verbose, _ := f.GetBool(flagDebug)
		res, err := runLoopback(tx, rx, canard.PortID(port), count, size, verbose, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		log.Printf("loopback transfers=%d frames=%d bytes=%d", res.transfers, res.frames, res.bytes)
		return nil
	},
}

type loopbackResult struct {
	transfers int
	frames    int
	bytes     int
}

func loopbackPayload(i, size int) []byte {
	b := make([]byte, size+i)
	for j := range b {
		b[j] = byte(i + j)
	}
	return b
}

// runLoopback publishes count messages on tx and decodes them on rx through an in-memory pipe.
func runLoopback(tx, rx *canard.Instance, port canard.PortID, count, size int, verbose bool, out io.Writer) (loopbackResult, error) {
	var res loopbackResult
	pr, pw := io.Pipe()
	var g errgroup.Group
	g.Go(func() error {
		var err error
		defer func() { pw.CloseWithError(err) }()
		for i := 0; i < count; i++ {
			var frames []canard.TxFrame
			frames, err = tx.Message(port, loopbackPayload(i, size))
			if err != nil {
				return err
			}
			var raw []byte
			raw, err = tx.MarshalRecords(frames)
			if err != nil {
				return err
			}
			if _, err = pw.Write(raw); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		record := make([]byte, rx.RecordSize())
		var acc []byte
		for {
			_, err := io.ReadFull(pr, record)
			if errors.Is(err, io.EOF) {
				return nil
			} else if err != nil {
				pr.CloseWithError(err)
				return err
			}
			frames, err := rx.Parse(record)
			if err == nil {
				err = frames[0].Validate()
			}
			if err != nil {
				pr.CloseWithError(err)
				return err
			}
			fr := &frames[0]
			res.frames++
			res.bytes += len(record)
			if verbose {
				fmt.Fprintln(out, rxString(fr))
			}
			switch fr.Status.Type {
			case canard.FrameSingle:
				acc = append(acc[:0], fr.Payload()...)
			case canard.FrameMultiStart:
				acc = append(acc[:0], fr.Payload()...)
				continue
			case canard.FrameMultiInProcess:
				acc = append(acc, fr.Payload()...)
				continue
			case canard.FrameMultiEnd:
				acc = append(acc, fr.Payload()...)
				if crc := canard.NewCRC().Add(acc); crc != canard.CRC_RESIDUE {
					err = fmt.Errorf("transfer %d: crc residue %#04x", res.transfers, uint16(crc))
					pr.CloseWithError(err)
					return err
				}
				acc = acc[:len(acc)-canard.CRC_SIZE]
			}
			want := loopbackPayload(res.transfers, size)
			if len(acc) < len(want) || !bytes.Equal(acc[:len(want)], want) {
				err = fmt.Errorf("transfer %d: payload mismatch", res.transfers)
				pr.CloseWithError(err)
				return err
			}
			res.transfers++
		}
	})
	if err := g.Wait(); err != nil {
		return res, err
	}
	if res.transfers != count {
		return res, fmt.Errorf("decoded %d of %d transfers", res.transfers, count)
	}
	return res, nil
}

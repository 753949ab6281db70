package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/soypat/canard"
)

var (
	yellow = color.New(color.FgHiBlue).SprintfFunc()
	red    = color.New(color.FgRed).SprintfFunc()
	green  = color.New(color.FgGreen).SprintfFunc()
)

func hexView(data []byte) string {
	var out strings.Builder
	for i, b := range data {
		out.WriteString(fmt.Sprintf("%02X", b))
		if i != len(data)-1 {
			out.WriteString(" ")
		}
	}
	return out.String()
}

func session(canID canard.CANID, src, dst canard.NodeID) string {
	return fmt.Sprintf("%-8s %-9s port=%-4d %3s -> %-4s", canID.Priority(), canID.Kind(), canID.PortID(), src, dst)
}

func tailView(t canard.Tail) string {
	toggle := "t0"
	if t.IsToggled() {
		toggle = "t1"
	}
	return fmt.Sprintf("%-6s %s tid=%-2d", t.FrameType(), toggle, t.TransferID())
}

// txString renders an outgoing frame: identifier, session, length, data and tail.
func txString(f *canard.TxFrame) string {
	var out strings.Builder
	out.WriteString("<o> || ")
	out.WriteString(green("0x%08X", uint32(f.CANID)) + " || ")
	out.WriteString(session(f.CANID, f.CANID.Source(), f.CANID.Destination()) + " || ")
	out.WriteString(fmt.Sprintf("%2d", f.Len()) + " || ")
	out.WriteString(red("%-23s", hexView(f.Data())))
	out.WriteString(" || ")
	out.WriteString(yellow("%s", tailView(f.TailByte())))
	return out.String()
}

// rxString renders a parsed frame. The data column excludes the tail byte.
func rxString(f *canard.RxFrame) string {
	md := &f.Metadata
	var out strings.Builder
	out.WriteString("<i> || ")
	out.WriteString(green("0x%08X", uint32(f.CANID)) + " || ")
	out.WriteString(session(f.CANID, md.Source, md.Destination) + " || ")
	out.WriteString(fmt.Sprintf("%2d", len(f.Payload())) + " || ")
	out.WriteString(red("%-23s", hexView(f.Payload())))
	out.WriteString(" || ")
	toggle := "t0"
	if f.Status.Toggle {
		toggle = "t1"
	}
	out.WriteString(yellow("%-6s %s tid=%-2d", f.Status.Type, toggle, md.TID))
	return out.String()
}

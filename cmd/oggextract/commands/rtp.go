package commands

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/oggextract/pkg/cli"
	"github.com/haivivi/oggextract/pkg/sink"
)

var rtpCmd = &cobra.Command{
	Use:   "rtp <uri>",
	Short: "Packetize a stream into an RTP dump",
	Long: `Rtp writes every sample of the stream as one RTP packet. Each packet is
prefixed with its length as a 16-bit big-endian integer.

Opus uses payload type 111 and a 48 kHz clock; other codecs use payload
type 96 and the track sample rate.

Example:
  oggextract rtp a.opus -o a.rtpdump --ssrc 1234`,
	Args: cobra.ExactArgs(1),
	RunE: runRTP,
}

var (
	rtpSSRC        uint32
	rtpPayloadType uint8
	rtpMaxPayload  int
)

func init() {
	rtpCmd.Flags().Uint32Var(&rtpSSRC, "ssrc", 0, "RTP synchronization source")
	rtpCmd.Flags().Uint8Var(&rtpPayloadType, "payload-type", 0, "RTP payload type (default by codec)")
	rtpCmd.Flags().IntVar(&rtpMaxPayload, "max-payload", 1200, "reject samples larger than this many bytes (0 for no limit)")
}

func runRTP(cmd *cobra.Command, args []string) error {
	if outputFile == "" {
		return fmt.Errorf("output file is required, use -o flag")
	}
	ctx := cmd.Context()
	cctx, err := getContext()
	if err != nil {
		return err
	}
	src, _, err := openSource(ctx, cctx, args[0])
	if err != nil {
		return err
	}
	defer src.Close()

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	dump := sink.NewRTPDumpWriter(w)
	out := sink.NewRTP(dump.WritePacket, sink.RTPOptions{
		PayloadType: rtpPayloadType,
		SSRC:        rtpSSRC,
		MaxPayload:  rtpMaxPayload,
	})
	codec, err := extract(ctx, src, out, extractorOptions(cctx))
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	slog.Debug("rtp dump written", "codec", codec.String(), "packets", out.Packets(), "clock", out.ClockRate())
	cli.PrintSuccess(os.Stderr, "%d %s packets written to %s (duration %s)",
		out.Packets(), codec, outputFile, cli.FormatDurationUs(out.DurationUs()))
	return nil
}

package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/oggextract/pkg/extractor"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <uri>",
	Short: "List the samples of a stream",
	Long: `Dump prints one line per sample: index, timestamp in microseconds, size in
bytes and the first payload bytes. Format and duration lines start with '#'.

Example:
  oggextract dump a.opus | head`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

var dumpPeek int

func init() {
	dumpCmd.Flags().IntVar(&dumpPeek, "peek", 4, "payload bytes to print per sample")
}

// lineOutput prints the extractor output as text.
type lineOutput struct {
	w     *bufio.Writer
	peek  int
	count int
}

func (o *lineOutput) Track(int) extractor.TrackOutput { return o }

func (o *lineOutput) EndTracks() {}

func (o *lineOutput) Duration(us int64) {
	fmt.Fprintf(o.w, "# duration_us %d\n", us)
}

func (o *lineOutput) Format(f extractor.Format) {
	fmt.Fprintf(o.w, "# format %s rate=%d channels=%d", f.MimeType, f.SampleRate, f.Channels)
	if f.BitsPerSample > 0 {
		fmt.Fprintf(o.w, " bits=%d", f.BitsPerSample)
	}
	fmt.Fprintf(o.w, " init_data=%d\n", len(f.InitData))
}

func (o *lineOutput) WriteSample(s extractor.Sample) error {
	head := s.Data[:min(o.peek, len(s.Data))]
	_, err := fmt.Fprintf(o.w, "%d\t%d\t%d\t%x\n", o.count, s.TimeUs, len(s.Data), head)
	o.count++
	return err
}

func runDump(cmd *cobra.Command, args []string) error {
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

	var w io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	out := &lineOutput{w: bufio.NewWriter(w), peek: dumpPeek}
	_, err = extract(ctx, src, out, extractorOptions(cctx))
	if ferr := out.w.Flush(); err == nil {
		err = ferr
	}
	return err
}

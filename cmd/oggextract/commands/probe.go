package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/haivivi/oggextract/pkg/cli"
	"github.com/haivivi/oggextract/pkg/ogg"
	"github.com/haivivi/oggextract/pkg/probecache"
	"github.com/haivivi/oggextract/pkg/source"
)

var probeCmd = &cobra.Command{
	Use:   "probe <uri>...",
	Short: "Report codec, format and duration of Ogg streams",
	Long: `Probe reads each stream to its end and reports the codec, track format,
duration, sample count and timestamps.

Reports are cached by source identity (path or URI, size and modification
tag) in the context's cache directory. Use --no-cache to bypass the cache.

Examples:
  oggextract probe a.opus b.ogg
  oggextract probe s3://media/a.opus --format json
  oggextract probe a.opus --jq '.[0].report.format.sample_rate'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProbe,
}

var probeNoCache bool

func init() {
	probeCmd.Flags().BoolVar(&probeNoCache, "no-cache", false, "do not read or write the probe cache")
}

// probeResult is the report of one source.
type probeResult struct {
	URI    string      `json:"uri" yaml:"uri"`
	Cached bool        `json:"cached" yaml:"cached"`
	Report *ogg.Report `json:"report,omitempty" yaml:"report,omitempty"`
	Error  string      `json:"error,omitempty" yaml:"error,omitempty"`
}

type probeResults []probeResult

func (r probeResults) Table() ([]string, [][]string) {
	headers := []string{"URI", "CODEC", "RATE", "CH", "DURATION", "SAMPLES", "BYTES", "CACHED"}
	rows := make([][]string, 0, len(r))
	for _, res := range r {
		if res.Report == nil {
			rows = append(rows, []string{res.URI, "error: " + res.Error, "", "", "", "", "", ""})
			continue
		}
		rep := res.Report
		rows = append(rows, []string{
			res.URI,
			rep.Codec,
			strconv.Itoa(rep.Format.SampleRate),
			strconv.Itoa(rep.Format.Channels),
			cli.FormatDurationUs(rep.DurationUs),
			strconv.Itoa(rep.Samples),
			cli.FormatBytes(rep.Bytes),
			strconv.FormatBool(res.Cached),
		})
	}
	return headers, rows
}

func runProbe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cctx, err := getContext()
	if err != nil {
		return err
	}

	var cache probecache.Store
	if !probeNoCache && !cctx.NoCache {
		cache = openCache(cctx)
	}
	if cache != nil {
		defer cache.Close()
	}

	results := make(probeResults, 0, len(args))
	failed := 0
	for _, uri := range args {
		res := probeOne(ctx, cctx, cache, uri)
		if res.Error != "" {
			failed++
		}
		results = append(results, res)
	}
	if err := outputResult(results); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed", failed, len(args))
	}
	return nil
}

// openCache opens the badger cache of cctx. A cache that cannot be opened is
// skipped with a warning.
func openCache(cctx *cli.Context) probecache.Store {
	paths, err := cli.NewPaths()
	if err != nil {
		slog.Warn("probe cache disabled", "err", err)
		return nil
	}
	dir := paths.ResolveCacheDir(cctx)
	store, err := probecache.OpenBadger(probecache.BadgerOptions{Dir: dir, Logger: slog.Default()})
	if err != nil {
		slog.Warn("probe cache disabled", "dir", dir, "err", err)
		return nil
	}
	return store
}

func probeOne(ctx context.Context, cctx *cli.Context, cache probecache.Store, uri string) probeResult {
	res := probeResult{URI: uri}
	src, id, err := openSource(ctx, cctx, uri)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer src.Close()

	key := cacheKey(cctx, id)
	if cache != nil {
		rec, err := cache.Get(ctx, key)
		switch {
		case err == nil:
			slog.Debug("probe cache hit", "uri", uri, "stored_at", rec.StoredAt)
			res.Cached = true
			res.Report = &rec.Report
			return res
		case !errors.Is(err, probecache.ErrMiss):
			slog.Warn("probe cache read failed", "uri", uri, "err", err)
		}
	}

	rep, err := ogg.Probe(ctx, src, extractorOptions(cctx)...)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	slog.Debug("probed", "uri", uri, "codec", rep.Codec, "duration_us", rep.DurationUs, "backend_reads", src.BackendReads())
	res.Report = rep
	if cache != nil {
		if err := cache.Put(ctx, key, rep); err != nil {
			slog.Warn("probe cache write failed", "uri", uri, "err", err)
		}
	}
	return res
}

// cacheKey keys a report by the source and the context switches that change
// what a probe reports.
func cacheKey(cctx *cli.Context, id source.Identity) probecache.Key {
	return probecache.Key{
		Source: id,
		Settings: probecache.Settings{
			VerifyChecksums: cctx.VerifyChecksums,
			DurationProbe:   !cctx.SkipDurationProbe,
		},
	}
}

package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/haivivi/oggextract/pkg/cli"
)

var (
	// Global flags
	cfgFile      string
	contextName  string
	outputFile   string
	outputFormat string
	jqExpr       string
	verbose      bool

	// Global configuration
	globalConfig *cli.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "oggextract",
	Short: "Ogg FLAC, Vorbis and Opus stream inspector",
	Long: `oggextract - inspect and extract Ogg FLAC, Vorbis and Opus streams.

Sources are local paths, file:// URLs or s3://bucket/key URIs.

Configuration is stored in ~/.oggextract/ and supports multiple contexts,
similar to kubectl's context management.

Examples:
  # Probe a local file
  oggextract probe song.opus

  # Probe objects on an S3-compatible store, as a table
  oggextract config add-context minio --endpoint http://localhost:9000 --path-style
  oggextract -c minio probe s3://media/a.opus s3://media/b.ogg --format table

  # Extract just the duration
  oggextract probe song.opus --jq .duration_us

  # Write the samples as RTP packets
  oggextract rtp song.opus -o song.rtpdump
`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Command returns the root cobra command.
func Command() *cobra.Command {
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.oggextract/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "yaml", "output format: yaml, json, table or raw")
	rootCmd.PersistentFlags().StringVar(&jqExpr, "jq", "", "jq expression applied to the result")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(rtpCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup installs the logger and loads the configuration.
func setup(cmd *cobra.Command, _ []string) error {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})).With("run", uuid.New().String()))

	var err error
	globalConfig, err = cli.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return nil
}

// getContext returns the context configuration to use
func getContext() (*cli.Context, error) {
	if globalConfig == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return globalConfig.ResolveContext(contextName)
}

// outputResult writes result in the selected format
func outputResult(result any) error {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return err
	}
	return cli.Output(result, cli.OutputOptions{
		Format: format,
		File:   outputFile,
		Query:  jqExpr,
	})
}

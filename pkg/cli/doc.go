// Package cli provides the configuration, output and path helpers of the
// oggextract command.
//
// Configuration is stored in ~/.oggextract/config.yaml and supports multiple
// contexts similar to kubectl. A context names an S3 endpoint, the probe
// cache location and extractor switches.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig("")
//	ctx, err := cfg.ResolveContext(name)
//
//	cli.Output(report, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    Query:  ".duration_us",
//	})
package cli

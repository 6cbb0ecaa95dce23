package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/oggextract/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

Contexts hold S3 settings, the probe cache location and extractor switches,
similar to kubectl's context management.

Configuration is stored in ~/.oggextract/config.yaml`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		type contextView struct {
			Current bool         `json:"current" yaml:"current"`
			Context *cli.Context `json:"context" yaml:"context"`
		}
		view := struct {
			Path     string        `json:"path" yaml:"path"`
			Current  string        `json:"current_context" yaml:"current_context"`
			Contexts []contextView `json:"contexts" yaml:"contexts"`
		}{
			Path:    globalConfig.Path(),
			Current: globalConfig.CurrentContext,
		}
		for _, name := range globalConfig.ListContexts() {
			ctx, _ := globalConfig.GetContext(name)
			view.Contexts = append(view.Contexts, contextView{
				Current: name == globalConfig.CurrentContext,
				Context: ctx.Redacted(),
			})
		}
		return outputResult(view)
	},
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add or replace a context",
	Long: `Add a context with the specified name. The first context added becomes the
current context.

Example:
  oggextract config add-context minio \
      --endpoint http://localhost:9000 --path-style \
      --access-key minioadmin --secret-key minioadmin
  oggextract config add-context strict --verify-checksums`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		ctx := &cli.Context{}
		var err error
		if ctx.CacheDir, err = f.GetString("cache-dir"); err != nil {
			return fmt.Errorf("failed to read 'cache-dir' flag: %w", err)
		}
		if ctx.NoCache, err = f.GetBool("no-cache"); err != nil {
			return fmt.Errorf("failed to read 'no-cache' flag: %w", err)
		}
		if ctx.VerifyChecksums, err = f.GetBool("verify-checksums"); err != nil {
			return fmt.Errorf("failed to read 'verify-checksums' flag: %w", err)
		}
		if ctx.SkipDurationProbe, err = f.GetBool("skip-duration-probe"); err != nil {
			return fmt.Errorf("failed to read 'skip-duration-probe' flag: %w", err)
		}
		if ctx.WindowSize, err = f.GetInt("window-size"); err != nil {
			return fmt.Errorf("failed to read 'window-size' flag: %w", err)
		}

		s3 := &cli.S3Settings{}
		for flag, dst := range map[string]*string{
			"region":     &s3.Region,
			"endpoint":   &s3.Endpoint,
			"access-key": &s3.AccessKey,
			"secret-key": &s3.SecretKey,
		} {
			if *dst, err = f.GetString(flag); err != nil {
				return fmt.Errorf("failed to read '%s' flag: %w", flag, err)
			}
		}
		if s3.UsePathStyle, err = f.GetBool("path-style"); err != nil {
			return fmt.Errorf("failed to read 'path-style' flag: %w", err)
		}
		if (s3.AccessKey == "") != (s3.SecretKey == "") {
			return fmt.Errorf("--access-key and --secret-key must be given together")
		}
		if *s3 != (cli.S3Settings{}) {
			ctx.S3 = s3
		}

		if err := globalConfig.AddContext(args[0], ctx); err != nil {
			return err
		}
		cli.PrintSuccess(os.Stdout, "Context %q added", args[0])
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := globalConfig.UseContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess(os.Stdout, "Switched to context %q", args[0])
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := globalConfig.DeleteContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess(os.Stdout, "Context %q deleted", args[0])
		return nil
	},
}

func init() {
	f := configAddContextCmd.Flags()
	f.String("region", "", "S3 region (default us-east-1)")
	f.String("endpoint", "", "S3 endpoint URL for S3-compatible stores")
	f.String("access-key", "", "S3 access key ID")
	f.String("secret-key", "", "S3 secret access key")
	f.Bool("path-style", false, "use path-style S3 addressing")
	f.String("cache-dir", "", "probe cache directory (default ~/.oggextract/cache)")
	f.Bool("no-cache", false, "disable the probe cache")
	f.Bool("verify-checksums", false, "verify page checksums")
	f.Bool("skip-duration-probe", false, "do not scan the stream tail for the duration")
	f.Int("window-size", 0, "read-ahead window in bytes")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
}

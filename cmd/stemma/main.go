// Command stemma serves an interactive pedigree canvas over HTTP and
// renders or inspects stored layouts from the command line.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"stemma/internal/config"
)

var version = "0.3.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		bad.Fprintf(os.Stderr, "stemma: %v\n", err)
		os.Exit(1)
	}
}

// options are the flags shared by every command
type options struct {
	configPath string
	envFile    string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "stemma",
		Short: "stemma - a headless pedigree canvas",
		Long: brand.Sprint("stemma") + " - pan, zoom and arrange family trees\n" +
			subtle.Sprint("Serves the canvas over HTTP and renders frames offline"),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("stemma {{ .Version }}\n")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: $STEMMA_CONFIG, ./stemma.yaml, ~/.config/stemma)")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Environment file read before the config")

	root.AddCommand(
		serveCmd(opts),
		renderCmd(opts),
		inspectCmd(opts),
	)

	return root
}

// loadConfig reads the env file and then the config file
func (o *options) loadConfig() (*config.Config, string, error) {
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return nil, "", err
	}
	if o.configPath != "" {
		return config.LoadFromPath(o.configPath)
	}
	return config.Load()
}

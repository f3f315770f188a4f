package main

import (
	"github.com/spf13/cobra"

	"github.com/RKrahl/photoidx/config"
	"github.com/RKrahl/photoidx/consts"
	"github.com/RKrahl/photoidx/logging"
)

// cli holds the global flags and the loaded configuration shared by
// all subcommands.
type cli struct {
	dir        string
	configPath string
	logLevel   string

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:               "photoidx",
		Short:             "Maintain an index of the photos in a directory",
		Version:           consts.Version(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.PersistentFlags().StringVarP(&c.dir, "directory", "d", ".", "image directory")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level, overrides the config")

	root.AddCommand(
		c.createCmd(),
		c.lsCmd(),
		c.lstagsCmd(),
		c.addtagCmd(),
		c.rmtagCmd(),
		c.selectCmd(),
		c.deselectCmd(),
		c.statsCmd(),
		c.sortCmd(),
		c.moveCmd(),
		c.infoCmd(),
		c.serveCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if err := logging.Setup(cfg.Log); err != nil {
		return err
	}
	c.cfg = cfg
	cmd.SetContext(logging.Context(cmd.Context(), logging.Root().Named(cmd.Name())))
	return nil
}

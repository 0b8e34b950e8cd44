package cmd

import (
	"context"
	"fmt"

	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdbatch "github.com/projecteru2/hatchery/cmd/batch"
	cmdothers "github.com/projecteru2/hatchery/cmd/others"
	cmdprovision "github.com/projecteru2/hatchery/cmd/provision"
	"github.com/projecteru2/hatchery/config"
)

var (
	cfgFile string
	conf    *config.Config
)

var rootCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hatchery",
		Short: "Hatchery - unattended batch VM installer",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(commandContext(cmd))
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.PersistentFlags().String("root-dir", "", "root data directory")
	cmd.PersistentFlags().String("run-dir", "", "runtime directory")
	cmd.PersistentFlags().Int("serve-port", 0, "config delivery endpoint port")

	_ = viper.BindPFlag("root_dir", cmd.PersistentFlags().Lookup("root-dir"))
	_ = viper.BindPFlag("run_dir", cmd.PersistentFlags().Lookup("run-dir"))
	_ = viper.BindPFlag("serve_port", cmd.PersistentFlags().Lookup("serve-port"))

	viper.SetEnvPrefix("HATCHERY")
	viper.AutomaticEnv()

	confProvider := func() *config.Config { return conf }

	for _, c := range cmdbatch.Commands(cmdbatch.NewHandler(confProvider)) {
		cmd.AddCommand(c)
	}
	for _, c := range cmdprovision.Commands(cmdprovision.NewHandler(confProvider)) {
		cmd.AddCommand(c)
	}
	for _, c := range cmdothers.Commands(cmdothers.NewHandler(confProvider)) {
		cmd.AddCommand(c)
	}

	return cmd
}()

func initConfig(ctx context.Context) error {
	conf = config.DefaultConfig()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
	_ = viper.ReadInConfig() // optional; missing file is OK

	if err := viper.Unmarshal(conf); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if conf.MaxBatchSize <= 0 {
		conf.MaxBatchSize = 10 //nolint:mnd
	}
	if conf.Monitor.PollIntervalSeconds <= 0 {
		conf.Monitor.PollIntervalSeconds = 10 //nolint:mnd
	}

	return log.SetupLog(ctx, &conf.Log, "")
}

// Execute is the main entry point called from main.go.
func Execute() error {
	ctx, cancel := newCommandContext()
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

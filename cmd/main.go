package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var opts Options

	root := &cobra.Command{
		Use:           "lotto-analyzer",
		Short:         "Euro Millions draw statistics and heuristic predictions",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Run(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file path (default configs/config.yaml if present)")
	flags.Uint64Var(&opts.Seed, "seed", 0, "random seed for predictions (0 uses the current time)")
	flags.StringVar(&opts.Source, "source", "", "CSV file path or http(s) URL of the draw history")

	root.AddCommand(&cobra.Command{
		Use:   "import",
		Short: "Load the draw history and upsert it into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer app.Close()

			_, err = app.Import(cmd.Context())
			return err
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "schedule",
		Short: "Run the full pipeline on the configured cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if err := app.Start(); err != nil {
				app.Close()
				return err
			}

			// 等待停止信号
			<-cmd.Context().Done()

			return app.Stop()
		},
	})

	return root
}

func main() {
	// 设置信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := newRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

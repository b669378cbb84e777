package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kianmeng/drt-tools/internal/app"
)

type dumpExcusesOptions struct {
	Excuses string
}

func newDumpExcusesCommand() *cobra.Command {
	opts := dumpExcusesOptions{}
	cmd := &cobra.Command{
		Use:   "dump-excuses",
		Short: "Summarize the items of a cached excuses snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDumpExcuses(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Excuses, "excuses", "", "Path to excuses.yaml (plain or .gz)")
	_ = viper.BindPFlag("excuses", cmd.Flags().Lookup("excuses"))
	return cmd
}

func runDumpExcuses(ctx context.Context, cmd *cobra.Command, opts dumpExcusesOptions) error {
	service := newAppService()
	result, err := service.DumpExcuses(ctx, app.DumpExcusesRequest{
		ExcusesPath: resolveString(cmd, opts.Excuses, "excuses", "excuses"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("generated: %s\n", result.GeneratedDate)
	for _, item := range result.Items {
		candidate := " "
		if item.IsCandidate {
			candidate = "*"
		}
		fmt.Printf("%s %s %s -> %s [%s]\n",
			candidate, item.ItemName, item.OldVersion, item.NewVersion,
			strings.Join(item.Policies, " "))
	}
	return nil
}

func newAppService() app.Service {
	return app.NewService()
}

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/mtm/internal/gate"
	"github.com/ppiankov/mtm/internal/watch"
)

var watchDebounce time.Duration

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before re-checking after a change")
}

var watchCmd = &cobra.Command{
	Use:   "watch <manifest.yaml>",
	Short: "Re-validate a manifest every time it changes",
	Long:  "Checks the manifest once, then again after every save.\nPrints one VALID or INVALID line per check until interrupted.",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	g, err := openGate()
	if err != nil {
		return err
	}
	defer g.Close()

	out := cmd.OutOrStdout()
	w, err := watch.New(args[0], g, logger, func(v *gate.Verdict) {
		fmt.Fprintln(out, formatVerdict(v))
	})
	if err != nil {
		return err
	}
	w.Debounce = watchDebounce

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fmt.Fprintf(os.Stderr, "Watching %s\n", w.Path())
	return w.Run(ctx)
}

// formatVerdict renders one watch line.
func formatVerdict(v *gate.Verdict) string {
	ts := v.CheckedAt.Local().Format("15:04:05")
	if v.Accepted {
		return fmt.Sprintf("%s VALID %s", ts, v.ModelName)
	}
	return fmt.Sprintf("%s INVALID: %s", ts, describe(v))
}

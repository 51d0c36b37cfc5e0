package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ppiankov/mtm/internal/gate"
)

var checkFormat string

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
}

var checkCmd = &cobra.Command{
	Use:   "check <glob>...",
	Short: "Validate every manifest matching the given patterns",
	Long: "Runs each manifest matching the glob patterns through the gate and\n" +
		"reports one line per file.\n\n" +
		"Exit code 0 if all are valid, 1 if any is rejected.\n" +
		"Use in CI to gate model releases.",
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

// checkReport is the JSON form of a check run.
type checkReport struct {
	Total    int             `json:"total"`
	Valid    int             `json:"valid"`
	Invalid  int             `json:"invalid"`
	Verdicts []*gate.Verdict `json:"verdicts"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	var paths []string
	seen := make(map[string]bool)
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid glob pattern: %w", err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("no manifest files match: %v", args)
	}
	sort.Strings(paths)

	g, err := openGate()
	if err != nil {
		return err
	}
	defer g.Close()

	report := checkReport{Verdicts: make([]*gate.Verdict, 0, len(paths))}
	for _, p := range paths {
		v, _ := g.CheckFile(p)
		report.Verdicts = append(report.Verdicts, v)
		report.Total++
		if v.Accepted {
			report.Valid++
		} else {
			report.Invalid++
		}
	}

	out := cmd.OutOrStdout()
	switch checkFormat {
	case "json":
		if err := writeJSON(out, report); err != nil {
			return err
		}
	default:
		for _, v := range report.Verdicts {
			if v.Accepted {
				fmt.Fprintf(out, "VALID    %s\n", v.Source)
			} else {
				fmt.Fprintf(out, "INVALID  %s: %s\n", v.Source, describe(v))
			}
		}
		fmt.Fprintf(out, "\n%d checked, %d valid, %d invalid\n", report.Total, report.Valid, report.Invalid)
	}

	if report.Invalid > 0 {
		return reject(cmd)
	}
	return nil
}

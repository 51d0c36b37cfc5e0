package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/mtm/internal/config"
	"github.com/ppiankov/mtm/internal/gate"
	"github.com/ppiankov/mtm/internal/logging"
)

// errRejected signals a verdict or check that should exit 1 without cobra
// printing usage. The command has already written its own output.
var errRejected = errors.New("rejected")

var (
	configPath string
	logLevel   string
	auditLog   string
	rootJSON   bool

	// Set by PersistentPreRunE.
	opConfig   *config.Config
	configHash string
	logger     *zap.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML (default ~/.mtm/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error), overrides config")
	rootCmd.PersistentFlags().StringVar(&auditLog, "audit-log", "", "Path to audit log JSONL file, overrides config")
	rootCmd.Flags().BoolVar(&rootJSON, "json", false, "Print the verdict as JSON")
}

var rootCmd = &cobra.Command{
	Use:   "mtm <manifest.yaml>",
	Short: "Model trust manifest gate",
	Long: "Validates a model trust manifest against the closed mtm-v0.1 schema and\n" +
		"refuses to proceed when any deployment constraint is declared true.\n\n" +
		"Prints VALID and exits 0, or INVALID with the reason and exits 1.\n\n" +
		"A manifest file named like a subcommand (check, serve, watch, mcp, audit,\n" +
		"version) must be given with a path prefix, as in: mtm ./check",
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: loadEnvironment,
	RunE:              runRoot,
}

func loadEnvironment(cmd *cobra.Command, args []string) error {
	// Arguments are already validated; later failures are not usage errors.
	cmd.SilenceUsage = true

	cfg, hash, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	l, err := logging.New(level)
	if err != nil {
		return err
	}
	opConfig, configHash, logger = cfg, hash, l
	return nil
}

// resolvedConfigPath is the config file actually read.
func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

func resolvedAuditLog() string {
	if auditLog != "" {
		return auditLog
	}
	return opConfig.AuditLog
}

// openGate builds a gate from the loaded config and flags.
func openGate() (*gate.Gate, error) {
	return gate.New(gate.Config{
		AuditLogPath: resolvedAuditLog(),
		ConfigHash:   configHash,
		Alerts:       opConfig.Alerts,
	}, logger)
}

func runRoot(cmd *cobra.Command, args []string) error {
	g, err := openGate()
	if err != nil {
		return err
	}
	defer g.Close()

	v, err := g.CheckFile(args[0])
	out := cmd.OutOrStdout()
	if rootJSON {
		if werr := writeJSON(out, v); werr != nil {
			return werr
		}
	} else if err != nil {
		fmt.Fprintf(out, "INVALID: %v\n", err)
	} else {
		fmt.Fprintln(out, "VALID")
	}

	if err != nil {
		return reject(cmd)
	}
	return nil
}

// describe renders why v was rejected.
func describe(v *gate.Verdict) string {
	if v.Constraint != "" {
		return "enforcement blocked: " + v.Constraint
	}
	return fmt.Sprintf("%s error: %s", v.Kind, v.Reason)
}

// reject silences cobra's own reporting and returns errRejected.
func reject(cmd *cobra.Command) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return errRejected
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

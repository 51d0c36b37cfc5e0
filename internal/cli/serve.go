package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/mtm/internal/server"
)

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 50051, "gRPC listen port")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start gRPC manifest validation server",
	Long: "Runs mtm as a central validation server over gRPC.\n" +
		"Model loaders connect as clients and fail closed when it is unreachable.\n" +
		"The config file is hot-reloaded.",
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	srv, err := server.New(server.Config{
		Port:         servePort,
		ConfigPath:   configPath,
		AuditLogPath: auditLog,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloader, err := server.NewReloader(srv, resolvedConfigPath())
	if err != nil {
		logger.Warn("hot-reload disabled", zap.Error(err))
	} else {
		go reloader.Run(ctx)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down manifest server...")
		cancel()
		srv.GracefulStop()
	}()

	fmt.Fprintf(os.Stderr, "mtm manifest server listening on :%d\n", servePort)
	if p := resolvedAuditLog(); p != "" {
		fmt.Fprintf(os.Stderr, "Audit log: %s\n", p)
	}
	fmt.Fprintln(os.Stderr)

	return srv.Serve()
}

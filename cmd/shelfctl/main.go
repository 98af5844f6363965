// Command shelfctl talks to the catalogue assistant from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/5w1tchy/shelfbot/internal/assistant"
	"github.com/5w1tchy/shelfbot/internal/catalog"
	"github.com/5w1tchy/shelfbot/internal/executor"
	"github.com/5w1tchy/shelfbot/internal/llm"
	"github.com/5w1tchy/shelfbot/internal/logx"
	"github.com/5w1tchy/shelfbot/internal/platform/openlibrary"
	"github.com/5w1tchy/shelfbot/internal/repository/sqlconnect"
	booksstore "github.com/5w1tchy/shelfbot/internal/store/books"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	useMemory bool
	logLevel  string

	logger *zap.Logger

	// newGateway is swapped in tests.
	newGateway = func(ctx context.Context, log *zap.Logger) (llm.Gateway, error) {
		return llm.New(ctx, llm.LoadConfig(), log)
	}
)

var rootCmd = &cobra.Command{
	Use:   "shelfctl",
	Short: "Manage your book catalogue in plain language",
	Long: `shelfctl sends messages to the catalogue assistant and prints its reply.

The catalogue is the Postgres database in DATABASE_URL, or an empty
in-memory catalogue with --memory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		var err error
		logger, err = logx.New(logLevel, "development")
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&useMemory, "memory", false, "use an in-memory catalogue instead of DATABASE_URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")

	rootCmd.AddCommand(askCmd, replCmd, booksCmd, hashPasswordCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// session is what ask and repl run against. Close releases the database.
type session struct {
	store catalog.Store
	bot   *assistant.Service
	close func()
}

func openStore(ctx context.Context) (catalog.Store, func(), error) {
	if useMemory {
		return catalog.NewMemStore(), func() {}, nil
	}
	db, err := sqlconnect.ConnectDB(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w (use --memory to try without one)", err)
	}
	return booksstore.New(db), func() { _ = db.Close() }, nil
}

func openSession(ctx context.Context) (*session, error) {
	store, closeFn, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	gw, err := newGateway(ctx, logger)
	if err != nil {
		closeFn()
		return nil, err
	}
	prompts, err := llm.LoadPrompts(os.Getenv("PROMPTS_FILE"))
	if err != nil {
		closeFn()
		return nil, err
	}

	opts := []executor.Option{executor.WithConversation(gw)}
	if ol := openlibrary.FromEnv(); ol != nil {
		opts = append(opts, executor.WithEnricher(ol))
	}
	exec := executor.New(store, prompts, logger, opts...)
	return &session{
		store: store,
		bot:   assistant.New(gw, store, exec, prompts, logger),
		close: closeFn,
	}, nil
}

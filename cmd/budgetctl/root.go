package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"budgetpilot/clientconfig"
	"budgetpilot/state"
	"budgetpilot/syncer"

	"github.com/spf13/cobra"
)

// memoryStatePath 不落盘，仅用于一次性会话
const memoryStatePath = ":memory:"

var (
	flagServer    string
	flagStatePath string
)

var rootCmd = &cobra.Command{
	Use:           "budgetctl",
	Short:         "Personal budget planner",
	Long:          "Track monthly income and spending, keep snapshots offline, and sync one budget per email to a BudgetPilot server.",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          withApp(runShow),
}

// Execute 入口
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "Budget server URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagStatePath, "state", "", "Local state database path (\":memory:\" for a throwaway session)")
}

// app 单次命令的运行环境
type app struct {
	cfg       clientconfig.Config
	store     *state.Store
	persister state.Persister
	out       io.Writer
}

// openApp 读取配置并打开本地状态
// 本地文档无法读取时记录日志并从初始状态开始
func openApp(ctx context.Context, out io.Writer) (*app, error) {
	cfg, err := clientconfig.Load()
	if err != nil {
		return nil, err
	}
	if flagServer != "" {
		cfg.ServerURL = flagServer
	}
	if flagStatePath != "" {
		cfg.StatePath = flagStatePath
	}

	var p state.Persister
	if cfg.StatePath == memoryStatePath {
		p = state.NewMemoryPersister()
	} else {
		sp, err := state.OpenSQLite(cfg.ResolveStatePath())
		if err != nil {
			return nil, fmt.Errorf("opening local state: %w", err)
		}
		p = sp
	}

	store, err := state.Open(ctx, p)
	if err != nil {
		log.Printf("警告: 本地状态无法加载，使用初始状态: %v", err)
		store = state.New(p)
	}

	return &app{cfg: cfg, store: store, persister: p, out: out}, nil
}

// close 等待写入完成后关闭本地状态
func (a *app) close() {
	_ = a.store.Close()
	if c, ok := a.persister.(io.Closer); ok {
		_ = c.Close()
	}
}

func (a *app) coordinator() *syncer.Coordinator {
	return syncer.NewCoordinator(a.store, syncer.NewHTTPClient(a.cfg.ServerURL, a.cfg.Timeout()))
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// withApp 为命令打开运行环境，命令结束后关闭
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd.Context(), a, args)
	}
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"ragdesk/pkg/chat"
	"ragdesk/pkg/config"
	"ragdesk/pkg/gateway"
	"ragdesk/pkg/state"
	"ragdesk/pkg/store"
)

var configPath string

func main() {
	// A missing .env is fine; environment overrides are optional.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "ragdesk",
		Short: "Chat with your document knowledge base",
		Long:  "ragdesk is a terminal client for a document-query backend: upload documents, ask questions scoped to them, and keep the session on disk.",
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(uploadCmd())
	rootCmd.AddCommand(docsCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(compareCmd())
	rootCmd.AddCommand(resumeCmd())
	rootCmd.AddCommand(notificationsCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired components every subcommand needs.
type app struct {
	config  *config.Config
	store   *store.Store
	state   *state.Container
	gateway *gateway.Gateway
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %s", e.Error())
		}
		return nil, fmt.Errorf("invalid configuration")
	}

	kv, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %v", err)
	}

	gw, err := gateway.NewWithConfig(gateway.Config{
		BaseURL:        cfg.Server.URL,
		QueryTimeout:   time.Duration(cfg.Server.QueryTimeout) * time.Second,
		MetricsTimeout: time.Duration(cfg.Server.MetricsTimeout) * time.Second,
	})
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to initialize gateway: %v", err)
	}

	return &app{
		config:  cfg,
		store:   kv,
		state:   state.New(kv),
		gateway: gw,
	}, nil
}

func (a *app) Close() {
	a.store.Close()
}

func (a *app) orchestrator(onStatus func(string), confirmAll func() bool) (*chat.Orchestrator, error) {
	return chat.NewWithConfig(chat.Config{
		Gateway:        a.gateway,
		State:          a.state,
		MaxResults:     a.config.Chat.MaxResults,
		StatusMessages: a.config.Chat.StatusMessages,
		StatusInterval: time.Duration(a.config.Chat.StatusIntervalMs) * time.Millisecond,
		OnStatus:       onStatus,
		ConfirmAll:     confirmAll,
	})
}

func secondsDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/booking-agent/internal/agent"
	"github.com/nhle/booking-agent/internal/booker"
	"github.com/nhle/booking-agent/internal/credential"
	"github.com/nhle/booking-agent/internal/intent"
	"github.com/nhle/booking-agent/internal/mailbox"
	"github.com/nhle/booking-agent/internal/model"
	"github.com/nhle/booking-agent/internal/notify"
	"github.com/nhle/booking-agent/internal/store"
)

func newRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the booking agent loop",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := model.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			return runAgent(cmd.Context(), cfg)
		},
	}
}

func runAgent(parent context.Context, cfg *model.AppConfig) error {
	if err := resolveSecrets(cfg); err != nil {
		return err
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	logger, closeLog, err := openLogger(cfg.Agent.LogDir)
	if err != nil {
		return err
	}
	defer closeLog()

	journal, err := store.NewSQLiteStore(cfg.Agent.JournalPath)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer journal.Close()

	reader := mailbox.NewIMAPReader(
		cfg.Mailbox.Host, cfg.Mailbox.Port,
		cfg.Mailbox.Address, cfg.Mailbox.Password,
		cfg.Mailbox.TLS,
	)

	extractor := buildExtractor(cfg)

	executor := booker.NewDriver(
		cfg.Admin.BaseURL, cfg.Admin.Username, cfg.Admin.Password,
		cfg.Admin.Headless,
		time.Duration(cfg.Admin.ActionTimeoutSec)*time.Second,
		cfg.Agent.ScreenshotDir,
	)

	notifier := notify.NewMailer(cfg.SMTP, cfg.Mailbox.Address, cfg.Mailbox.Password)

	a := agent.New(reader, extractor, executor, notifier, journal,
		agent.SystemClock{},
		agent.Options{
			SubjectFilter: cfg.Mailbox.SubjectFilter,
			PollInterval:  time.Duration(cfg.Mailbox.PollIntervalSec) * time.Second,
		})
	a.SetLogger(logger)

	logger.Printf("booking agent starting")
	logger.Printf("  mailbox  : %s", cfg.Mailbox.Address)
	logger.Printf("  hotel    : %s", cfg.Admin.BaseURL)
	logger.Printf("  interval : %ds", cfg.Mailbox.PollIntervalSec)
	logger.Printf("  filter   : %q", cfg.Mailbox.SubjectFilter)
	logger.Printf("  headless : %t", cfg.Admin.Headless)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = a.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Printf("booking agent stopped")
		return nil
	}
	return err
}

// resolveSecrets fills credentials left out of the config file from
// the environment and the OS keyring. Missing keyring entries are not
// an error here; validateConfig decides what is required.
func resolveSecrets(cfg *model.AppConfig) error {
	if cfg.Mailbox.Password == "" {
		if v, err := credential.Get(credential.KeyMailboxPassword); err == nil {
			cfg.Mailbox.Password = v
		}
	}
	if cfg.Admin.Password == "" {
		if v, err := credential.Get(credential.KeyAdminPassword); err == nil {
			cfg.Admin.Password = v
		}
	}
	return nil
}

func validateConfig(cfg *model.AppConfig) error {
	if cfg.Mailbox.Address == "" {
		return fmt.Errorf("mailbox.address is required")
	}
	if cfg.Mailbox.Password == "" {
		return fmt.Errorf("mailbox password not set in config or keyring")
	}
	if cfg.Admin.BaseURL == "" {
		return fmt.Errorf("admin.base_url is required")
	}
	if cfg.Admin.Username == "" || cfg.Admin.Password == "" {
		return fmt.Errorf("admin credentials not set in config or keyring")
	}
	return nil
}

// buildExtractor wires the AI-first extractor when an API key is
// available, falling back to rules alone otherwise.
func buildExtractor(cfg *model.AppConfig) intent.Extractor {
	rules := intent.NewRulesExtractor()

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		if v, err := credential.Get(credential.KeyAnthropicAPIKey); err == nil {
			apiKey = v
		}
	}

	var ai intent.Extractor
	if apiKey != "" {
		ai = intent.NewClaudeExtractor(apiKey, cfg.AI.Model, cfg.AI.MaxTokens)
	}

	return intent.NewComposite(ai, rules)
}

// openLogger returns a logger writing to stderr and a dated file in
// logDir.
func openLogger(logDir string) (*log.Logger, func(), error) {
	if logDir == "" {
		return log.Default(), func() {}, nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory %s: %w", logDir, err)
	}

	name := fmt.Sprintf("agent_%s.log", time.Now().Format("20060102"))
	f, err := os.OpenFile(
		filepath.Join(logDir, name),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	logger := log.New(io.MultiWriter(os.Stderr, f), "", log.LstdFlags)
	return logger, func() { _ = f.Close() }, nil
}

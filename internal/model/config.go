package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// MailboxConfig holds the IMAP settings for the watched inbox.
type MailboxConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`

	// Address is the mailbox login, typically the full email address.
	Address string `mapstructure:"address" yaml:"address"`

	// Password is the application-specific credential. May be empty,
	// in which case it is resolved from the OS keyring.
	Password string `mapstructure:"password" yaml:"password"`

	// TLS selects implicit TLS; STARTTLS otherwise.
	TLS bool `mapstructure:"tls" yaml:"tls"`

	// SubjectFilter is the substring an unseen message's subject must
	// contain (case-insensitive) to be considered a booking candidate.
	SubjectFilter string `mapstructure:"subject_filter" yaml:"subject_filter"`

	// PollIntervalSec is how often (in seconds) to check for mail.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// AdminConfig holds the hotel admin site settings for the booking
// executor.
type AdminConfig struct {
	BaseURL  string `mapstructure:"base_url" yaml:"base_url"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`

	// Headless controls whether the browser runs without a window.
	Headless bool `mapstructure:"headless" yaml:"headless"`

	// ActionTimeoutSec bounds each navigation/fill/submit step.
	ActionTimeoutSec int `mapstructure:"action_timeout_sec" yaml:"action_timeout_sec"`
}

// SMTPConfig holds the outbound mail settings.
type SMTPConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`

	// From is the sender address; defaults to the mailbox address.
	From string `mapstructure:"from" yaml:"from"`

	// TLS selects implicit TLS; STARTTLS otherwise.
	TLS bool `mapstructure:"tls" yaml:"tls"`
}

// AIConfig holds settings for the AI extraction backend.
type AIConfig struct {
	Model     string `mapstructure:"model" yaml:"model"`
	MaxTokens int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// AgentConfig holds paths for operational artifacts.
type AgentConfig struct {
	LogDir        string `mapstructure:"log_dir" yaml:"log_dir"`
	JournalPath   string `mapstructure:"journal_path" yaml:"journal_path"`
	ScreenshotDir string `mapstructure:"screenshot_dir" yaml:"screenshot_dir"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Mailbox MailboxConfig `mapstructure:"mailbox" yaml:"mailbox"`
	Admin   AdminConfig   `mapstructure:"admin" yaml:"admin"`
	SMTP    SMTPConfig    `mapstructure:"smtp" yaml:"smtp"`
	AI      AIConfig      `mapstructure:"ai" yaml:"ai"`
	Agent   AgentConfig   `mapstructure:"agent" yaml:"agent"`
}

// DefaultConfigPath returns the default path for the configuration
// file, located at ~/.config/booking-agent/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "booking-agent", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Mailbox: MailboxConfig{
			Host:            "imap.gmail.com",
			Port:            "993",
			TLS:             true,
			SubjectFilter:   "Room Booking",
			PollIntervalSec: 60,
		},
		Admin: AdminConfig{
			Headless:         true,
			ActionTimeoutSec: 30,
		},
		SMTP: SMTPConfig{
			Host: "smtp.gmail.com",
			Port: "587",
		},
		AI: AIConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 400,
		},
		Agent: AgentConfig{
			LogDir:        "logs",
			JournalPath:   "booking-agent.db",
			ScreenshotDir: "logs",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using
// Viper. If the file does not exist, it returns a default
// configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("mailbox.host", "imap.gmail.com")
	v.SetDefault("mailbox.port", "993")
	v.SetDefault("mailbox.tls", true)
	v.SetDefault("mailbox.subject_filter", "Room Booking")
	v.SetDefault("mailbox.poll_interval_sec", 60)
	v.SetDefault("admin.headless", true)
	v.SetDefault("admin.action_timeout_sec", 30)
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", "587")
	v.SetDefault("ai.model", "claude-sonnet-4-20250514")
	v.SetDefault("ai.max_tokens", 400)
	v.SetDefault("agent.log_dir", "logs")
	v.SetDefault("agent.journal_path", "booking-agent.db")
	v.SetDefault("agent.screenshot_dir", "logs")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.Mailbox.Address
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("mailbox", cfg.Mailbox)
	v.Set("admin", cfg.Admin)
	v.Set("smtp", cfg.SMTP)
	v.Set("ai", cfg.AI)
	v.Set("agent", cfg.Agent)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}

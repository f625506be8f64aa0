package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"wds-go/internal/app"
	"wds-go/internal/config"
	"wds-go/internal/encryption"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a WDSApp. The caller must defer app.Close().
func newApp() (*app.WDSApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewWDSApp(cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "wds",
	Short: "Content-addressed data store for collaborative documents",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Data Dir: %s\n", cfg.DataDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Data Dir:      %s\n", cfg.DataDir)
		fmt.Printf("Log Dir:       %s\n", cfg.LogDir)
		fmt.Printf("Default Quota: %d bytes\n", cfg.DefaultQuotaBytes)
		fmt.Printf("Index:         %s\n", cfg.Index.Type)
		fmt.Printf("Content:       %s\n", cfg.Content.Type)
		fmt.Printf("Encryption:    %s\n", cfg.Encryption.Type)
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage encryption keys",
}

var configKeysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate an age key pair for at-rest encryption",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		enc := encryption.NewAgeEncryptor(cfg.Encryption)
		if enc.IsConfigured() {
			return fmt.Errorf("key pair already exists at %s", cfg.Encryption.PublicKeyPath)
		}

		if err := enc.Setup(); err != nil {
			return fmt.Errorf("generating key pair: %w", err)
		}

		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s\n", cfg.Encryption.PrivateKeyPath)
		fmt.Println(`Set encryption type = "age" in the config to enable at-rest encryption.`)
		return nil
	},
}

// gc command
var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Run garbage collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		every, _ := cmd.Flags().GetDuration("every")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		runOnce := func() error {
			stats, err := a.GarbageCollect()
			if err != nil {
				return fmt.Errorf("garbage collection failed: %w", err)
			}
			fmt.Printf("Removed %d expired pin(s), %d record(s)\n", stats.PinsRemoved, stats.RecordsRemoved)
			return nil
		}

		if err := runOnce(); err != nil {
			return err
		}
		if every <= 0 {
			return nil
		}

		ticker := time.NewTicker(every)
		defer ticker.Stop()
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		for {
			select {
			case <-ticker.C:
				if err := runOnce(); err != nil {
					return err
				}
			case <-stop:
				return nil
			}
		}
	},
}

// usage command
var usageCmd = &cobra.Command{
	Use:   "usage DID",
	Short: "View an owner's storage usage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		q, err := a.Usage(args[0])
		if err != nil {
			return err
		}
		if q == nil {
			fmt.Println("No usage recorded.")
			return nil
		}

		fmt.Printf("Owner: %s\n", q.Owner)
		fmt.Printf("Used:  %d bytes\n", q.BytesUsed)
		fmt.Printf("Quota: %d bytes\n", q.QuotaBytes)
		return nil
	},
}

// quota command
var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Manage quotas",
}

var quotaSetCmd = &cobra.Command{
	Use:   "set DID BYTES",
	Short: "Set an owner's quota limit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || limit < 0 {
			return fmt.Errorf("invalid quota limit: %s", args[1])
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SetQuotaLimit(args[0], limit); err != nil {
			return fmt.Errorf("setting quota: %w", err)
		}

		fmt.Printf("Quota for %s set to %d bytes\n", args[0], limit)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)
	configKeysCmd.AddCommand(configKeysInitCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(gcCmd)
	gcCmd.Flags().Duration("every", 0, "Run continuously at this interval (e.g. 15m)")
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(quotaCmd)
	quotaCmd.AddCommand(quotaSetCmd)
}

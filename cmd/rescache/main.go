package main

import (
	"fmt"
	"os"
	"time"

	"rescache/internal/app"
	"rescache/internal/cache"
	"rescache/internal/config"
	"rescache/internal/model"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Synchronize", "DeleteStorage").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "rescache",
	Short: "Resource cache database",
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

		// Generate a new instance ID
		instanceID := uuid.New().String()

		cfg := config.NewConfig(instanceID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Instance ID: %s\n", instanceID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
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
		fmt.Printf("Instance ID: %s\n", cfg.InstanceID)
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Database:    %s\n", cfg.Database.Type)
		for _, s := range cfg.Storages {
			location := s.Location
			if s.Type == "s3" {
				location = fmt.Sprintf("s3://%s/%s", s.S3Bucket, s.S3Prefix)
			}
			fmt.Printf("Storage:     %-20s %s\n", s.Type, location)
		}
		return nil
	},
}

// sync command
var syncCmd = &cobra.Command{
	Use:   "sync [LOCATION]",
	Short: "Synchronize the cache against configured storages",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Synchronize")
		if err != nil {
			return err
		}
		defer a.Close()

		var result *cache.BatchResult
		if len(args) > 0 {
			result, err = a.SynchronizeStorage(args[0])
		} else {
			result, err = a.SynchronizeAll()
		}
		if err != nil {
			return fmt.Errorf("synchronizing: %w", err)
		}

		fmt.Printf("Synchronized %d item(s)\n", len(result.Succeeded))
		if len(result.Failed) > 0 {
			fmt.Printf("%d item(s) failed:\n", len(result.Failed))
			for _, f := range result.Failed {
				fmt.Printf("  %s: %v\n", f.Item, f.Err)
			}
			return fmt.Errorf("synchronization finished with errors")
		}
		return nil
	},
}

// storages command
var storagesCmd = &cobra.Command{
	Use:   "storages",
	Short: "Manage registered storages",
}

var storagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered storages",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListStorages")
		if err != nil {
			return err
		}
		defer a.Close()

		storages, err := a.ListStorages()
		if err != nil {
			return err
		}

		if len(storages) == 0 {
			fmt.Println("No storages registered.")
			return nil
		}

		for _, s := range storages {
			flags := ""
			if s.PreInstalled {
				flags += " [pre-installed]"
			}
			if !s.Active {
				flags += " [inactive]"
			}
			fmt.Printf("%-20s %s  %s%s\n",
				model.OriginType(s.OriginTypeID),
				time.Unix(s.Timestamp, 0).Format("2006-01-02 15:04:05"),
				s.Location,
				flags,
			)
		}
		return nil
	},
}

var storagesRmCmd = &cobra.Command{
	Use:   "rm LOCATION",
	Short: "Remove a storage and its resources from the cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteStorage")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteStorage(args[0]); err != nil {
			return fmt.Errorf("removing storage: %w", err)
		}

		fmt.Printf("Removed storage: %s\n", args[0])
		return nil
	},
}

var storagesActivateCmd = &cobra.Command{
	Use:   "activate LOCATION",
	Short: "Mark a storage active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SetStorageActive")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SetStorageActive(args[0], true); err != nil {
			return err
		}
		fmt.Printf("Activated storage: %s\n", args[0])
		return nil
	},
}

var storagesDeactivateCmd = &cobra.Command{
	Use:   "deactivate LOCATION",
	Short: "Mark a storage inactive without removing its resources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SetStorageActive")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.SetStorageActive(args[0], false); err != nil {
			return err
		}
		fmt.Printf("Deactivated storage: %s\n", args[0])
		return nil
	},
}

var storagesPreinstallCmd = &cobra.Command{
	Use:   "preinstall",
	Short: "Register configured pre-installed storages without scanning",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RegisterPreinstalled")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.RegisterPreinstalled(); err != nil {
			return fmt.Errorf("registering pre-installed storages: %w", err)
		}
		return nil
	},
}

// tags command
var tagsCmd = &cobra.Command{
	Use:   "tags TYPE",
	Short: "List tags for a resource type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListTags")
		if err != nil {
			return err
		}
		defer a.Close()

		tags, err := a.Tags(args[0])
		if err != nil {
			return err
		}

		if len(tags) == 0 {
			fmt.Println("No tags recorded.")
			return nil
		}

		for _, t := range tags {
			fmt.Printf("%-30s %s\n", t.URL, t.Name)
		}
		return nil
	},
}

// log command
var logCmd = &cobra.Command{
	Use:   "log FILENAME TYPE",
	Short: "View resource version history",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ResourceHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		versions, err := a.ResourceHistory(args[0], args[1])
		if err != nil {
			return err
		}

		if len(versions) == 0 {
			fmt.Println("No version history.")
			return nil
		}

		for _, v := range versions {
			deleted := ""
			if v.Deleted {
				deleted = "  [deleted]"
			}
			fmt.Printf("v%d  %s  %s  %s%s\n",
				v.Version,
				shortChecksum(v.Checksum),
				time.Unix(v.Timestamp, 0).Format("2006-01-02 15:04:05"),
				v.Location,
				deleted,
			)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recorded cache operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("GetHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				d := time.Duration(*op.FinishedAt-op.StartedAt) * time.Second
				duration = d.String()
			}
			fmt.Printf("#%d  %-20s  %s  %-10s  %s\n",
				op.ID,
				op.Operation,
				time.Unix(op.StartedAt, 0).Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
			)
		}
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect the cache database",
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show schema version and migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("GetStatus")
		if err != nil {
			return err
		}
		defer a.Close()

		info, err := a.Status()
		if err != nil {
			return err
		}

		if info == nil {
			fmt.Println("Database has not been initialized.")
			return nil
		}

		fmt.Printf("Schema version:  %s\n", info.SchemaVersion)
		fmt.Printf("Creator version: %s\n", info.CreatorVersion)
		fmt.Printf("Created:         %s\n", time.Unix(info.CreationDate, 0).UTC().Format("2006-01-02 15:04:05"))
		fmt.Println("Migrations:      up to date")
		return nil
	},
}

func shortChecksum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// storages subcommands
	storagesCmd.AddCommand(storagesListCmd)
	storagesCmd.AddCommand(storagesRmCmd)
	storagesCmd.AddCommand(storagesActivateCmd)
	storagesCmd.AddCommand(storagesDeactivateCmd)
	storagesCmd.AddCommand(storagesPreinstallCmd)

	// db subcommands
	dbCmd.AddCommand(dbStatusCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(storagesCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(dbCmd)
}

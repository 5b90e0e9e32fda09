package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basinfs/hfs/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get and set configuration options",
	Long: `Get and set hfs configuration options.

Configuration can be set at two levels:
- Global (~/.hfsconfig) - applies everywhere
- Repository (.hfs/config) - applies in the current directory only

Examples:
  hfs config --list
  hfs config pool.dir
  hfs config pool.dir /srv/hfs-pool
  hfs config --global pool.default_ref main`,
	RunE: runConfigCmd,
}

var (
	configGlobal bool
	configList   bool
)

func init() {
	configCmd.Flags().BoolVar(&configGlobal, "global", false, "write to the global config file")
	configCmd.Flags().BoolVar(&configList, "list", false, "list all configuration")
}

func runConfigCmd(cmd *cobra.Command, args []string) error {
	if configList {
		return listConfigValues()
	}
	if len(args) == 1 {
		return getConfigValue(args[0])
	}
	if len(args) == 2 {
		return setConfigValue(args[0], args[1], configGlobal)
	}
	return fmt.Errorf("invalid usage, see: hfs config --help")
}

func listConfigValues() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fmt.Printf("pool.dir = %s\n", cfg.Pool.Dir)
	fmt.Printf("pool.default_ref = %s\n", cfg.Pool.DefaultRef)
	return nil
}

func getConfigValue(key string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	switch key {
	case "pool.dir":
		fmt.Println(cfg.Pool.Dir)
	case "pool.default_ref":
		fmt.Println(cfg.Pool.DefaultRef)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func setConfigValue(key, value string, global bool) error {
	cfg, err := config.LoadScope(global)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch key {
	case "pool.dir":
		cfg.Pool.Dir = value
	case "pool.default_ref":
		cfg.Pool.DefaultRef = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}

	if global {
		err = config.SaveGlobal(cfg)
	} else {
		err = config.SaveRepo(cfg)
	}
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	scope := "repository"
	if global {
		scope = "global"
	}
	fmt.Printf("set %s config: %s = %s\n", scope, key, value)
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basinfs/hfs/internal/config"
)

const hfsVersion = "0.1.0"

var (
	poolDirFlag string
	version     bool
)

var rootCmd = &cobra.Command{
	Use:   "hfs",
	Short: "hfs is a content-addressed hash file system",
	Long:  `hfs stores files, lists, sets, and maps as an immutable Merkle DAG in a local object pool.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if version {
			fmt.Printf("hfs version %s\n", hfsVersion)
			return nil
		}
		return cmd.Help()
	},
}

func init() {
	rootCmd.Flags().BoolVar(&version, "version", false, "print the hfs version")
	rootCmd.PersistentFlags().StringVar(&poolDirFlag, "pool", "", "pool directory (default: from config, or .hfs/pool)")

	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(flushCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(refCmd)
	refCmd.AddCommand(refSetCmd, refGetCmd, refListCmd, refRemoveCmd)
	rootCmd.AddCommand(configCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// poolDir resolves the effective pool directory: the --pool flag,
// falling back to the merged config's pool.dir.
func poolDir() (string, error) {
	if poolDirFlag != "" {
		return poolDirFlag, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.Pool.Dir, nil
}

func defaultRefName() (string, error) {
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.Pool.DefaultRef, nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Persist the pool's pack table to disk",
	Args:  cobra.NoArgs,
	RunE:  runFlush,
}

func runFlush(cmd *cobra.Command, args []string) error {
	p, err := openPool()
	if err != nil {
		return err
	}
	if err := p.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Write the object stored at key to stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	p, err := openPool()
	if err != nil {
		return err
	}
	r, err := p.Get(args[0])
	if err != nil {
		return fmt.Errorf("get: %w", err)
	}
	defer r.Close()
	_, err = io.Copy(os.Stdout, r)
	return err
}

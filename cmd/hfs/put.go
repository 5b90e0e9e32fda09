package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put [file]",
	Short: "Store a file's bytes and print its key",
	Long:  `Put reads from the given file, or from stdin if no file is given, streams it into the pool, and prints the resulting key.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPut,
}

func runPut(cmd *cobra.Command, args []string) error {
	var r *os.File
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()
		r = f
	} else {
		r = os.Stdin
	}

	p, err := openPool()
	if err != nil {
		return err
	}

	key, err := p.Put(r)
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}
	fmt.Println(key)
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/basinfs/hfs/internal/node"
)

var statCmd = &cobra.Command{
	Use:   "stat <root> <path>",
	Short: "Show metadata for the node at path under root",
	Long:  `Stat resolves path against root (a ref name, or a literal key) and prints the resolved node's size, access mode, and timestamp.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runStat,
}

func runStat(cmd *cobra.Command, args []string) error {
	rootKey, err := resolveRoot(args[0])
	if err != nil {
		return err
	}
	h, _, err := openHFS(rootKey)
	if err != nil {
		return err
	}

	n, err := h.Open(args[1])
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	fmt.Printf("size:   %d\n", n.Size())
	fmt.Printf("access: %o\n", n.Access())
	fmt.Printf("uid:    %d\n", n.Uid())
	fmt.Printf("gid:    %d\n", n.Gid())
	fmt.Printf("time:   %g\n", n.Time())
	fmt.Printf("nlink:  %d\n", n.Nlink())
	fmt.Printf("data:   %s\n", n.Data())
	if _, ok := n.(node.Container); ok {
		fmt.Println("type:   container")
	} else {
		fmt.Println("type:   file")
	}
	return nil
}

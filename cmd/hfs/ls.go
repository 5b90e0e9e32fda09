package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/basinfs/hfs/internal/hfserr"
	"github.com/basinfs/hfs/internal/node"
)

var lsCmd = &cobra.Command{
	Use:   "ls <root> [path]",
	Short: "List the names a container node at path resolves",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runLs,
}

func runLs(cmd *cobra.Command, args []string) error {
	rootKey, err := resolveRoot(args[0])
	if err != nil {
		return err
	}
	path := "/"
	if len(args) == 2 {
		path = args[1]
	}

	h, _, err := openHFS(rootKey)
	if err != nil {
		return err
	}
	n, err := h.Open(path)
	if err != nil {
		return fmt.Errorf("ls: %w", err)
	}

	names, err := childNames(n)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func childNames(n node.Node) ([]string, error) {
	switch v := n.(type) {
	case *node.MapNode:
		names := make([]string, 0, len(v.Entries))
		for name := range v.Entries {
			names = append(names, name)
		}
		sort.Strings(names)
		return names, nil
	case *node.ListNode:
		names := make([]string, len(v.Children))
		for i := range v.Children {
			names[i] = strconv.Itoa(i)
		}
		return names, nil
	case *node.SetNode:
		names := make([]string, len(v.Children))
		copy(names, v.Children)
		sort.Strings(names)
		return names, nil
	default:
		return nil, hfserr.New(hfserr.Unsupported, "ls: not a container")
	}
}

package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var refCmd = &cobra.Command{
	Use:   "ref",
	Short: "Manage named roots",
}

var refSetCmd = &cobra.Command{
	Use:   "set <name> <key>",
	Short: "Bind name to a root key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openRefs()
		if err != nil {
			return err
		}
		defer s.Close()
		return s.Set(args[0], args[1])
	},
}

var refGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print the root key name is bound to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openRefs()
		if err != nil {
			return err
		}
		defer s.Close()
		key, err := s.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(key)
		return nil
	},
}

var refListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all named roots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openRefs()
		if err != nil {
			return err
		}
		defer s.Close()
		all, err := s.List()
		if err != nil {
			return err
		}
		names := make([]string, 0, len(all))
		for name := range all {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s\t%s\n", name, all[name])
		}
		return nil
	},
}

var refRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a named root",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openRefs()
		if err != nil {
			return err
		}
		defer s.Close()
		return s.Delete(args[0])
	},
}

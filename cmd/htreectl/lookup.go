package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/htreekit/htree"
	"github.com/joshuapare/htreekit/htree/store"
	"github.com/joshuapare/htreekit/pkg/types"
)

func init() {
	rootCmd.AddCommand(newLookupCmd())
}

func newLookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <image> <name>",
		Short: "Find a directory entry by name",
		Long: `The lookup command hashes the given name, walks the index to the
covering leaf block, and prints the inode number of the matching entry.

Example:
  htreectl lookup dir.img README.md`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, inode, err := store.OpenFile(args[0], true)
			if err != nil {
				return fmt.Errorf("failed to open image: %w", err)
			}
			defer s.Close()

			ino, err := htree.Open(s, inode).Lookup(args[1])
			if errors.Is(err, types.ErrNotFound) {
				return fmt.Errorf("no entry named %q", args[1])
			}
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(map[string]interface{}{"name": args[1], "inode": ino})
			}
			printInfo("%s -> inode %d\n", args[1], ino)
			return nil
		},
	}
	return cmd
}

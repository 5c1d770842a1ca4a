package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/htreekit/htree/store"
	"github.com/joshuapare/htreekit/htree/verify"
)

func init() {
	rootCmd.AddCommand(newVerifyCmd())
}

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <image>",
		Short: "Check every structural invariant of an index image",
		Long: `The verify command walks the whole index tree and validates its
structure: header layout, index key ordering, leaf entry tiling, hash range
membership, and block checksums.

Example:
  htreectl verify dir.img`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, inode, err := store.OpenFile(args[0], true)
			if err != nil {
				return fmt.Errorf("failed to open image: %w", err)
			}
			defer s.Close()

			if err := verify.AllInvariants(s, inode); err != nil {
				return fmt.Errorf("verification failed: %w", err)
			}
			printInfo("OK: %s (%d blocks)\n", args[0], s.Blocks())
			return nil
		},
	}
	return cmd
}

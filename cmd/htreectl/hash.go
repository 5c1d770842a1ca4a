package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/htreekit/htree/hash"
)

func init() {
	rootCmd.AddCommand(newHashCmd())
}

func newHashCmd() *cobra.Command {
	var (
		version uint8
		all     bool
	)
	cmd := &cobra.Command{
		Use:   "hash <name>...",
		Short: "Print the index hash of one or more names",
		Long: `The hash command computes the (major, minor) hash pair a name sorts
under, using the default seed. Useful for debugging index placement.

Example:
  htreectl hash README.md
  htreectl hash README.md --version 2
  htreectl hash README.md --all`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			versions := []uint8{version}
			if all {
				versions = []uint8{
					hash.Legacy, hash.HalfMD4, hash.Tea,
					hash.LegacyUnsigned, hash.HalfMD4Unsigned, hash.TeaUnsigned,
				}
			}
			for _, name := range args {
				for _, v := range versions {
					major, minor, err := hash.Compute([]byte(name), nil, v)
					if err != nil {
						return fmt.Errorf("hash %q: %w", name, err)
					}
					if jsonOut {
						if err := printJSON(map[string]interface{}{
							"name": name, "version": v, "major": major, "minor": minor,
						}); err != nil {
							return err
						}
						continue
					}
					printInfo("%-30s v%d  major=0x%08X minor=0x%08X\n", name, v, major, minor)
				}
			}
			return nil
		},
	}
	cmd.Flags().Uint8Var(&version, "version", 1, "Hash version code")
	cmd.Flags().BoolVar(&all, "all", false, "Print all six hash versions")
	return cmd
}

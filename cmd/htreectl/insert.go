package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/joshuapare/htreekit/htree"
	"github.com/joshuapare/htreekit/htree/store"
	"github.com/joshuapare/htreekit/pkg/types"
)

func init() {
	rootCmd.AddCommand(newInsertCmd())
}

var fileTypes = map[string]types.FileType{
	"file":    types.FTRegFile,
	"dir":     types.FTDir,
	"symlink": types.FTSymlink,
}

func newInsertCmd() *cobra.Command {
	var ftypeName string
	cmd := &cobra.Command{
		Use:   "insert <image> <name> <inode>",
		Short: "Insert a directory entry",
		Long: `The insert command adds a name-to-inode mapping to the index, splitting
leaf blocks and growing the tree as needed.

Example:
  htreectl insert dir.img README.md 12
  htreectl insert dir.img src 13 --type dir`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ino, err := strconv.ParseUint(args[2], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid inode number %q", args[2])
			}
			ftype, ok := fileTypes[ftypeName]
			if !ok {
				return fmt.Errorf("unknown file type %q", ftypeName)
			}

			s, inode, err := store.OpenFile(args[0], false)
			if err != nil {
				return fmt.Errorf("failed to open image: %w", err)
			}
			defer s.Close()

			d := htree.Open(s, inode)
			err = d.Insert(args[1], uint32(ino), ftype)
			if errors.Is(err, types.ErrExists) {
				return fmt.Errorf("entry %q already exists", args[1])
			}
			if err != nil {
				return err
			}
			logger.Debug("entry inserted", "name", args[1], "dirty_blocks", len(d.DirtyBlocks()))
			printVerbose("Touched blocks: %v\n", d.DirtyBlocks())
			printInfo("Inserted %s -> inode %d\n", args[1], ino)
			return s.Sync()
		},
	}
	cmd.Flags().StringVar(&ftypeName, "type", "file", "Entry file type (file, dir, symlink)")
	return cmd
}

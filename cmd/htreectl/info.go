package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/htreekit/htree"
	"github.com/joshuapare/htreekit/htree/store"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <image>",
		Short: "Validate an image and report index metadata",
		Long: `The info command opens a directory index image read-only and displays
its metadata: inode numbers, hash configuration, feature flags, tree depth,
and block usage.

Example:
  htreectl info dir.img
  htreectl info dir.img --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}
	return cmd
}

func runInfo(path string) error {
	printVerbose("Opening image: %s\n", path)
	s, inode, err := store.OpenFile(path, true)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer s.Close()

	d := htree.Open(s, inode)
	root, err := d.Reader().RootInfo()
	if err != nil {
		return fmt.Errorf("failed to read index root: %w", err)
	}

	out := map[string]interface{}{
		"file":            path,
		"uuid":            store.UUIDString(inode.FSUUID),
		"inode":           inode.Ino,
		"generation":      inode.Gen,
		"dir_size":        inode.ByteSize,
		"block_size":      s.BlockSize(),
		"blocks":          s.Blocks(),
		"hash_version":    root.HashVersion,
		"indirect_levels": root.IndirectLevels,
		"metadata_csum":   inode.Flags.MetadataCsum,
		"filetype":        inode.Flags.FileType,
		"casefold":        inode.Flags.Casefold,
	}
	if jsonOut {
		return printJSON(out)
	}

	printInfo("\nImage Information:\n")
	printInfo("  File: %s\n", path)
	if stat, err := os.Stat(path); err == nil {
		printInfo("  Size: %d bytes\n", stat.Size())
	}
	printInfo("  UUID: %s\n", store.UUIDString(inode.FSUUID))
	printInfo("  Inode: %d (generation %d)\n", inode.Ino, inode.Gen)
	printInfo("  Directory size: %d bytes\n", inode.ByteSize)
	printInfo("  Block size: %d (%d blocks)\n", s.BlockSize(), s.Blocks())
	printInfo("  Hash version: %d\n", root.HashVersion)
	printInfo("  Indirect levels: %d\n", root.IndirectLevels)
	printInfo("  Features: metadata_csum=%t filetype=%t casefold=%t\n",
		inode.Flags.MetadataCsum, inode.Flags.FileType, inode.Flags.Casefold)
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/htreekit/htree"
	"github.com/joshuapare/htreekit/htree/store"
	"github.com/joshuapare/htreekit/pkg/types"
)

func init() {
	rootCmd.AddCommand(newCreateCmd())
}

func newCreateCmd() *cobra.Command {
	var (
		blockSize   uint32
		hashVersion uint8
		ino         uint32
		gen         uint32
		parent      uint32
		noCsum      bool
		noFiletype  bool
		casefold    bool
	)
	cmd := &cobra.Command{
		Use:   "create <image>",
		Short: "Create an empty indexed directory image",
		Long: `The create command writes a fresh image file holding an empty indexed
directory: the index root block plus one empty leaf.

Example:
  htreectl create dir.img
  htreectl create dir.img --block-size 1024 --hash-version 2 --casefold`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info := &types.InodeInfo{
				Ino:         ino,
				Gen:         gen,
				HashVersion: hashVersion,
				Flags: types.Features{
					DirIndex:     true,
					FileType:     !noFiletype,
					MetadataCsum: !noCsum,
					Casefold:     casefold,
				},
			}
			s, err := store.CreateFile(args[0], blockSize, info)
			if err != nil {
				return err
			}
			defer s.Close()
			logger.Debug("image created", "path", args[0], "block_size", blockSize)
			if _, err := htree.Create(s, info, htree.CreateOptions{ParentInode: parent}); err != nil {
				return fmt.Errorf("initialize index: %w", err)
			}
			if err := s.Sync(); err != nil {
				return err
			}
			printInfo("Created %s: block size %d, hash version %d, uuid %s\n",
				args[0], blockSize, hashVersion, store.UUIDString(info.FSUUID))
			return nil
		},
	}
	cmd.Flags().Uint32Var(&blockSize, "block-size", 4096, "Block size in bytes")
	cmd.Flags().Uint8Var(&hashVersion, "hash-version", 1, "Hash version code (0=legacy, 1=half-MD4, 2=TEA)")
	cmd.Flags().Uint32Var(&ino, "ino", 2, "Directory inode number")
	cmd.Flags().Uint32Var(&gen, "gen", 0, "Inode generation")
	cmd.Flags().Uint32Var(&parent, "parent", 0, "Parent inode for the dot-dot entry (0 = self)")
	cmd.Flags().BoolVar(&noCsum, "no-csum", false, "Disable metadata checksums")
	cmd.Flags().BoolVar(&noFiletype, "no-filetype", false, "Disable file type tags in entries")
	cmd.Flags().BoolVar(&casefold, "casefold", false, "Enable case-insensitive name matching")
	return cmd
}

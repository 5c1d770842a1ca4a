package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/htreekit/htree/store"
	"github.com/joshuapare/htreekit/internal/format"
	"github.com/joshuapare/htreekit/pkg/types"
)

func init() {
	rootCmd.AddCommand(newDumpCmd())
}

func newDumpCmd() *cobra.Command {
	var entries bool
	cmd := &cobra.Command{
		Use:   "dump <image>",
		Short: "Print the index tree structure",
		Long: `The dump command walks the index from the root and prints every index
block with its pair array, and optionally the entries in each leaf.

Example:
  htreectl dump dir.img
  htreectl dump dir.img --entries`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, inode, err := store.OpenFile(args[0], true)
			if err != nil {
				return fmt.Errorf("failed to open image: %w", err)
			}
			defer s.Close()
			d := &dumper{store: s, feat: inode.Flags, entries: entries}
			return d.root()
		},
	}
	cmd.Flags().BoolVar(&entries, "entries", false, "Also list the entries in each leaf block")
	return cmd
}

type dumper struct {
	store   types.BlockStore
	feat    types.Features
	entries bool
}

func (d *dumper) root() error {
	block, err := d.store.ReadBlock(0)
	if err != nil {
		return err
	}
	info, err := format.ParseRootInfo(block)
	if err != nil {
		return err
	}
	cl, err := format.ReadCountLimit(block, format.RootInfoOffset+format.RootInfoSize)
	if err != nil {
		return err
	}
	printInfo("root: hash_version=%d levels=%d count=%d limit=%d\n",
		info.HashVersion, info.IndirectLevels, cl.Count, cl.Limit)
	return d.pairs(block, format.RootPairsOffset, int(cl.Count), int(info.IndirectLevels), 1)
}

func (d *dumper) pairs(block []byte, base, count, levels, depth int) error {
	indent := strings.Repeat("  ", depth)
	for i := 0; i < count; i++ {
		p := format.PairAt(block, base, i)
		if i == 0 {
			printInfo("%s[%3d] hash=<sentinel>  block=%d\n", indent, i, p.Block)
		} else {
			printInfo("%s[%3d] hash=0x%08X block=%d\n", indent, i, p.Hash, p.Block)
		}
		child, err := d.store.ReadBlock(p.Block)
		if err != nil {
			return err
		}
		if levels > 0 {
			cl, err := format.ReadCountLimit(child, 0)
			if err != nil {
				return err
			}
			printInfo("%s  node %d: count=%d limit=%d\n", indent, p.Block, cl.Count, cl.Limit)
			if err := d.pairs(child, format.NodePairsOffset, int(cl.Count), levels-1, depth+2); err != nil {
				return err
			}
			continue
		}
		if err := d.leaf(p.Block, child, indent+"  "); err != nil {
			return err
		}
	}
	return nil
}

func (d *dumper) leaf(addr uint32, block []byte, indent string) error {
	end := format.EntrySpaceEnd(int(d.store.BlockSize()), d.feat.MetadataCsum)
	live, free := 0, 0
	var names []string
	for off := 0; off < end; {
		ent, next, err := format.NextDirent(block, off, d.feat.FileType)
		if err != nil {
			return fmt.Errorf("leaf %d at offset %d: %w", addr, off, err)
		}
		if ent.Free() {
			free++
		} else {
			live++
			if d.entries {
				names = append(names, fmt.Sprintf("%s%-4d %s", indent+"  ", ent.Inode, ent.Name))
			}
		}
		off = next
	}
	printInfo("%sleaf %d: %d entries, %d free slots\n", indent, addr, live, free)
	for _, n := range names {
		printInfo("%s\n", n)
	}
	return nil
}

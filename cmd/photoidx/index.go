package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RKrahl/photoidx/consts"
	"github.com/RKrahl/photoidx/library"
	"github.com/RKrahl/photoidx/library/sumcache"
	"github.com/RKrahl/photoidx/logging"
	"github.com/RKrahl/photoidx/stats"
)

// withIndex opens the index of the image directory for the duration of f.
func (c *cli) withIndex(ctx context.Context, f func(*library.Index) error) error {
	idx, err := library.Open(ctx, c.dir)
	if err != nil {
		return err
	}
	return errors.Join(f(idx), idx.Close())
}

func (c *cli) scanOptions(checksums []string) (library.ScanOptions, func() error, error) {
	opts := library.ScanOptions{Checksums: checksums}
	if !c.cfg.Cache.Enabled {
		return opts, func() error { return nil }, nil
	}
	cache, err := sumcache.Open(c.cfg.Cache.Path)
	if err != nil {
		return opts, nil, fmt.Errorf("failed to open checksum cache: %w", err)
	}
	opts.Cache = cache
	return opts, cache.Close, nil
}

func (c *cli) createCmd() *cobra.Command {
	var (
		checksums []string
		update    bool
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "create the index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("checksums") {
				checksums = c.cfg.Checksums
			}
			opts, closeCache, err := c.scanOptions(checksums)
			if err != nil {
				return err
			}
			defer closeCache()
			ctx := cmd.Context()
			var idx *library.Index
			if update {
				idx, err = library.Open(ctx, c.dir)
				if err != nil {
					return err
				}
				defer idx.Close()
				if err := idx.ExtendDirectory(ctx, c.dir, opts); err != nil {
					return err
				}
			} else {
				idx, err = library.Create(ctx, c.dir, opts)
				if err != nil {
					return err
				}
				defer idx.Close()
			}
			if err := idx.Write(ctx, ""); err != nil {
				return err
			}
			n, _ := idx.Len()
			logging.From(ctx).Info("Index written", zap.String("path", idx.Path()), zap.Int("items", n))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&checksums, "checksums", nil, "comma separated list of hash algorithms to calculate checksums (default from config)")
	cmd.Flags().BoolVar(&update, "update", false, "add images to an existing index")
	return cmd
}

func (c *cli) lsCmd() *cobra.Command {
	var (
		ff       filterFlags
		checksum string
	)
	cmd := &cobra.Command{
		Use:   "ls [FILE...]",
		Short: "list image files",
		RunE: func(cmd *cobra.Command, args []string) error {
			if checksum != "" {
				if err := library.ValidateChecksums([]string{checksum}); err != nil {
					return err
				}
			}
			criteria, err := ff.criteria(cmd, args, c.cfg.GPSRadius)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			return c.withIndex(cmd.Context(), func(idx *library.Index) error {
				for item := range criteria.Apply(idx.Items()) {
					if checksum == "" {
						fmt.Fprintln(out, item.Filename)
						continue
					}
					if sum, ok := item.Checksum[checksum]; ok {
						fmt.Fprintf(out, "%s  %s\n", sum, item.Filename)
					}
				}
				return idx.Err()
			})
		},
	}
	ff.register(cmd)
	cmd.Flags().StringVar(&checksum, "checksum", "", "hash algorithm to print checksums")
	return cmd
}

func (c *cli) lstagsCmd() *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "lstags [FILE...]",
		Short: "list tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := ff.criteria(cmd, args, c.cfg.GPSRadius)
			if err != nil {
				return err
			}
			return c.withIndex(cmd.Context(), func(idx *library.Index) error {
				tags := library.NewTagSet()
				for item := range criteria.Apply(idx.Items()) {
					for tag := range item.Tags {
						tags[tag] = struct{}{}
					}
				}
				if err := idx.Err(); err != nil {
					return err
				}
				for _, tag := range tags.Sorted() {
					fmt.Fprintln(cmd.OutOrStdout(), tag)
				}
				return nil
			})
		},
	}
	ff.register(cmd)
	return cmd
}

// updateCmd builds a command applying update to the selected items and
// writing the index back.
func (c *cli) updateCmd(use, short string, tagArg bool, update func(item *library.Item, tag string) error) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			var tag string
			if tagArg {
				tag, args = args[0], args[1:]
			}
			criteria, err := ff.criteria(cmd, args, c.cfg.GPSRadius)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return c.withIndex(ctx, func(idx *library.Index) error {
				var n int
				for item := range criteria.Apply(idx.Items()) {
					if err := update(item, tag); err != nil {
						return fmt.Errorf("%s: %w", item.Filename, err)
					}
					n++
				}
				if err := idx.Err(); err != nil {
					return err
				}
				logging.From(ctx).Debug("Updated items", zap.Int("count", n))
				return idx.Write(ctx, "")
			})
		},
	}
	if tagArg {
		cmd.Args = cobra.MinimumNArgs(1)
	}
	ff.register(cmd)
	return cmd
}

func (c *cli) addtagCmd() *cobra.Command {
	return c.updateCmd("addtag TAG [FILE...]", "add tag to images", true, func(item *library.Item, tag string) error {
		return item.AddTag(tag)
	})
}

func (c *cli) rmtagCmd() *cobra.Command {
	return c.updateCmd("rmtag TAG [FILE...]", "remove tag from images", true, func(item *library.Item, tag string) error {
		item.RemoveTag(tag)
		return nil
	})
}

func (c *cli) selectCmd() *cobra.Command {
	return c.updateCmd("select [FILE...]", "add images to the selection", false, func(item *library.Item, _ string) error {
		item.Selected = true
		return nil
	})
}

func (c *cli) deselectCmd() *cobra.Command {
	return c.updateCmd("deselect [FILE...]", "remove images from the selection", false, func(item *library.Item, _ string) error {
		item.Selected = false
		return nil
	})
}

func (c *cli) statsCmd() *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "stats [FILE...]",
		Short: "show statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := ff.criteria(cmd, args, c.cfg.GPSRadius)
			if err != nil {
				return err
			}
			return c.withIndex(cmd.Context(), func(idx *library.Index) error {
				s := stats.Collect(criteria.Apply(idx.Items()))
				if err := idx.Err(); err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), s.String())
				return nil
			})
		},
	}
	ff.register(cmd)
	return cmd
}

func (c *cli) sortCmd() *cobra.Command {
	var reverse bool
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "sort the index by capture date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			order := consts.Ascending
			if reverse {
				order = consts.Descending
			}
			ctx := cmd.Context()
			return c.withIndex(ctx, func(idx *library.Index) error {
				if err := idx.SortByDate(order); err != nil {
					return err
				}
				return idx.Write(ctx, "")
			})
		},
	}
	cmd.Flags().BoolVar(&reverse, "reverse", false, "newest first")
	return cmd
}


func (c *cli) moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move FILE POS",
		Short: "move an image to another position in the index",
		Long:  "Move an image to position POS, counted from zero. Negative positions count from the end.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[1])
			}
			ctx := cmd.Context()
			return c.withIndex(ctx, func(idx *library.Index) error {
				item, err := idx.Lookup(args[0])
				if err != nil {
					return err
				}
				from, err := idx.IndexOf(item)
				if err != nil {
					return err
				}
				if err := idx.Move(from, pos); err != nil {
					return fmt.Errorf("position %d: %w", pos, err)
				}
				return idx.Write(ctx, "")
			})
		},
	}
}

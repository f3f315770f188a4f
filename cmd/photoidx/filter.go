package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RKrahl/photoidx/filter"
)

// filterFlags are the item selection flags shared by the commands
// working on a subset of the index. Remaining positional arguments
// select items by file name.
type filterFlags struct {
	tags        string
	selected    bool
	notSelected bool
	date        string
	gpspos      string
	gpsradius   float64
}

func (f *filterFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.tags, "tags", "", "select images by comma separated list of tags, prefix with ! to exclude")
	flags.BoolVar(&f.selected, "selected", false, "select images in the selection")
	flags.BoolVar(&f.notSelected, "not-selected", false, "select images not in the selection")
	flags.StringVar(&f.date, "date", "", "select images by date or date range")
	flags.StringVar(&f.gpspos, "gpspos", "", "select images by GPS position")
	flags.Float64Var(&f.gpsradius, "gpsradius", 0, "radius around GPS position in km (default from config)")
	cmd.MarkFlagsMutuallyExclusive("selected", "not-selected")
}

func (f *filterFlags) criteria(cmd *cobra.Command, files []string, defaultRadius float64) (filter.Criteria, error) {
	opts := filter.Options{
		Date:      f.date,
		GPSPos:    f.gpspos,
		GPSRadius: defaultRadius,
		Files:     files,
	}
	if cmd.Flags().Changed("tags") {
		opts.Tags = &f.tags
	}
	switch {
	case f.selected:
		opts.Selected = &f.selected
	case f.notSelected:
		selected := false
		opts.Selected = &selected
	}
	if cmd.Flags().Changed("gpsradius") {
		if f.gpsradius <= 0 {
			return filter.Criteria{}, fmt.Errorf("%w: gpsradius must be positive, got %g", filter.ErrInvalidFormat, f.gpsradius)
		}
		opts.GPSRadius = f.gpsradius
	}
	return opts.Criteria()
}

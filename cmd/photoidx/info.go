package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RKrahl/photoidx/domain"
	"github.com/RKrahl/photoidx/domain/formats"
	"github.com/RKrahl/photoidx/logging"
)

const dateLayout = "2006-01-02 15:04:05"

func (c *cli) infoCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "info FILE...",
		Short: "show the meta data of image files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reader := domain.ExifReader{}
			for _, path := range args {
				meta, err := reader.ReadMetaData(ctx, path)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, path)
				printMetaData(out, meta)
				if !raw {
					continue
				}
				fields, err := formats.ExifFields(path)
				if err != nil {
					logging.From(ctx).Warn("No EXIF data", zap.String("path", path), zap.Error(err))
					continue
				}
				for _, f := range fields {
					fmt.Fprintf(out, "    %s: %s\n", f.Name, f.Value)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "also print all EXIF fields")
	return cmd
}

func printMetaData(out io.Writer, meta domain.MediaMetaData) {
	w := tabwriter.NewWriter(out, 0, 4, 1, ' ', 0)
	defer w.Flush()
	if meta.DateTaken != nil {
		fmt.Fprintf(w, "  Date taken:\t%s\n", meta.DateTaken.Format(dateLayout))
	}
	if meta.Orientation != domain.UnknownOrientation {
		fmt.Fprintf(w, "  Orientation:\t%s\n", meta.Orientation)
	}
	if meta.Location != nil {
		fmt.Fprintf(w, "  GPS position:\t%s\n", meta.Location)
	}
	if meta.CameraModel != "" {
		fmt.Fprintf(w, "  Camera:\t%s\n", meta.CameraModel)
	}
	if meta.ExposureTime != nil {
		fmt.Fprintf(w, "  Exposure time:\t%s\n", meta.ExposureTime)
	}
	if meta.Aperture != 0 {
		fmt.Fprintf(w, "  Aperture:\t%s\n", meta.Aperture)
	}
	if meta.ISO != 0 {
		fmt.Fprintf(w, "  ISO:\t%d\n", meta.ISO)
	}
	if meta.FocalLength != 0 {
		fmt.Fprintf(w, "  Focal length:\t%s\n", meta.FocalLength)
	}
}

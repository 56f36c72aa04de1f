package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/cocosip/go-imagecodecs/j2k"
	"github.com/spf13/cobra"
)

func newJ2KCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "j2k",
		Short: "simplified JPEG 2000 Part 1 codestream",
	}
	cmd.AddCommand(newJ2KEncodeCmd(ctx), newJ2KDecodeCmd(ctx))
	return cmd
}

func newJ2KEncodeCmd(ctx context.Context) *cobra.Command {
	var width, height, components, levels, layers, quality int
	var lossy, mct bool

	cmd := &cobra.Command{
		Use:   "encode <in.raw> <out.j2k>",
		Short: "encode an interleaved 8-bit raw raster into a J2K codestream",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pixels, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			img := j2k.Image{Width: width, Height: height, Components: components, Pixels: pixels}
			data, err := j2k.Encode(img, j2k.EncodeOptions{
				Lossy: lossy, Quality: quality, Levels: levels, MCT: mct, Layers: layers,
			})
			if err != nil {
				return err
			}
			slog.InfoContext(ctx, "j2k encode", "in_bytes", len(pixels), "out_bytes", len(data))
			return os.WriteFile(args[1], data, 0644)
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "image width (required)")
	cmd.Flags().IntVar(&height, "height", 0, "image height (required)")
	cmd.Flags().IntVar(&components, "components", 1, "component count (1, 3 or 4)")
	cmd.Flags().IntVar(&levels, "levels", 5, "wavelet decomposition levels")
	cmd.Flags().IntVar(&layers, "layers", 1, "quality layers")
	cmd.Flags().IntVar(&quality, "quality", 80, "quality 1..100 (lossy only)")
	cmd.Flags().BoolVar(&lossy, "lossy", false, "use CDF 9/7 lossy transform instead of CDF 5/3 lossless")
	cmd.Flags().BoolVar(&mct, "mct", false, "apply the multiple-component transform on 3-component images")
	cmd.MarkFlagRequired("width")
	cmd.MarkFlagRequired("height")
	return cmd
}

func newJ2KDecodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <in.j2k> <out.raw>",
		Short: "decode a J2K codestream into an interleaved 8-bit raw raster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			result, err := j2k.Decode(data)
			if err != nil {
				return err
			}
			slog.InfoContext(ctx, "j2k decode", "width", result.Image.Width, "height", result.Image.Height,
				"components", result.Image.Components, "lossy", result.Lossy)
			return os.WriteFile(args[1], result.Image.Pixels, 0644)
		},
	}
	return cmd
}

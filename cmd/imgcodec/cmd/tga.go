package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/cocosip/go-imagecodecs/tga"
	"github.com/spf13/cobra"
)

func newTGACmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tga",
		Short: "Truevision TGA codec",
	}
	cmd.AddCommand(newTGAEncodeCmd(ctx), newTGADecodeCmd(ctx))
	return cmd
}

func newTGAEncodeCmd(ctx context.Context) *cobra.Command {
	var width, height, depth int
	var rle bool

	cmd := &cobra.Command{
		Use:   "encode <in.bgra> <out.tga>",
		Short: "encode an interleaved top-down BGRA8888 raster into a TGA file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if len(raw) != width*height*4 {
				return fail("tga encode: %d bytes, want %d (%dx%d BGRA8888)", len(raw), width*height*4, width, height)
			}
			img := &tga.Image{Width: width, Height: height, Pix: make([]tga.BGRA, width*height)}
			for i := range img.Pix {
				img.Pix[i] = tga.BGRA{B: raw[i*4], G: raw[i*4+1], R: raw[i*4+2], A: raw[i*4+3]}
			}
			data, err := tga.Encode(img, tga.EncodeOptions{PixelDepth: depth, RLE: rle})
			if err != nil {
				return err
			}
			slog.InfoContext(ctx, "tga encode", "width", width, "height", height, "out_bytes", len(data))
			return os.WriteFile(args[1], data, 0644)
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "image width (required)")
	cmd.Flags().IntVar(&height, "height", 0, "image height (required)")
	cmd.Flags().IntVar(&depth, "depth", 32, "pixel depth: 24 or 32")
	cmd.Flags().BoolVar(&rle, "rle", true, "use RLE packet coding")
	cmd.MarkFlagRequired("width")
	cmd.MarkFlagRequired("height")
	return cmd
}

func newTGADecodeCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <in.tga> <out.bgra>",
		Short: "decode a TGA file into a canonical top-down BGRA8888 raster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			img, err := tga.Decode(data)
			if err != nil {
				return err
			}
			out := make([]byte, len(img.Pix)*4)
			for i, p := range img.Pix {
				out[i*4], out[i*4+1], out[i*4+2], out[i*4+3] = p.B, p.G, p.R, p.A
			}
			slog.InfoContext(ctx, "tga decode", "width", img.Width, "height", img.Height)
			return os.WriteFile(args[1], out, 0644)
		},
	}
	return cmd
}

package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/cocosip/go-imagecodecs/ccitt"
	"github.com/spf13/cobra"
)

func newCCITTCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ccitt",
		Short: "CCITT Group 3/4 fax coding",
	}
	cmd.AddCommand(newCCITTEncodeCmd(ctx), newCCITTDecodeCmd(ctx))
	return cmd
}

// rawBitmap files are one byte per pixel (nonzero = black), the simplest
// interchange format for this CLI; see tga/gif commands for codecs with
// their own container.
func newCCITTEncodeCmd(ctx context.Context) *cobra.Command {
	var width, group, k int
	var blackIs1, byteAlign bool

	cmd := &cobra.Command{
		Use:   "encode <in.pix> <out.ccitt>",
		Short: "encode a one-byte-per-pixel bitmap (nonzero = black)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if width <= 0 || len(raw)%width != 0 {
				return fail("ccitt encode: %d bytes not divisible by width %d", len(raw), width)
			}
			height := len(raw) / width
			bmp := &ccitt.Bitmap{Width: width, Height: height, Pix: make([]bool, len(raw))}
			for i, b := range raw {
				bmp.Pix[i] = b != 0
			}

			data := ccitt.Encode(bmp, ccitt.Options{
				Group: group, K: k, Width: width,
				BlackIs1: blackIs1, EncodedByteAlign: byteAlign,
			})
			slog.InfoContext(ctx, "ccitt encode", "width", width, "height", height, "out_bytes", len(data))
			return os.WriteFile(args[1], data, 0644)
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "row width in pixels (required)")
	cmd.Flags().IntVar(&group, "group", 4, "3 or 4")
	cmd.Flags().IntVar(&k, "k", 4, "group 3 K parameter (0 = pure 1D)")
	cmd.Flags().BoolVar(&blackIs1, "black-is-1", false, "set Options.BlackIs1 (ccitt.Encode does not read it)")
	cmd.Flags().BoolVar(&byteAlign, "byte-align", false, "byte-align each encoded row")
	cmd.MarkFlagRequired("width")
	return cmd
}

func newCCITTDecodeCmd(ctx context.Context) *cobra.Command {
	var width, height, group, k int
	var blackIs1, byteAlign bool

	cmd := &cobra.Command{
		Use:   "decode <in.ccitt> <out.pix>",
		Short: "decode into a one-byte-per-pixel bitmap (0 = white, 1 = black)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			bmp, err := ccitt.Decode(data, ccitt.Options{
				Group: group, K: k, Width: width, Rows: height,
				BlackIs1: blackIs1, EncodedByteAlign: byteAlign,
			})
			if err != nil {
				return err
			}
			out := make([]byte, len(bmp.Pix))
			for i, black := range bmp.Pix {
				if black {
					out[i] = 1
				}
			}
			slog.InfoContext(ctx, "ccitt decode", "width", bmp.Width, "height", bmp.Height)
			return os.WriteFile(args[1], out, 0644)
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "row width in pixels (required)")
	cmd.Flags().IntVar(&height, "height", 0, "row count, 0 = until end of input")
	cmd.Flags().IntVar(&group, "group", 4, "3 or 4")
	cmd.Flags().IntVar(&k, "k", 4, "group 3 K parameter (0 = pure 1D)")
	cmd.Flags().BoolVar(&blackIs1, "black-is-1", false, "set Options.BlackIs1 (ccitt.Decode does not read it)")
	cmd.Flags().BoolVar(&byteAlign, "byte-align", false, "rows are byte-aligned")
	cmd.MarkFlagRequired("width")
	return cmd
}

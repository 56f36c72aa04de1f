package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/cocosip/go-imagecodecs/gif"
	"github.com/spf13/cobra"
)

func newGIFCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gif",
		Short: "GIF87a/89a container and LZW coding",
	}
	cmd.AddCommand(newGIFEncodeCmd(ctx), newGIFDecodeCmd(ctx))
	return cmd
}

// newGIFEncodeCmd builds a single-frame GIF from a raw palette-index file
// plus a "R,G,B" per-line palette CSV.
func newGIFEncodeCmd(ctx context.Context) *cobra.Command {
	var width, height int
	var paletteFile string
	var interlace bool

	cmd := &cobra.Command{
		Use:   "encode <indices.pix> <out.gif>",
		Short: "encode one frame of palette indices into a GIF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			indices, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if len(indices) != width*height {
				return fail("gif encode: %d indices, want %d (%dx%d)", len(indices), width*height, width, height)
			}
			palette, err := readPaletteCSV(paletteFile)
			if err != nil {
				return err
			}

			f := &gif.File{
				Width: width, Height: height,
				GlobalPalette: palette,
				Frames:        []gif.Frame{{Width: width, Height: height, Indices: indices}},
			}
			data, err := gif.Encode(f, gif.EncodeOptions{Interlace: interlace, LoopCount: -1})
			if err != nil {
				return err
			}
			slog.InfoContext(ctx, "gif encode", "width", width, "height", height, "out_bytes", len(data))
			return os.WriteFile(args[1], data, 0644)
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "frame width (required)")
	cmd.Flags().IntVar(&height, "height", 0, "frame height (required)")
	cmd.Flags().StringVar(&paletteFile, "palette", "", "\"R,G,B\" per line palette CSV (required)")
	cmd.Flags().BoolVar(&interlace, "interlace", false, "write in Adam7 interlaced order")
	cmd.MarkFlagRequired("width")
	cmd.MarkFlagRequired("height")
	cmd.MarkFlagRequired("palette")
	return cmd
}

func newGIFDecodeCmd(ctx context.Context) *cobra.Command {
	var frameIdx int
	var bgra bool

	cmd := &cobra.Command{
		Use:   "decode <in.gif> <out.pix>",
		Short: "decode one frame out of a GIF, as palette indices or resolved BGRA8888",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			f, err := gif.Decode(data)
			if err != nil {
				return err
			}
			if frameIdx < 0 || frameIdx >= len(f.Frames) {
				return fail("gif decode: frame %d out of range (0..%d)", frameIdx, len(f.Frames)-1)
			}
			frame := f.Frames[frameIdx]
			slog.InfoContext(ctx, "gif decode", "frames", len(f.Frames), "width", f.Width, "height", f.Height, "loop_count", f.LoopCount)
			if !bgra {
				return os.WriteFile(args[1], frame.Indices, 0644)
			}
			out := make([]byte, len(frame.BGRA)*4)
			for i, p := range frame.BGRA {
				out[i*4], out[i*4+1], out[i*4+2], out[i*4+3] = p.B, p.G, p.R, p.A
			}
			return os.WriteFile(args[1], out, 0644)
		},
	}
	cmd.Flags().IntVar(&frameIdx, "frame", 0, "frame index to extract")
	cmd.Flags().BoolVar(&bgra, "bgra", false, "write resolved interleaved BGRA8888 instead of raw palette indices")
	return cmd
}

func readPaletteCSV(path string) ([]gif.RGB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pal []gif.RGB
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 3 {
			return nil, fmt.Errorf("palette: bad line %q", line)
		}
		var rgb [3]uint8
		for i, p := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				return nil, fmt.Errorf("palette: %w", err)
			}
			rgb[i] = uint8(v)
		}
		pal = append(pal, gif.RGB{R: rgb[0], G: rgb[1], B: rgb[2]})
	}
	return pal, scanner.Err()
}

// Command imgcodec exercises the J2K, CCITT, GIF and TGA codecs from the
// command line.
package main

import (
	"context"
	"os"

	"github.com/cocosip/go-imagecodecs/cmd/imgcodec/cmd"
)

func main() {
	if err := cmd.NewRoot(context.Background()).Execute(); err != nil {
		os.Exit(1)
	}
}

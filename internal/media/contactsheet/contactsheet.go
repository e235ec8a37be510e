// Package contactsheet renders a thumbnail grid for a media file with vcsi.
package contactsheet

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"scrapurr/internal/fileutil"
	"scrapurr/internal/procexec"
	"scrapurr/internal/services"
)

const (
	defaultBinary = "vcsi"
	defaultWidth  = 1500
	gridLayout    = "4x6"
	sampleCount   = 24
)

// Generator produces same-stem .jpg contact sheets.
type Generator struct {
	binary string
	width  int
	runner procexec.Runner
}

// New constructs a Generator. Zero values select vcsi and a 1500px sheet.
func New(runner procexec.Runner, binary string, width int) *Generator {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = defaultBinary
	}
	if width <= 0 {
		width = defaultWidth
	}
	return &Generator{binary: binary, width: width, runner: runner}
}

// OutputPath returns where the sheet for media is written.
func OutputPath(media string) string {
	return fileutil.SwapExt(media, ".jpg")
}

// Args returns the vcsi arguments: a 4x6 grid of 24 timestamped samples.
func Args(media, output string, width int) []string {
	return []string{
		media,
		"-g", gridLayout,
		"--num-samples", strconv.Itoa(sampleCount),
		"-t",
		"-w", strconv.Itoa(width),
		"-o", output,
	}
}

// Generate renders the sheet for media and returns its path.
func (g *Generator) Generate(ctx context.Context, media string) (string, error) {
	output := OutputPath(media)
	result, err := g.runner.Run(ctx, procexec.Command{Name: g.binary, Args: Args(media, output, g.width)})
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "contactsheet", "launch vcsi", "", err)
	}
	if !result.Succeeded {
		return "", services.Wrap(services.ErrExternalTool, "contactsheet", "vcsi",
			fmt.Sprintf("exit code %d", result.ExitCode), nil)
	}
	ok, err := fileutil.NonEmpty(output)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "contactsheet", "verify output", output, err)
	}
	if !ok {
		return "", services.Wrap(services.ErrNotFound, "contactsheet", "verify output", "vcsi produced no image at "+output, nil)
	}
	return output, nil
}

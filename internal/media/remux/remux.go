// Package remux copies the streams of a raw capture into an MP4 container
// with ffmpeg. No re-encoding takes place.
package remux

import (
	"context"
	"fmt"
	"strings"

	"scrapurr/internal/procexec"
	"scrapurr/internal/services"
)

const defaultBinary = "ffmpeg"

// Remuxer runs ffmpeg stream-copy conversions.
type Remuxer struct {
	binary string
	runner procexec.Runner
}

// New constructs a Remuxer. An empty binary selects "ffmpeg" from PATH.
func New(runner procexec.Runner, binary string) *Remuxer {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = defaultBinary
	}
	return &Remuxer{binary: binary, runner: runner}
}

// Args returns the ffmpeg arguments for converting input to output.
func Args(input, output string) []string {
	return []string{"-i", input, "-c", "copy", "-y", output}
}

// Remux converts input to output. A non-zero exit and a launch failure are both
// returned as errors marked services.ErrExternalTool.
func (r *Remuxer) Remux(ctx context.Context, input, output string) error {
	result, err := r.runner.Run(ctx, procexec.Command{Name: r.binary, Args: Args(input, output)})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "remux", "launch ffmpeg", "", err)
	}
	if !result.Succeeded {
		return services.Wrap(services.ErrExternalTool, "remux", "ffmpeg",
			fmt.Sprintf("exit code %d: %s", result.ExitCode, lastLine(result.Output)), nil)
	}
	return nil
}

func lastLine(output string) string {
	output = strings.TrimSpace(output)
	if idx := strings.LastIndexByte(output, '\n'); idx >= 0 {
		return strings.TrimSpace(output[idx+1:])
	}
	return output
}

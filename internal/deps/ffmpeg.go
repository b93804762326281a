package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// CheckEncoders asks ffmpeg for its encoder list and reports which of the
// wanted encoders it lacks.
func CheckEncoders(ctx context.Context, ffmpegBinary string, wanted ...string) ([]string, error) {
	cmd := commandContext(ctx, ffmpegBinary, "-hide_banner", "-encoders") //nolint:gosec
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("list ffmpeg encoders: %w", err)
	}
	available := parseEncoders(out)
	var missing []string
	for _, name := range wanted {
		name = strings.TrimSpace(name)
		if name == "" || name == "copy" {
			continue
		}
		if _, ok := available[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

// parseEncoders reads `ffmpeg -encoders` output. Encoder rows follow the
// " ------" separator and look like " V....D libx264   H.264 ...".
func parseEncoders(out []byte) map[string]struct{} {
	encoders := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(out))
	listing := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !listing {
			listing = strings.HasPrefix(line, "---")
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields[0]) != 6 {
			continue
		}
		encoders[fields[1]] = struct{}{}
	}
	return encoders
}

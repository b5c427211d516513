// Package browser launches URLs and files in the user's desktop viewer.
package browser

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoBrowser is returned when no launcher is available.
var ErrNoBrowser = errors.New("no browser available")

// Open opens the specified URL, or a local file path, in the user's default
// viewer. $BROWSER overrides the platform launcher.
func Open(target string) error {
	name, args, err := command(runtime.GOOS, os.Getenv("BROWSER"), target)
	if err != nil {
		return err
	}
	return exec.Command(name, args...).Start()
}

func command(goos, override, target string) (string, []string, error) {
	if override = strings.TrimSpace(override); override != "" {
		fields := strings.Fields(override)
		return fields[0], append(fields[1:], target), nil
	}
	switch goos {
	case "darwin":
		return "open", []string{target}, nil
	case "linux", "freebsd", "openbsd":
		return "xdg-open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	default:
		return "", nil, fmt.Errorf("%w: unsupported OS %s", ErrNoBrowser, goos)
	}
}

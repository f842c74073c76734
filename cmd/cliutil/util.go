package cliutil

import (
	"fmt"
	"os"
	"path"

	"github.com/labstack/gommon/color"

	"github.com/storacha/sandbox/pkg/build"
)

func PrintHero(addr string) {
	fmt.Printf(`
%s %s %s
%s %s %s

🔥 %s
🌐 http://%s
🚀 Ready!
`,
		color.Green("▗▄▖"), color.Red("7702", color.B), color.Green("▗▄▖"),
		color.Green("▝▀▘"), color.Red("sandbox", color.D), color.Green("▝▀▘"),
		build.Version, addr)
}

// Step prints a progress line for a long running command.
func Step(format string, args ...any) {
	fmt.Printf("%s %s\n", color.Cyan("›"), fmt.Sprintf(format, args...))
}

// Done prints a success line.
func Done(format string, args ...any) {
	fmt.Printf("%s %s\n", color.Green("✔"), fmt.Sprintf(format, args...))
}

func Mkdirp(dirpath ...string) (string, error) {
	dir := path.Join(dirpath...)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return "", fmt.Errorf("creating directory: %s: %w", dir, err)
	}
	return dir, nil
}

package frr

import (
	"os"
	"strings"

	"github.com/encodeous/vpnv4/state"
)

// Merge appends the generated configuration to a base configuration between delimiting markers
func Merge(base, generated string) string {
	parts := []string{strings.TrimRight(base, " \t\r\n")}
	generated = strings.TrimSpace(generated)
	if generated != "" {
		parts = append(parts,
			"",
			state.MergeBeginMarker,
			generated,
			state.MergeEndMarker,
			"",
		)
	}
	return strings.Join(parts, "\n") + "\n"
}

// MergeFiles merges basePath with generatedPath into outPath. A missing generated file merges nothing.
func MergeFiles(basePath, generatedPath, outPath string) error {
	base, err := os.ReadFile(basePath)
	if err != nil {
		return err
	}
	generated, err := os.ReadFile(generatedPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(outPath, []byte(Merge(string(base), string(generated))), 0644)
}

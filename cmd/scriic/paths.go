package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func splitPathListEnv(value string) []string {
	if value == "" {
		return nil
	}
	raw := strings.Split(value, string(os.PathListSeparator))
	out := make([]string, 0, len(raw))
	for _, part := range raw {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// resolveScriicHome returns SCRIIC_HOME, falling back to ~/.scriic.
func resolveScriicHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("SCRIIC_HOME")); home != "" {
		return filepath.Abs(home)
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(userHome, ".scriic"), nil
}

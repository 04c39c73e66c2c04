package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/starsview/schema"
)

// Color variables for console output.
var (
	ContractColor = color.New(color.FgCyan)                // ContractColor marks contract-level series.
	ParentColor   = color.New(color.FgMagenta, color.Bold) // ParentColor marks parent organization series.
	MarketColor   = color.New(color.FgGreen, color.Bold)   // MarketColor marks the market-wide series.
	WarnColor     = color.New(color.FgYellow)              // WarnColor marks recoverable user-visible messages.
)

// GetPlainScopeTag returns the upper-case scope tag used in tables and chips.
func GetPlainScopeTag(scope schema.Scope) string {
	return strings.ToUpper(scope.Title())
}

// GetColorScopeTag returns a colored scope tag for console output (table).
func GetColorScopeTag(scope schema.Scope) string {
	text := GetPlainScopeTag(scope)

	switch scope {
	case schema.ContractScope:
		return ContractColor.Sprint(text)
	case schema.ParentScope:
		return ParentColor.Sprint(text)
	default:
		return MarketColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// LogMessage prints a recoverable user-visible message to stderr.
func LogMessage(msg string) {
	if msg == "" {
		return
	}
	_, _ = fmt.Fprintln(os.Stderr, WarnColor.Sprint(msg))
}

// GetSnapshotDBFilePath returns the path to the SQLite DB file for snapshot storage.
func GetSnapshotDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".starsview_snapshots.db"
	}
	return filepath.Join(homeDir, ".starsview_snapshots.db")
}

// TruncateLabel shortens a label to maxWidth runes with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for the ellipsis and one character.
func TruncateLabel(label string, maxWidth int) string {
	runes := []rune(label)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return label
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ParseArguments converts command-line arguments into a map of flags and values
func ParseArguments() map[string]string {
	args := make(map[string]string)

	// First, identify the command (compare/report)
	command := ""
	commandIndex := -1
	for i := 1; i < len(os.Args); i++ {
		if os.Args[i] == "compare" || os.Args[i] == "report" {
			command = os.Args[i]
			commandIndex = i
			break
		}
	}

	if command != "" {
		args["command"] = command
	}

	// Process all arguments, skipping the command
	for i := 1; i < len(os.Args); i++ {
		if i == commandIndex {
			continue
		}

		arg := os.Args[i]

		// Handle flags with equals sign (--key=value)
		if strings.HasPrefix(arg, "--") && strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			flagName := strings.TrimPrefix(parts[0], "--")
			args[flagName] = parts[1]
			continue
		}

		// Handle flags without equals sign (--key value)
		if strings.HasPrefix(arg, "--") {
			flagName := strings.TrimPrefix(arg, "--")

			// Check if this is a boolean flag (no value)
			if i+1 >= len(os.Args) || strings.HasPrefix(os.Args[i+1], "--") {
				args[flagName] = "true"
			} else {
				args[flagName] = os.Args[i+1]
				i++ // Skip the value in the next iteration
			}
		}
	}

	return args
}

// GetDefaultCachePath returns the default path for the page cache database
func GetDefaultCachePath() string {
	exePath, err := os.Executable()
	if err != nil {
		// Fallback to current directory if executable path can't be determined
		return "doccompare.db"
	}
	return filepath.Join(filepath.Dir(exePath), "doccompare.db")
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s compare --left=DIR --right=DIR [--cache=PATH] [--zones=FILE] [--session=FILE] [--threshold=N] [--position-weight=F] [--ssim] [--debug] [--logfile=PATH]\n", os.Args[0])
	fmt.Printf("  %s report --left=DIR --right=DIR --out=FILE [--session=FILE] [--include-identical] [--cache=PATH] [--zones=FILE] [--debug] [--logfile=PATH]\n", os.Args[0])
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  --left            : Directory of rendered page images for the left document\n")
	fmt.Printf("  --right           : Directory of rendered page images for the right document\n")
	fmt.Printf("  --cache           : Page cache database path (default: %s)\n", GetDefaultCachePath())
	fmt.Printf("  --no-cache        : Disable the page cache\n")
	fmt.Printf("  --zones           : JSON file with exclusion zones\n")
	fmt.Printf("  --session         : Session file to write (compare) or read (report)\n")
	fmt.Printf("  --threshold       : Max hash distance for match candidates (default: 20)\n")
	fmt.Printf("  --position-weight : Weight of the page-position penalty (default: 0.1)\n")
	fmt.Printf("  --ssim            : Refine matched-pair similarity with SSIM (slower)\n")
	fmt.Printf("  --out             : Output HTML report path\n")
	fmt.Printf("  --include-identical : Include identical pages in the report\n")
	fmt.Printf("  --debug           : Enable debug mode (logs detailed information)\n")
	fmt.Printf("  --logfile         : Specify custom log file path (default: doccompare.log)\n")
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s compare --left=./v1_pages --right=./v2_pages --zones=zones.json --session=review.json\n", os.Args[0])
	fmt.Printf("  %s report --left=./v1_pages --right=./v2_pages --session=review.json --out=report.html\n", os.Args[0])
}

// ParseIntFlag parses an integer flag value, falling back to a default
func ParseIntFlag(value string, fallback int) (int, error) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback, fmt.Errorf("invalid value '%s', using default (%d)", value, fallback)
	}
	return parsed, nil
}

// ParseFloatFlag parses a float flag value, falling back to a default
func ParseFloatFlag(value string, fallback float64) (float64, error) {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		return fallback, fmt.Errorf("invalid value '%s', using default (%g)", value, fallback)
	}
	return parsed, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"gocv.io/x/gocv"

	"doccompare/comparator"
	"doccompare/document"
	"doccompare/exclusion"
	"doccompare/export"
	"doccompare/logging"
	"doccompare/matcher"
	"doccompare/session"
	"doccompare/signalhandler"
	"doccompare/utils"
)

func main() {
	// Set up proper signal handling
	signalhandler.SetupHandler()

	// Set the optimal number of CPUs to use
	runtime.GOMAXPROCS(signalhandler.GetOptimalProcs())

	// Parse command line arguments into a map
	args := utils.ParseArguments()

	command, hasCommand := args["command"]

	// Setup debug logging if enabled
	if _, ok := args["debug"]; ok {
		logPath := "doccompare.log"
		if customLogPath, ok := args["logfile"]; ok && customLogPath != "" {
			logPath = customLogPath
		}
		if err := logging.SetupLogger(logPath); err != nil {
			fmt.Printf("Warning: Failed to setup logging: %v\n", err)
		} else {
			fmt.Printf("Debug mode enabled. Logging to: %s\n", logPath)
		}
		defer logging.CloseLogger()
	}

	// Check if required arguments are missing
	showUsage := !hasCommand
	if hasCommand && (args["left"] == "" || args["right"] == "") {
		showUsage = true
	}
	if hasCommand && command == "report" && args["out"] == "" {
		showUsage = true
	}

	if showUsage {
		utils.PrintUsage()
		os.Exit(1)
	}

	switch command {
	case "compare":
		handleCompareCommand(args)
	case "report":
		handleReportCommand(args)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		utils.PrintUsage()
		os.Exit(1)
	}
}

// comparisonRun bundles everything one compare/report invocation produces.
type comparisonRun struct {
	left   *document.Document
	right  *document.Document
	result *matcher.MatchingResult
	diffs  map[[2]int]*comparator.DiffResult
	zones  exclusion.ZoneSet
}

func (r *comparisonRun) close() {
	for _, d := range r.diffs {
		d.Close()
	}
	if r.left != nil {
		r.left.Close()
	}
	if r.right != nil {
		r.right.Close()
	}
}

func handleCompareCommand(args map[string]string) {
	startTime := time.Now()

	run, err := runComparison(args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer run.close()

	printComparisonSummary(run, startTime)

	if sessionPath := args["session"]; sessionPath != "" {
		s := session.New()
		s.LeftDocumentPath = args["left"]
		s.RightDocumentPath = args["right"]
		s.MatchingResult = run.result
		s.ExclusionZones = run.zones
		if err := s.Save(sessionPath); err != nil {
			fmt.Printf("Warning: failed to save session: %v\n", err)
		} else {
			fmt.Printf("Session saved to %s\n", sessionPath)
		}
	}
}

func handleReportCommand(args map[string]string) {
	run, err := runComparison(args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer run.close()

	cfg := export.DefaultConfig()
	if _, ok := args["include-identical"]; ok {
		cfg.IncludeIdentical = true
	}

	outPath := args["out"]
	if err := export.WriteHTML(cfg, run.left, run.right, run.result, run.diffs, &run.zones, outPath); err != nil {
		fmt.Printf("Error: failed to write report: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Report written to %s\n", outPath)
}

// runComparison loads both documents, matches their pages, and diffs
// every matched pair.
func runComparison(args map[string]string) (*comparisonRun, error) {
	run := &comparisonRun{diffs: make(map[[2]int]*comparator.DiffResult)}

	cache, err := openCache(args)
	if err != nil {
		fmt.Printf("Warning: page cache unavailable: %v\n", err)
	}
	if cache != nil {
		defer cache.Close()
	}

	if zonesPath := args["zones"]; zonesPath != "" {
		if err := loadZones(zonesPath, &run.zones); err != nil {
			return nil, err
		}
		fmt.Printf("Loaded %d exclusion zones\n", len(run.zones.Zones))
	}

	// Reuse a previously saved matching (with any manual overrides)
	// when the report is generated from a session file.
	var saved *session.Session
	if sessionPath := args["session"]; sessionPath != "" && args["command"] == "report" {
		saved, err = session.Load(sessionPath)
		if err != nil {
			return nil, fmt.Errorf("cannot load session: %w", err)
		}
		run.zones = saved.ExclusionZones
	}

	renderer := document.DirRenderer{}
	run.left, err = document.Load(renderer, args["left"], cache)
	if err != nil {
		return nil, fmt.Errorf("cannot load left document: %w", err)
	}
	run.right, err = document.Load(renderer, args["right"], cache)
	if err != nil {
		return nil, fmt.Errorf("cannot load right document: %w", err)
	}

	fmt.Printf("Left document: %d pages, right document: %d pages\n",
		run.left.PageCount(), run.right.PageCount())

	workers := signalhandler.GetOptimalProcs()
	document.EnsureFingerprints(run.left.Path, run.left.Pages, workers)
	document.EnsureFingerprints(run.right.Path, run.right.Pages, workers)
	if cache != nil {
		cache.StoreFingerprints(run.left.Path, run.left.Pages)
		cache.StoreFingerprints(run.right.Path, run.right.Pages)
	}

	if saved != nil && saved.MatchingResult != nil {
		run.result = saved.MatchingResult
	} else {
		m := matcher.New(matcherConfig(args))
		run.result = m.Match(
			document.Fingerprints(run.left.Pages),
			document.Fingerprints(run.right.Pages),
			func(current, total int, message string) {
				fmt.Printf("\r%s (%d/%d)", message, current, total)
			},
		)
		fmt.Println()
	}

	if _, ok := args["ssim"]; ok {
		comparator.RefineSimilarity(run.result, pageImages(run.left), pageImages(run.right),
			func(current, total int, message string) {
				fmt.Printf("\r%s (%d/%d)", message, current, total)
			})
		fmt.Println()
	}

	// Diff every matched pair. A zone flagged for either side masks the
	// shared difference map.
	zones := enabledZones(&run.zones)
	cmp := comparator.New(comparator.DefaultConfig())
	for _, pair := range run.result.MatchedPairs() {
		leftImg := run.left.Pages[pair.LeftIndex].Image
		rightImg := run.right.Pages[pair.RightIndex].Image
		diff, err := cmp.Compare(leftImg, rightImg, zones)
		if err != nil {
			logging.LogError("Diff failed for pair (%d,%d): %v", pair.LeftIndex, pair.RightIndex, err)
			continue
		}
		run.diffs[[2]int{pair.LeftIndex, pair.RightIndex}] = diff
	}

	return run, nil
}

func matcherConfig(args map[string]string) matcher.Config {
	cfg := matcher.DefaultConfig()

	if v, ok := args["threshold"]; ok {
		parsed, err := utils.ParseIntFlag(v, cfg.PHashThreshold)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		cfg.PHashThreshold = parsed
	}
	if v, ok := args["position-weight"]; ok {
		parsed, err := utils.ParseFloatFlag(v, cfg.PositionWeight)
		if err != nil {
			fmt.Printf("Warning: %v\n", err)
		}
		cfg.PositionWeight = parsed
	}

	return cfg
}

func openCache(args map[string]string) (*document.Cache, error) {
	if _, ok := args["no-cache"]; ok {
		return nil, nil
	}

	cachePath := utils.GetDefaultCachePath()
	if custom, ok := args["cache"]; ok && custom != "" {
		cachePath = custom
	}
	return document.OpenCache(cachePath)
}

func loadZones(path string, set *exclusion.ZoneSet) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read zones file: %w", err)
	}
	if err := json.Unmarshal(data, set); err != nil {
		return fmt.Errorf("invalid zones file: %w", err)
	}
	return nil
}

func pageImages(doc *document.Document) []gocv.Mat {
	images := make([]gocv.Mat, len(doc.Pages))
	for i, p := range doc.Pages {
		images[i] = p.Image
	}
	return images
}

func enabledZones(set *exclusion.ZoneSet) []exclusion.Zone {
	var zones []exclusion.Zone
	for _, z := range set.Zones {
		if z.Enabled {
			zones = append(zones, z)
		}
	}
	return zones
}

func printComparisonSummary(run *comparisonRun, startTime time.Time) {
	differing := 0
	identical := 0

	for _, pair := range run.result.MatchedPairs() {
		diff := run.diffs[[2]int{pair.LeftIndex, pair.RightIndex}]
		if diff != nil && diff.HasDifferences() {
			fmt.Printf("  Page %d <-> %d: DIFFERS (similarity %.3f, diff score %.4f, %d regions)\n",
				pair.LeftIndex, pair.RightIndex, pair.Similarity, diff.DiffScore, diff.DiffCount())
			differing++
		} else {
			identical++
		}
	}

	for _, i := range run.result.LeftUnmatched {
		fmt.Printf("  Page %d: only in left document\n", i)
	}
	for _, j := range run.result.RightUnmatched {
		fmt.Printf("  Page %d: only in right document\n", j)
	}

	elapsed := time.Since(startTime)
	fmt.Println("\nComparison complete.")
	fmt.Printf("Matched pairs: %d (%d differing, %d identical)\n",
		len(run.result.MatchedPairs()), differing, identical)
	fmt.Printf("Unmatched: %d left, %d right\n",
		len(run.result.LeftUnmatched), len(run.result.RightUnmatched))
	fmt.Printf("Finished in %v.\n", elapsed.Round(time.Millisecond))
}

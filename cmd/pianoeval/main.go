// Command pianoeval provides a CLI for evaluating piano performances
// against a reference score.
//
// Usage:
//
//	pianoeval [command] [options]
//
// Commands:
//
//	align     Align a performance against a score
//	evaluate  Run the full evaluation pipeline
//	report    Print a prioritized feedback report
//	batch     Score many takes against one reference and summarize
//	stream    Simulate real-time ingestion from an event log
//	version   Show version information
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pianoflow/pianoeval/internal/align"
	"github.com/pianoflow/pianoeval/internal/notemodel"
	"github.com/pianoflow/pianoeval/internal/pconfig"
	"github.com/pianoflow/pianoeval/pkg/pianoeval"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "align":
		alignCmd(os.Args[2:])
	case "evaluate":
		evaluateCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "batch":
		batchCmd(os.Args[2:])
	case "stream":
		streamCmd(os.Args[2:])
	case "version":
		fmt.Println(pianoeval.Version())
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`PianoEval - Piano Performance Evaluation Tool

Usage:
  pianoeval <command> [options]

Commands:
  align     Align a performance against a score
  evaluate  Run the full evaluation pipeline
  report    Print a prioritized feedback report
  batch     Score many takes against one reference and summarize
  stream    Simulate real-time ingestion from an event log
  version   Show version information
  help      Show this help message

Use "pianoeval <command> -h" for more information about a command.`)
}

func loadScore(path string) (*notemodel.Score, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading score: %w", err)
	}
	return notemodel.UnmarshalScoreJSON(data)
}

func loadPerformance(path string) (*notemodel.Performance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading performance: %w", err)
	}
	return notemodel.UnmarshalPerformanceJSON(data)
}

func loadOptions(configPath string) align.Options {
	if configPath == "" {
		return align.DefaultOptions()
	}
	opt, _, err := pconfig.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config %s: %v\n", configPath, err)
		return align.DefaultOptions()
	}
	return opt
}

func alignCmd(args []string) {
	fs := flag.NewFlagSet("align", flag.ExitOnError)
	scorePath := fs.String("score", "", "path to score JSON")
	perfPath := fs.String("performance", "", "path to performance JSON")
	mode := fs.String("mode", "hybrid", "dtw|gsa|hybrid")
	configPath := fs.String("config", "", "path to TOML config")
	verbose := fs.Bool("verbose", false, "log a DTW cross-check diagnostic against the lvlath reference implementation")
	fs.Parse(args)

	if *scorePath == "" || *perfPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -score and -performance are required")
		fs.Usage()
		os.Exit(1)
	}

	score, err := loadScore(*scorePath)
	exitOnErr(err)
	performance, err := loadPerformance(*perfPath)
	exitOnErr(err)
	opt := loadOptions(*configPath)

	var result *notemodel.AlignmentResult
	switch *mode {
	case "dtw":
		result, err = align.NewDTW().Align(score, performance, opt)
	case "gsa":
		result, err = align.NewGSA().Align(score, performance, opt)
	default:
		result, err = align.NewHybrid().Align(score, performance, opt)
	}
	exitOnErr(err)

	if *verbose {
		align.CrossCheckWithReference(result)
	}

	printJSON(result)
}

func evaluateCmd(args []string) {
	fs := flag.NewFlagSet("evaluate", flag.ExitOnError)
	scorePath := fs.String("score", "", "path to score JSON")
	perfPath := fs.String("performance", "", "path to performance JSON")
	configPath := fs.String("config", "", "path to TOML config")
	fs.Parse(args)

	if *scorePath == "" || *perfPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -score and -performance are required")
		fs.Usage()
		os.Exit(1)
	}

	score, err := loadScore(*scorePath)
	exitOnErr(err)
	performance, err := loadPerformance(*perfPath)
	exitOnErr(err)
	opt := loadOptions(*configPath)

	result, err := pianoeval.EvaluatePipeline(score, performance, &opt)
	exitOnErr(err)

	printJSON(result)
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	scorePath := fs.String("score", "", "path to score JSON")
	perfPath := fs.String("performance", "", "path to performance JSON")
	fs.Parse(args)

	if *scorePath == "" || *perfPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -score and -performance are required")
		fs.Usage()
		os.Exit(1)
	}

	score, err := loadScore(*scorePath)
	exitOnErr(err)
	performance, err := loadPerformance(*perfPath)
	exitOnErr(err)

	result, err := pianoeval.EvaluatePipeline(score, performance, nil)
	exitOnErr(err)

	fmt.Printf("Overall score: %.1f\n\n", result.Feedback.OverallScore)
	for _, issue := range result.Feedback.ProblemMeasures {
		fmt.Printf("Measure %d [%s, severity %.2f]: %s\n  -> %s\n",
			issue.Measure, issue.Kind, issue.Severity, issue.Detail, issue.Suggestion)
	}
	fmt.Println("\nTop suggestions:")
	for _, s := range result.Feedback.TopSuggestions {
		fmt.Printf("  - %s\n", s)
	}
}

// batchCmd scores a directory of performance JSON files against one
// reference score and prints an aggregate TakeSetStats summary.
func batchCmd(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	scorePath := fs.String("score", "", "path to score JSON")
	perfDir := fs.String("performances", "", "directory of performance JSON files")
	configPath := fs.String("config", "", "path to TOML config")
	fs.Parse(args)

	if *scorePath == "" || *perfDir == "" {
		fmt.Fprintln(os.Stderr, "Error: -score and -performances are required")
		fs.Usage()
		os.Exit(1)
	}

	score, err := loadScore(*scorePath)
	exitOnErr(err)
	opt := loadOptions(*configPath)

	entries, err := os.ReadDir(*perfDir)
	exitOnErr(err)

	var takes []pianoeval.Take
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		performance, err := loadPerformance(fmt.Sprintf("%s/%s", *perfDir, e.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", e.Name(), err)
			continue
		}
		takes = append(takes, pianoeval.Take{Performance: performance, Label: e.Name()})
	}

	pipeline := pianoeval.NewPipeline(score, opt)
	results := pipeline.ProcessTakes(takes)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: error: %v\n", r.Label, r.Err)
			continue
		}
		fmt.Printf("%s: overall %.1f\n", r.Label, r.Result.Feedback.OverallScore)
	}

	stats, err := pipeline.Summarize(results, nil)
	exitOnErr(err)
	fmt.Println()
	fmt.Print(stats.String())
}

// streamEvent is one line of a -events JSONL file, simulating live
// note-on/note-off ingestion.
type streamEvent struct {
	Type     string `json:"type"` // "note_on" | "note_off"
	Pitch    int    `json:"pitch"`
	Velocity int    `json:"velocity"`
}

func streamCmd(args []string) {
	fs := flag.NewFlagSet("stream", flag.ExitOnError)
	scorePath := fs.String("score", "", "path to score JSON")
	eventsPath := fs.String("events", "", "path to newline-delimited JSON events")
	fs.Parse(args)

	if *scorePath == "" || *eventsPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -score and -events are required")
		fs.Usage()
		os.Exit(1)
	}

	score, err := loadScore(*scorePath)
	exitOnErr(err)

	file, err := os.Open(*eventsPath)
	exitOnErr(err)
	defer file.Close()

	evaluator := pianoeval.NewRealTimeEvaluator(score, pianoeval.DefaultOptions())
	feedbackCh := evaluator.SubscribeFeedback(32)
	evaluator.Start()

	go func() {
		for fb := range feedbackCh {
			fmt.Printf("[measure %d] local accuracy %.1f%% issues=%v\n", fb.CurrentMeasure, fb.LocalAccuracyPct, fb.Issues)
		}
	}()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var ev streamEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			fmt.Fprintf(os.Stderr, "skipping malformed event: %v\n", err)
			continue
		}
		switch ev.Type {
		case "note_on":
			evaluator.OnNoteOn(ev.Pitch, ev.Velocity)
		case "note_off":
			evaluator.OnNoteOff(ev.Pitch)
		}
	}
	exitOnErr(scanner.Err())

	final, err := evaluator.Stop()
	exitOnErr(err)

	fmt.Printf("\nFinal accuracy: %.1f (%d dropped events)\n", final.Accuracy.Score, evaluator.Dropped())
}

func exitOnErr(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		os.Exit(1)
	}
}

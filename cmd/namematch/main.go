package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"name-matcher/internal/config"
	"name-matcher/internal/fileio"
	"name-matcher/internal/matching/model"
	"name-matcher/internal/matching/service"
	"name-matcher/internal/utils"
)

type cliOptions struct {
	leftPath    string
	rightPath   string
	leftHeader  int
	rightHeader int
	match       model.Config
	threshold   string
	sort        bool
	outPath     string
	verbose     bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "namematch: %v\n", err)
		os.Exit(2)
	}
	opts, err := parseFlags(os.Args[1:], cfg.Matching, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "namematch: %v\n", err)
		os.Exit(2)
	}

	lvl := zerolog.WarnLevel
	if opts.verbose {
		lvl = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
	log.Logger = logger

	if err := run(opts, logger, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "namematch: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, defs config.MatchDefaults, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("namematch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.leftPath, "left", "", "Left table (.xlsx, .xls or .csv)")
	fs.StringVar(&opts.rightPath, "right", "", "Right table (.xlsx, .xls or .csv)")
	fs.IntVar(&opts.leftHeader, "left-header-row", 1, "1-based header row of the left table")
	fs.IntVar(&opts.rightHeader, "right-header-row", 1, "1-based header row of the right table")
	fs.StringVar(&opts.match.LeftName, "left-name", defs.LeftName, "Name column in the left table")
	fs.StringVar(&opts.match.RightName, "right-name", defs.RightName, "Name column in the right table")
	fs.StringVar(&opts.match.LeftID, "left-id", defs.LeftID, "Optional ID column in the left table (empty to skip)")
	fs.StringVar(&opts.match.RightID, "right-id", defs.RightID, "Optional ID column in the right table (empty to skip)")
	fs.StringVar(&opts.threshold, "threshold", fmt.Sprint(defs.Threshold), "Minimum similarity, 0..1 (\"0,85\" and \"85%\" accepted)")
	fs.BoolVar(&opts.sort, "sort", false, "Sort matches by descending similarity")
	fs.StringVar(&opts.outPath, "out", fileio.ResultFilename, "Where to write the xlsx with the matches")
	fs.BoolVar(&opts.verbose, "v", false, "Debug logging")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: namematch -left FILE -right FILE [options]\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.leftPath = strings.TrimSpace(opts.leftPath)
	opts.rightPath = strings.TrimSpace(opts.rightPath)
	opts.match.LeftName = strings.TrimSpace(opts.match.LeftName)
	opts.match.RightName = strings.TrimSpace(opts.match.RightName)
	opts.match.LeftID = strings.TrimSpace(opts.match.LeftID)
	opts.match.RightID = strings.TrimSpace(opts.match.RightID)

	if opts.leftPath == "" || opts.rightPath == "" {
		fs.Usage()
		return opts, errors.New("both -left and -right are required")
	}
	th, ok := utils.ParseDecimal(opts.threshold)
	if !ok {
		return opts, fmt.Errorf("invalid -threshold %q", opts.threshold)
	}
	opts.match.Threshold = th
	return opts, nil
}

func run(opts cliOptions, logger zerolog.Logger, stdout io.Writer) error {
	left, err := readTable(opts.leftPath, opts.leftHeader)
	if err != nil {
		return fmt.Errorf("read left: %w", err)
	}
	right, err := readTable(opts.rightPath, opts.rightHeader)
	if err != nil {
		return fmt.Errorf("read right: %w", err)
	}
	fmt.Fprintf(stdout, "left:  %d rows, %d columns\n", len(left.Rows), len(left.Columns))
	fmt.Fprintf(stdout, "right: %d rows, %d columns\n", len(right.Rows), len(right.Columns))

	m := service.NewMatcher(service.WithLogger(logger))
	res, err := m.FindMatches(left, right, opts.match)
	if err != nil {
		var cfgErr *model.ConfigError
		if errors.As(err, &cfgErr) {
			for _, mc := range cfgErr.Missing {
				fmt.Fprintf(stdout, "%s table has no column %q; available: %s\n",
					mc.Dataset, mc.Column, strings.Join(mc.Available, ", "))
			}
		}
		return err
	}
	if opts.sort {
		res = res.Sorted()
	}

	fmt.Fprintf(stdout, "matches: %d (threshold %.2f)\n", res.Count(), res.Threshold)
	if res.Empty() {
		fmt.Fprintln(stdout, "no matches at or above the threshold")
		return nil
	}
	if err := writeResult(opts.outPath, res); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "saved to %s\n", opts.outPath)
	return nil
}

func readTable(path string, headerRow int) (model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Dataset{}, err
	}
	defer f.Close()
	return fileio.ReadDataset(f, path, headerRow)
}

func writeResult(path string, res model.Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	if err := fileio.WriteResultXLSX(f, res); err != nil {
		_ = f.Close()
		return fmt.Errorf("write result: %w", err)
	}
	return f.Close()
}

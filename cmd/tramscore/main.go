// Command tramscore computes the Tracking Aberration Measure (TrAM)
// for trajectories stored as CSV files.
//
// Usage:
//
//	tramscore [flags] trajectory.csv ...
//
// Each file holds one trajectory: a header row naming the features and
// one row per timepoint. Fluctuation scales are estimated across all
// given files, then every trajectory is scored.
//
// Examples:
//
//	tramscore tracks/*.csv
//	tramscore -knots 5 -p 0.25 track1.csv track2.csv
//	tramscore -group XY=POSITION_X,POSITION_Y tracks/*.csv
//	tramscore -features POSITION_X,POSITION_Y,RADIUS tracks/*.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-tram/measure/tram"
)

// groupFlag collects repeatable -group NAME=f1,f2 definitions.
type groupFlag map[string][]string

func (g groupFlag) String() string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + strings.Join(g[name], ",")
	}
	return strings.Join(parts, " ")
}

func (g groupFlag) Set(value string) error {
	name, members, ok := strings.Cut(value, "=")
	if !ok || name == "" || members == "" {
		return fmt.Errorf("expected NAME=feature1,feature2: %q", value)
	}
	g[name] = strings.Split(members, ",")
	return nil
}

func main() {
	knots := flag.Int("knots", tram.DefaultNumKnots, "number of smoothing spline knots (minimum 4)")
	p := flag.Float64("p", tram.DefaultExponent, "power-mean exponent (0 < p, typically <= 1)")
	features := flag.String("features", "", "comma-separated feature names to use (default: all columns)")
	groups := groupFlag{}
	flag.Var(groups, "group", "Euclidean feature group as NAME=feature1,feature2 (repeatable)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tramscore [flags] trajectory.csv ...\n\n")
		fmt.Fprintf(os.Stderr, "Scores tracked trajectories by aberration; higher means less smooth.\n")
		fmt.Fprintf(os.Stderr, "Each CSV file is one trajectory: header row of feature names, one row per timepoint.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tramscore tracks/*.csv\n")
		fmt.Fprintf(os.Stderr, "  tramscore -group XY=POSITION_X,POSITION_Y tracks/*.csv\n")
	}
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	corpus := make([]map[string][]float64, 0, len(files))
	for _, file := range files {
		trajectory, err := readTrajectory(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", file, err)
			os.Exit(1)
		}
		corpus = append(corpus, trajectory)
	}

	opts := []tram.Option{
		tram.WithNumKnots(*knots),
		tram.WithExponent(*p),
	}
	if len(groups) > 0 {
		opts = append(opts, tram.WithGroups(groups))
	}
	if *features != "" {
		opts = append(opts, tram.WithFeatures(strings.Split(*features, ",")...))
	}

	scores, err := tram.NewAnalyzer(opts...).Run(corpus)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	printScores(files, corpus, scores)
}

// readTrajectory parses one CSV file into a feature -> series mapping.
func readTrajectory(file string) (map[string][]float64, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("need a header row and at least one data row")
	}

	header := records[0]
	trajectory := make(map[string][]float64, len(header))
	for col, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty name", col+1)
		}

		series := make([]float64, 0, len(records)-1)
		for row, record := range records[1:] {
			if col >= len(record) {
				return nil, fmt.Errorf("row %d: missing value for %q", row+2, name)
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(record[col]), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %q: %w", row+2, name, err)
			}
			series = append(series, v)
		}
		trajectory[name] = series
	}

	return trajectory, nil
}

func printScores(files []string, corpus []map[string][]float64, scores []float64) {
	order := make([]int, len(files))
	for i := range order {
		order[i] = i
	}
	// Highest aberration first; not-computable entries last.
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := scores[order[a]], scores[order[b]]
		if tram.IsNotComputable(sb) {
			return !tram.IsNotComputable(sa)
		}
		if tram.IsNotComputable(sa) {
			return false
		}
		return sa > sb
	})

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "File\tTimepoints\tTrAM\n")
	fmt.Fprintf(tw, "----\t----------\t----\n")
	for _, i := range order {
		length := 0
		for _, series := range corpus[i] {
			length = len(series)
			break
		}

		value := "n/a"
		if !tram.IsNotComputable(scores[i]) {
			value = strconv.FormatFloat(scores[i], 'f', 4, 64)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", files[i], length, value)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

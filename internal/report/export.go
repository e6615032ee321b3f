package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"voiceq/internal/runner"
)

var csvHeader = []string{
	"timestamp", "client_id", "request_id", "command",
	"expected_action", "expected_direction", "actual_action", "actual_direction",
	"latency", "success", "outcome", "error_message",
}

// ExportCSV writes a header row and one row per result, in order.
func ExportCSV(results []runner.CommandResult, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteCSV(f, results); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return f.Close()
}

func WriteCSV(out io.Writer, results []runner.CommandResult) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range results {
		record := []string{
			r.Timestamp.Format(time.RFC3339Nano),
			strconv.Itoa(r.ClientID),
			r.RequestID,
			r.Command,
			r.ExpectedAction,
			r.ExpectedDirection,
			r.ActualAction,
			r.ActualDirection,
			strconv.FormatFloat(r.Latency.Seconds(), 'f', -1, 64),
			strconv.FormatBool(r.Success),
			string(r.Outcome),
			r.ErrorMessage,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// ReadCSV parses a file written by ExportCSV.
func ReadCSV(filename string) ([]runner.CommandResult, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read %s: missing header", filename)
	}

	out := make([]runner.CommandResult, 0, len(rows)-1)
	for i, row := range rows[1:] {
		res, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("read %s row %d: %w", filename, i+1, err)
		}
		out = append(out, res)
	}
	return out, nil
}

func parseRow(row []string) (runner.CommandResult, error) {
	if len(row) != len(csvHeader) {
		return runner.CommandResult{}, fmt.Errorf("want %d columns, got %d", len(csvHeader), len(row))
	}
	ts, err := time.Parse(time.RFC3339Nano, row[0])
	if err != nil {
		return runner.CommandResult{}, err
	}
	clientID, err := strconv.Atoi(row[1])
	if err != nil {
		return runner.CommandResult{}, err
	}
	latency, err := strconv.ParseFloat(row[8], 64)
	if err != nil {
		return runner.CommandResult{}, err
	}
	success, err := strconv.ParseBool(row[9])
	if err != nil {
		return runner.CommandResult{}, err
	}

	return runner.CommandResult{
		Timestamp:         ts,
		ClientID:          clientID,
		RequestID:         row[2],
		Command:           row[3],
		ExpectedAction:    row[4],
		ExpectedDirection: row[5],
		ActualAction:      row[6],
		ActualDirection:   row[7],
		Latency:           time.Duration(math.Round(latency * float64(time.Second))),
		Success:           success,
		Outcome:           runner.Outcome(row[10]),
		ErrorMessage:      row[11],
	}, nil
}

// WriteJSON writes v indented to filename.
func WriteJSON(filename string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// TimeBucket counts commands and failures that resolved in one second.
type TimeBucket struct {
	Timestamp int64 `json:"timestamp"`
	Requests  int   `json:"requests"`
	Errors    int   `json:"errors"`
}

// Timeline buckets results per second of resolution, oldest first.
func Timeline(results []runner.CommandResult) []TimeBucket {
	buckets := make(map[int64]*TimeBucket)

	for _, res := range results {
		ts := res.Timestamp.Unix()
		if _, ok := buckets[ts]; !ok {
			buckets[ts] = &TimeBucket{Timestamp: ts}
		}
		b := buckets[ts]
		b.Requests++
		if !res.Success {
			b.Errors++
		}
	}

	timeline := make([]TimeBucket, 0, len(buckets))
	for _, b := range buckets {
		timeline = append(timeline, *b)
	}

	sort.Slice(timeline, func(i, j int) bool {
		return timeline[i].Timestamp < timeline[j].Timestamp
	})
	return timeline
}

// OutputDir creates base/test_results_<YYYYMMDD_HHMMSS> and returns its path.
func OutputDir(base string, now time.Time) (string, error) {
	dir := filepath.Join(base, "test_results_"+now.Format("20060102_150405"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return dir, nil
}

// SuiteFiles writes the CSV, analysis and visualization files of a suite run into dir.
func SuiteFiles(dir string, results []runner.CommandResult) (Analysis, error) {
	if err := ExportCSV(results, filepath.Join(dir, "test_results.csv")); err != nil {
		return Analysis{}, err
	}
	a := Analyze(results)
	if err := WriteJSON(filepath.Join(dir, "analysis.json"), a); err != nil {
		return a, err
	}
	if err := WriteJSON(filepath.Join(dir, "visualization_data.json"), VisualizationData(a)); err != nil {
		return a, err
	}
	return a, nil
}

package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/mhr3/charbench/bench"
	"github.com/mhr3/charbench/config"
	"github.com/mhr3/charbench/count"
)

// SummaryFilename is the append-mode file collecting one row per run.
const SummaryFilename = "charbench_summary.csv"

// RunFilename returns the timestamped per-run export name.
func RunFilename(t time.Time) string {
	return "charbench_run_" + t.Format("20060102_150405") + ".csv"
}

// DistributionFilename returns the timestamped distribution export
// name.
func DistributionFilename(t time.Time) string {
	return "charbench_distribution_" + t.Format("20060102_150405") + ".csv"
}

// Export creates path, with a .gz suffix added when compress is set,
// and runs fn over the destination. Compressed exports stream through
// a gzip writer.
func Export(path string, compress bool, fn func(io.Writer) error) error {
	if compress && !strings.HasSuffix(path, ".gz") {
		path += ".gz"
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}

	dst := io.Writer(f)
	var zw *gzip.Writer
	if compress {
		zw = gzip.NewWriter(f)
		dst = zw
	}

	if err := fn(dst); err != nil {
		if zw != nil {
			zw.Close()
		}
		f.Close()
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			f.Close()
			return fmt.Errorf("report: close %s: %w", path, err)
		}
	}
	return f.Close()
}

// WriteRun writes one result as a commented CSV document: the
// configuration, one row per timed sample, and the summary statistics.
func WriteRun(w io.Writer, res *bench.Result, now time.Time) error {
	if err := comment(w, "charbench run %s", now.Format(time.RFC3339)); err != nil {
		return err
	}

	cfgRows := [][]string{
		{"RunId", res.RunID},
		{"Impl", res.Impl},
		{"Length", strconv.Itoa(res.Config.Length)},
		{"Alignment", strconv.Itoa(res.Config.Alignment)},
		{"Seed", strconv.FormatUint(res.Config.Seed, 10)},
		{"Mode", res.Config.Mode},
		{"Target", res.Config.Target},
		{"Warmup", strconv.Itoa(res.Config.Warmup)},
		{"Repetitions", strconv.Itoa(res.Config.Repetitions)},
		{"Verified", strconv.FormatBool(res.Verified)},
	}
	if err := writeRows(w, cfgRows); err != nil {
		return err
	}

	if err := comment(w, "samples"); err != nil {
		return err
	}
	sampleRows := [][]string{{"Rep", "TimeMs"}}
	for i, s := range res.Samples {
		sampleRows = append(sampleRows, []string{
			strconv.Itoa(i + 1),
			formatMs(s.Elapsed),
		})
	}
	if err := writeRows(w, sampleRows); err != nil {
		return err
	}

	if err := comment(w, "summary"); err != nil {
		return err
	}
	sumRows := [][]string{
		{"MeanMs", formatMs(res.Stats.Mean)},
		{"MedianMs", formatMs(res.Stats.Median)},
		{"StdDevMs", formatMs(res.Stats.StdDev)},
		{"MinMs", formatMs(res.Stats.Min)},
		{"MaxMs", formatMs(res.Stats.Max)},
		{"ThroughputMBps", formatMBps(res.Throughput())},
	}
	if res.Config.Mode == config.ModeAll {
		sumRows = append(sumRows, []string{"UniqueValues", strconv.Itoa(res.Frequency.Unique())})
	} else {
		sumRows = append(sumRows, []string{"Occurrences", strconv.FormatUint(res.Count, 10)})
	}
	return writeRows(w, sumRows)
}

// summaryHeader matches AppendSummary's row layout.
var summaryHeader = []string{
	"Timestamp", "RunId", "Impl", "Length", "Alignment", "Mode", "Target",
	"Occurrences", "MeanMs", "StdDevMs", "MinMs", "MaxMs", "ThroughputMBps", "Verified",
}

// AppendSummary appends one row for res to the summary file at path,
// writing the header first when the file is new or empty.
func AppendSummary(path string, res *bench.Result, now time.Time) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("report: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("report: stat %s: %w", path, err)
	}

	cw := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := cw.Write(summaryHeader); err != nil {
			return err
		}
	}
	row := []string{
		now.Format(time.RFC3339),
		res.RunID,
		res.Impl,
		strconv.Itoa(res.Config.Length),
		strconv.Itoa(res.Config.Alignment),
		res.Config.Mode,
		res.Config.Target,
		strconv.FormatUint(res.Count, 10),
		formatMs(res.Stats.Mean),
		formatMs(res.Stats.StdDev),
		formatMs(res.Stats.Min),
		formatMs(res.Stats.Max),
		formatMBps(res.Throughput()),
		strconv.FormatBool(res.Verified),
	}
	if err := cw.Write(row); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteDistribution writes the full tally twice: most common values
// first, then ordered by byte value with categories.
func WriteDistribution(w io.Writer, freq count.Frequency) error {
	total := freq.Total()

	if err := comment(w, "distribution by count"); err != nil {
		return err
	}
	rows := [][]string{{"Char", "Value", "Count", "Percent"}}
	for _, e := range freq.ByCount() {
		rows = append(rows, []string{
			charDisplay(e.Value),
			fmt.Sprintf("0x%02X", e.Value),
			strconv.FormatUint(e.Count, 10),
			strconv.FormatFloat(percent(e.Count, total), 'f', 2, 64),
		})
	}
	if err := writeRows(w, rows); err != nil {
		return err
	}

	if err := comment(w, "distribution by value"); err != nil {
		return err
	}
	rows = [][]string{{"Value", "Char", "Count", "Percent", "Category"}}
	for _, e := range freq.ByValue() {
		rows = append(rows, []string{
			fmt.Sprintf("0x%02X", e.Value),
			charDisplay(e.Value),
			strconv.FormatUint(e.Count, 10),
			strconv.FormatFloat(percent(e.Count, total), 'f', 2, 64),
			category(e.Value),
		})
	}
	return writeRows(w, rows)
}

// plotHeader is the stable stdout contract the plotting pipeline
// parses. Field order must not change.
var plotHeader = []string{
	"StringLength", "Alignment", "TargetChar", "TotalChars", "Occurrences",
	"AvgTimeMs", "StdDevMs", "MinTimeMs", "MaxTimeMs", "ThroughputMBps",
}

// WritePlotRow writes the header and one data row for res.
func WritePlotRow(w io.Writer, res *bench.Result) error {
	row := []string{
		strconv.Itoa(res.Config.Length),
		strconv.Itoa(res.Config.Alignment),
		res.Config.Target,
		strconv.Itoa(res.Config.Length - 1),
		strconv.FormatUint(res.Count, 10),
		formatMs(res.Stats.Mean),
		formatMs(res.Stats.StdDev),
		formatMs(res.Stats.Min),
		formatMs(res.Stats.Max),
		formatMBps(res.Throughput()),
	}
	return writeRows(w, [][]string{plotHeader, row})
}

func comment(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, "# "+format+"\n", args...)
	return err
}

func writeRows(w io.Writer, rows [][]string) error {
	return csv.NewWriter(w).WriteAll(rows)
}

func formatMs(d time.Duration) string {
	return strconv.FormatFloat(float64(d)/float64(time.Millisecond), 'f', 6, 64)
}

func formatMBps(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

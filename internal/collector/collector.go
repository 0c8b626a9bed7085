// Package collector enumerates running processes and their resource usage.
//
// Process listings come from ps, run through an allowlisted connectors.Runner,
// so the parser can be fed canned output in tests.
package collector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/fentz26/prochunt/internal/connectors"
	"github.com/fentz26/prochunt/internal/models"
)

// CommandDisplayLimit bounds the command string kept on a record.
const CommandDisplayLimit = 100

// DefaultSelfMarker identifies prochunt's own command line.
const DefaultSelfMarker = "prochunt"

const (
	scanColumns = "pid,pcpu,rss,comm,args"
	topColumns  = "pid,pcpu,rss,comm"
)

// scanListing is the command line of the ps child a scan spawns; it shows up
// in its own output.
const scanListing = "ps -eo " + scanColumns

// ErrListing indicates the OS process listing could not be produced.
var ErrListing = errors.New("collector: process listing failed")

// Classifier assigns a category and reason to a process.
type Classifier interface {
	Classify(name, command string) (models.Category, string)
}

// Options controls which processes a scan surfaces.
type Options struct {
	CPUThreshold   float64
	MemThresholdMB float64
	// SelfMarker is a substring of prochunt's own command line; matching rows
	// are dropped. Empty means DefaultSelfMarker.
	SelfMarker string
}

// Collector runs process listings and turns them into records.
type Collector struct {
	runner     connectors.Runner
	classifier Classifier
	logger     *zap.Logger
	selfPID    int
}

// New creates a collector.
func New(runner connectors.Runner, classifier Classifier, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		runner:     runner,
		classifier: classifier,
		logger:     logger,
		selfPID:    os.Getpid(),
	}
}

// Scan lists processes that breach either threshold, classified and ordered
// by descending impact score.
func (c *Collector) Scan(ctx context.Context, opts Options) ([]models.ProcessRecord, error) {
	out, err := c.list(ctx, scanColumns)
	if err != nil {
		return nil, err
	}

	records := parseScan(out, opts, c.selfPID, c.classifier)
	c.logger.Debug("scan complete",
		zap.Int("records", len(records)),
		zap.Float64("cpu_threshold", opts.CPUThreshold),
		zap.Float64("mem_threshold_mb", opts.MemThresholdMB),
	)
	return records, nil
}

// Top returns the n processes using the most CPU, highest first.
func (c *Collector) Top(ctx context.Context, n int) ([]models.TopProcess, error) {
	out, err := c.list(ctx, topColumns)
	if err != nil {
		return nil, err
	}
	return parseTop(out, n), nil
}

func (c *Collector) list(ctx context.Context, format string) (string, error) {
	res, err := c.runner.Execute(ctx, "ps", []string{"-eo", format})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrListing, err)
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%w: ps exited %d: %s", ErrListing, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return res.Stdout, nil
}

// psRow is one parsed line of ps output.
type psRow struct {
	pid     int
	cpu     float64
	memMB   float64
	name    string
	command string
}

// parseRow splits a line into want fields; the last field keeps its inner
// whitespace. Rows with too few fields or bad numbers are rejected.
func parseRow(line string, want int) (psRow, bool) {
	parts := splitFields(line, want)
	if len(parts) < want {
		return psRow{}, false
	}

	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return psRow{}, false
	}
	cpu, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || cpu < 0 {
		return psRow{}, false
	}
	rssKB, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || rssKB < 0 {
		return psRow{}, false
	}

	row := psRow{
		pid:   pid,
		cpu:   cpu,
		memMB: rssKB / 1024,
		name:  filepath.Base(parts[3]),
	}
	if want > 4 {
		row.command = parts[4]
	}
	return row, true
}

func parseScan(out string, opts Options, selfPID int, classifier Classifier) []models.ProcessRecord {
	marker := opts.SelfMarker
	if marker == "" {
		marker = DefaultSelfMarker
	}

	var records []models.ProcessRecord
	for _, line := range dataLines(out) {
		row, ok := parseRow(line, 5)
		if !ok {
			continue
		}

		if row.cpu < opts.CPUThreshold && row.memMB < opts.MemThresholdMB {
			continue
		}
		if row.pid == selfPID || row.command == scanListing || strings.Contains(row.command, marker) {
			continue
		}

		category, reason := classifier.Classify(row.name, row.command)
		records = append(records, models.ProcessRecord{
			PID:        row.pid,
			Name:       row.name,
			Command:    truncate(row.command, CommandDisplayLimit),
			CPUPercent: row.cpu,
			MemMB:      row.memMB,
			Category:   category,
			Reason:     reason,
		})
	}

	SortByImpact(records)
	return records
}

func parseTop(out string, n int) []models.TopProcess {
	var top []models.TopProcess
	for _, line := range dataLines(out) {
		row, ok := parseRow(line, 4)
		if !ok {
			continue
		}
		top = append(top, models.TopProcess{
			PID:        row.pid,
			CPUPercent: row.cpu,
			MemMB:      row.memMB,
			Name:       row.name,
		})
	}

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].CPUPercent > top[j].CPUPercent
	})
	if n >= 0 && len(top) > n {
		top = top[:n]
	}
	return top
}

// SortByImpact orders records by descending cpu + mem/100. Ties keep their
// listing order.
func SortByImpact(records []models.ProcessRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ImpactScore() > records[j].ImpactScore()
	})
}

// dataLines returns the non-empty lines after the ps header.
func dataLines(out string) []string {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) <= 1 {
		return nil
	}
	return lines[1:]
}

// splitFields splits s on whitespace into at most n fields. The last field
// keeps the rest of the line.
func splitFields(s string, n int) []string {
	var fields []string
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	for s != "" && len(fields) < n-1 {
		end := strings.IndexFunc(s, unicode.IsSpace)
		if end < 0 {
			break
		}
		fields = append(fields, s[:end])
		s = strings.TrimLeftFunc(s[end:], unicode.IsSpace)
	}
	if s != "" {
		fields = append(fields, strings.TrimRightFunc(s, unicode.IsSpace))
	}
	return fields
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package keycraft

import (
	"encoding/json"
	"io"
	"time"
)

// EvalLogger provides dual-format logging for layout optimization runs.
// Console output is human-readable, file output is JSONL for analysis.
type EvalLogger struct {
	console   io.Writer // Human-readable output (can be nil)
	file      io.Writer // JSONL structured output (can be nil)
	startTime time.Time
}

// NewEvalLogger creates a new logger with separate console and file outputs.
// Either writer can be nil to disable that output channel.
func NewEvalLogger(console, file io.Writer) *EvalLogger {
	return &EvalLogger{
		console:   console,
		file:      file,
		startTime: time.Now(),
	}
}

// LogEvent represents a single log entry in JSONL format.
type LogEvent struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	ElapsedMs int64     `json:"elapsed_ms"`

	// Optimization state (present in most events)
	Iteration *int     `json:"iteration,omitempty"`
	Cost      *float64 `json:"cost,omitempty"`
	BestCost  *float64 `json:"best_cost,omitempty"`
	Delta     *float64 `json:"delta,omitempty"`

	// Run identity, one per optimizer invocation
	RunID string `json:"run_id,omitempty"`

	// Layout info (for start/improvement/end events)
	LayoutName string   `json:"layout_name,omitempty"`
	FreeKeys   *int     `json:"free_keys,omitempty"`
	TotalKeys  *int     `json:"total_keys,omitempty"`
	Layout     []string `json:"layout,omitempty"` // layout rows as strings

	// Parameters (for start event)
	Params *OptimizerLogParams `json:"params,omitempty"`

	// Cache statistics (for cache_stats event)
	CacheStats *CacheStatsLog `json:"cache_stats,omitempty"`

	// Message for generic events
	Message string `json:"message,omitempty"`

	// Per-family metric breakdown (for evaluate events)
	FamilyCosts map[string]float64 `json:"family_costs,omitempty"`
}

// OptimizerLogParams captures an optimizer run's configuration for the
// start event. Fields are generic across optimizer strategies; an unused
// strategy leaves its fields at zero.
type OptimizerLogParams struct {
	Strategy      string  `json:"strategy"`
	MaxIterations int     `json:"max_iterations"`
	MaxTimeMs     int64   `json:"max_time_ms"`
	Seed          int64   `json:"seed"`
	PopulationSize int    `json:"population_size,omitempty"`
	MutationRate  float64 `json:"mutation_rate,omitempty"`
}

// CacheStatsLog captures Cache statistics for the cache_stats event.
type CacheStatsLog struct {
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
	UniqueKeys int     `json:"unique_keys"`
}

// writeJSON writes a log event to the file output as JSONL.
func (l *EvalLogger) writeJSON(event LogEvent) {
	if l.file == nil {
		return
	}

	event.Timestamp = time.Now()
	event.ElapsedMs = time.Since(l.startTime).Milliseconds()

	data, err := json.Marshal(event)
	if err != nil {
		return // silently ignore JSON errors
	}

	data = append(data, '\n')
	_, _ = l.file.Write(data)
}

// LogStart logs the start of an optimization run.
func (l *EvalLogger) LogStart(runID string, params OptimizerLogParams, layout *Layout, numFree int) {
	if l.console != nil {
		MustFprintf(l.console, "Starting %s optimization (run %s)\n", params.Strategy, runID)
		MustFprintf(l.console, "Free keys: %d/%d\n\n", numFree, layout.Keyboard.NumKeys())
		MustFprintln(l.console, layout)
	}

	totalKeys := layout.Keyboard.NumKeys()
	l.writeJSON(LogEvent{
		Event:      "start",
		RunID:      runID,
		LayoutName: layout.Name,
		FreeKeys:   &numFree,
		TotalKeys:  &totalKeys,
		Layout:     layoutToStrings(layout),
		Params:     &params,
	})
}

// LogInitialCost logs the initial cost after it's calculated.
func (l *EvalLogger) LogInitialCost(cost float64) {
	if l.console != nil {
		MustFprintf(l.console, "Initial cost: %.4f\n", cost)
	}

	l.writeJSON(LogEvent{
		Event: "initial_cost",
		Cost:  &cost,
	})
}

// LogImprovement logs when a new best layout is found.
func (l *EvalLogger) LogImprovement(iteration int, newCost, prevBest float64, layout *Layout, elapsed time.Duration) {
	delta := newCost - prevBest

	if l.console != nil {
		MustFprintf(l.console, "Iter %d: New best cost: %.4f (elapsed: %v)\n",
			iteration, newCost, elapsed.Round(time.Second))
		MustFprintln(l.console, layout)
	}

	l.writeJSON(LogEvent{
		Event:      "improvement",
		Iteration:  &iteration,
		Cost:       &newCost,
		BestCost:   &newCost,
		Delta:      &delta,
		LayoutName: layout.Name,
		Layout:     layoutToStrings(layout),
	})
}

// LogProgress logs periodic progress updates.
func (l *EvalLogger) LogProgress(iteration int, currentCost, bestCost float64) {
	if l.console != nil {
		MustFprintf(l.console, "Iter %d: Current: %.4f, Best: %.4f\n", iteration, currentCost, bestCost)
	}

	l.writeJSON(LogEvent{
		Event:     "progress",
		Iteration: &iteration,
		Cost:      &currentCost,
		BestCost:  &bestCost,
	})
}

// LogTimeLimit logs when the time limit is reached.
func (l *EvalLogger) LogTimeLimit(elapsed time.Duration) {
	if l.console != nil {
		MustFprintf(l.console, "\nTime limit reached: %v\n", elapsed)
	}

	l.writeJSON(LogEvent{
		Event:   "time_limit",
		Message: elapsed.String(),
	})
}

// LogEvaluate logs the per-family cost breakdown of a single evaluation.
func (l *EvalLogger) LogEvaluate(layout *Layout, results []MetricResults) {
	families := make(map[string]float64, len(results))
	for _, r := range results {
		families[r.MetricType.String()] = r.TotalCost()
	}

	l.writeJSON(LogEvent{
		Event:       "evaluate",
		LayoutName:  layout.Name,
		FamilyCosts: families,
	})
}

// LogEnd logs the end of an optimization run.
func (l *EvalLogger) LogEnd(bestCost float64, totalIterations int, elapsed time.Duration, layout *Layout) {
	if l.console != nil {
		MustFprintf(l.console, "\nOptimization complete\n")
		MustFprintf(l.console, "Final best cost: %.4f\n", bestCost)
		MustFprintf(l.console, "Total iterations: %d\n", totalIterations)
		MustFprintf(l.console, "Total time: %v\n", elapsed.Round(time.Second))
	}

	l.writeJSON(LogEvent{
		Event:      "end",
		Iteration:  &totalIterations,
		BestCost:   &bestCost,
		LayoutName: layout.Name,
		Layout:     layoutToStrings(layout),
	})
}

// LogCacheStats logs result-cache statistics, typically at the end of a run.
func (l *EvalLogger) LogCacheStats(stats CacheStats) {
	hitRate := 0.0
	if stats.Hits+stats.Misses > 0 {
		hitRate = float64(stats.Hits) / float64(stats.Hits+stats.Misses)
	}

	l.writeJSON(LogEvent{
		Event: "cache_stats",
		CacheStats: &CacheStatsLog{
			Hits:       stats.Hits,
			Misses:     stats.Misses,
			HitRate:    hitRate,
			UniqueKeys: stats.Size,
		},
	})
}

// HasConsole returns true if console output is enabled.
func (l *EvalLogger) HasConsole() bool {
	return l.console != nil
}

// HasFile returns true if file output is enabled.
func (l *EvalLogger) HasFile() bool {
	return l.file != nil
}

// layoutToStrings renders a layout's base layer as one string per physical
// row, for JSON output.
func layoutToStrings(layout *Layout) []string {
	if layout == nil {
		return nil
	}
	var rows []string
	var cur []rune
	row := -1
	for _, lk := range layout.LayerKeys {
		if lk.Layer != 0 {
			continue
		}
		key := layout.Keyboard.Key(lk.Key)
		if key.Position.Row != row {
			if row >= 0 {
				rows = append(rows, string(cur))
			}
			cur = nil
			row = key.Position.Row
		}
		sym := lk.Symbol
		if sym == 0 {
			sym = ' '
		}
		cur = append(cur, sym)
	}
	if cur != nil {
		rows = append(rows, string(cur))
	}
	return rows
}

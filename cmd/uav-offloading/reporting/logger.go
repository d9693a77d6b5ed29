package reporting

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/picogrid/uav-offload-sim/pkg/logger"
)

// SimulationLogger records the events and metrics of one run
type SimulationLogger struct {
	simulationID string
	startTime    time.Time
	out          io.Writer
	quiet        bool
	events       []SimulationEvent
	metrics      map[string]Metric
	mu           sync.RWMutex
}

// SimulationEvent represents a logged simulation event
type SimulationEvent struct {
	Timestamp time.Time              `yaml:"timestamp"`
	Slot      int                    `yaml:"slot"`
	Type      string                 `yaml:"type"`
	Severity  string                 `yaml:"severity"`
	Message   string                 `yaml:"message"`
	Details   map[string]interface{} `yaml:"details,omitempty"`
}

// Metric represents a tracked metric
type Metric struct {
	Name        string        `yaml:"name"`
	Value       float64       `yaml:"value"`
	Unit        string        `yaml:"unit"`
	LastUpdated time.Time     `yaml:"last_updated"`
	History     []MetricPoint `yaml:"-"`
}

// MetricPoint represents a metric value at a slot
type MetricPoint struct {
	Slot  int
	Value float64
}

// EventType constants
const (
	EventTypeSlot        = "slot"
	EventTypeCoverageGap = "coverage_gap"
	EventTypeSystem      = "system"
)

// Severity constants
const (
	SeverityDebug   = "debug"
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Metric names
const (
	MetricEnergy     = "total_energy"
	MetricUtility    = "system_utility"
	MetricEfficiency = "energy_efficiency"
	MetricOffloadPct = "offload_ratio"
)

const (
	maxEvents        = 10000
	maxMetricHistory = 1000
)

// Color definitions
var (
	colorDebug   = color.New(color.FgHiBlack)
	colorInfo    = color.New(color.FgCyan)
	colorWarning = color.New(color.FgYellow)
	colorError   = color.New(color.FgRed)
	colorSuccess = color.New(color.FgGreen)
)

// NewRunID returns a fresh simulation id
func NewRunID() string {
	return uuid.NewString()
}

// NewSimulationLogger creates a logger printing to stdout
func NewSimulationLogger(simulationID string) *SimulationLogger {
	return NewSimulationLoggerTo(simulationID, os.Stdout)
}

// NewSimulationLoggerTo creates a logger printing to out. A nil out records
// events without printing them.
func NewSimulationLoggerTo(simulationID string, out io.Writer) *SimulationLogger {
	sl := &SimulationLogger{
		simulationID: simulationID,
		startTime:    time.Now(),
		out:          out,
		quiet:        out == nil,
		events:       make([]SimulationEvent, 0),
		metrics:      make(map[string]Metric),
	}

	sl.logColoredMessage(SeverityInfo, "Simulation Started",
		fmt.Sprintf("ID: %s | Time: %s", shortID(simulationID), sl.startTime.Format("15:04:05")))

	return sl
}

// SimulationID returns the run id
func (sl *SimulationLogger) SimulationID() string {
	return sl.simulationID
}

// SlotReport is what the logger needs to know about a finished slot
type SlotReport struct {
	Slot       int     `yaml:"slot"`
	Tasks      int     `yaml:"tasks"`
	Offloaded  int     `yaml:"offloaded"`
	Local      int     `yaml:"local"`
	Utility    float64 `yaml:"utility"`
	Energy     float64 `yaml:"energy"`
	Efficiency float64 `yaml:"efficiency"`
	UAVCount   int     `yaml:"-"`
}

// LogSlot records a finished slot and updates the run metrics
func (sl *SimulationLogger) LogSlot(r SlotReport) {
	sl.logEvent(SimulationEvent{
		Timestamp: time.Now(),
		Slot:      r.Slot,
		Type:      EventTypeSlot,
		Severity:  SeverityDebug,
		Message:   fmt.Sprintf("Slot %d: %d tasks, %d offloaded, %d local", r.Slot, r.Tasks, r.Offloaded, r.Local),
		Details: map[string]interface{}{
			"tasks":     r.Tasks,
			"offloaded": r.Offloaded,
			"local":     r.Local,
		},
	})

	sl.UpdateMetric(MetricEnergy, r.Slot, r.Energy, "J")
	sl.UpdateMetric(MetricUtility, r.Slot, r.Utility, "Mb")
	sl.UpdateMetric(MetricEfficiency, r.Slot, r.Efficiency, "Mb/J")
	if r.Tasks > 0 {
		sl.UpdateMetric(MetricOffloadPct, r.Slot, float64(r.Offloaded)/float64(r.Tasks), "")
	}

	// UAVs flew but none of them covered a single task
	if r.UAVCount > 0 && r.Tasks > 0 && r.Offloaded == 0 {
		sl.logEvent(SimulationEvent{
			Timestamp: time.Now(),
			Slot:      r.Slot,
			Type:      EventTypeCoverageGap,
			Severity:  SeverityWarning,
			Message:   fmt.Sprintf("Slot %d: no task within UAV coverage", r.Slot),
			Details: map[string]interface{}{
				"tasks": r.Tasks,
			},
		})
		sl.logColoredMessage(SeverityWarning, "Coverage Gap",
			fmt.Sprintf("Slot: %d | Tasks: %d | All executed locally", r.Slot, r.Tasks))
	}
}

// LogSystem records an informational system event
func (sl *SimulationLogger) LogSystem(message string, details map[string]interface{}) {
	sl.logEvent(SimulationEvent{
		Timestamp: time.Now(),
		Type:      EventTypeSystem,
		Severity:  SeverityInfo,
		Message:   message,
		Details:   details,
	})
	sl.logColoredMessage(SeverityInfo, "System", message)
}

// LogError logs an error event
func (sl *SimulationLogger) LogError(message string, err error, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["error"] = err.Error()

	sl.logEvent(SimulationEvent{
		Timestamp: time.Now(),
		Type:      EventTypeSystem,
		Severity:  SeverityError,
		Message:   message,
		Details:   details,
	})

	logger.Errorf("%s: %v", message, err)
}

// UpdateMetric updates a metric value
func (sl *SimulationLogger) UpdateMetric(name string, slot int, value float64, unit string) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	metric, exists := sl.metrics[name]
	if !exists {
		metric = Metric{
			Name:    name,
			Unit:    unit,
			History: make([]MetricPoint, 0),
		}
	}

	metric.Value = value
	metric.LastUpdated = time.Now()
	metric.History = append(metric.History, MetricPoint{Slot: slot, Value: value})

	if len(metric.History) > maxMetricHistory {
		metric.History = metric.History[len(metric.History)-maxMetricHistory:]
	}

	sl.metrics[name] = metric
}

// GetEvents returns all logged events
func (sl *SimulationLogger) GetEvents() []SimulationEvent {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	events := make([]SimulationEvent, len(sl.events))
	copy(events, sl.events)
	return events
}

// GetMetrics returns current metrics
func (sl *SimulationLogger) GetMetrics() map[string]Metric {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	metrics := make(map[string]Metric, len(sl.metrics))
	for k, v := range sl.metrics {
		metrics[k] = v
	}
	return metrics
}

// SimulationSummary represents a summary of the simulation
type SimulationSummary struct {
	SimulationID string
	StartTime    time.Time
	Duration     time.Duration
	TotalEvents  int
	EventCounts  map[string]int
	Metrics      map[string]Metric
}

// GetSummary returns a simulation summary
func (sl *SimulationLogger) GetSummary() SimulationSummary {
	sl.mu.RLock()
	defer sl.mu.RUnlock()

	eventCounts := make(map[string]int)
	for _, event := range sl.events {
		eventCounts[event.Type]++
	}

	metrics := make(map[string]Metric, len(sl.metrics))
	for k, v := range sl.metrics {
		metrics[k] = v
	}

	return SimulationSummary{
		SimulationID: sl.simulationID,
		StartTime:    sl.startTime,
		Duration:     time.Since(sl.startTime),
		TotalEvents:  len(sl.events),
		EventCounts:  eventCounts,
		Metrics:      metrics,
	}
}

// logEvent adds an event to the log
func (sl *SimulationLogger) logEvent(event SimulationEvent) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	sl.events = append(sl.events, event)

	if len(sl.events) > maxEvents {
		sl.events = sl.events[len(sl.events)-maxEvents:]
	}
}

// logColoredMessage prints a message with color based on severity
func (sl *SimulationLogger) logColoredMessage(severity, eventType, message string) {
	if sl.quiet {
		return
	}

	var severityColor *color.Color
	switch severity {
	case SeverityDebug:
		severityColor = colorDebug
	case SeverityWarning:
		severityColor = colorWarning
	case SeverityError:
		severityColor = colorError
	default:
		severityColor = colorInfo
	}

	fmt.Fprintf(sl.out, "[%s] %s %s | %s\n",
		time.Now().Format("15:04:05.000"),
		severityColor.Sprint(fmt.Sprintf("%-8s", severity)),
		eventType,
		message)
}

// PrintSummary prints a formatted summary
func (sl *SimulationLogger) PrintSummary() {
	if sl.quiet {
		return
	}

	summary := sl.GetSummary()
	line := "══════════════════════════════════════════════════════"

	colorSuccess.Fprintln(sl.out, "\n"+line)
	colorSuccess.Fprintf(sl.out, "  SIMULATION SUMMARY - %s\n", shortID(summary.SimulationID))
	colorSuccess.Fprintln(sl.out, line)

	fmt.Fprintf(sl.out, "\n%s Duration: %v | Total Events: %d\n", logger.IconTime, summary.Duration.Round(time.Millisecond), summary.TotalEvents)

	types := make([]string, 0, len(summary.EventCounts))
	for eventType := range summary.EventCounts {
		types = append(types, eventType)
	}
	sort.Strings(types)

	fmt.Fprintln(sl.out, "\nEvent Distribution:")
	for _, eventType := range types {
		fmt.Fprintf(sl.out, "   %-20s: %d\n", eventType, summary.EventCounts[eventType])
	}

	if len(summary.Metrics) > 0 {
		names := make([]string, 0, len(summary.Metrics))
		for name := range summary.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintf(sl.out, "\n%s Metrics:\n", logger.IconChart)
		for _, name := range names {
			metric := summary.Metrics[name]
			fmt.Fprintf(sl.out, "   %-20s: %.6g %s\n", name, metric.Value, metric.Unit)
		}
	}

	colorSuccess.Fprintln(sl.out, "\n"+line)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

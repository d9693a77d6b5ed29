package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/picogrid/uav-offload-sim/pkg/logger"
	"gopkg.in/yaml.v3"
)

// RunReport is the persisted outcome of one simulation run
type RunReport struct {
	Metadata   ReportMetadata     `yaml:"metadata"`
	Scenario   ScenarioSummary    `yaml:"scenario"`
	Results    ResultSummary      `yaml:"results"`
	TopDevices []DeviceEfficiency `yaml:"top_devices"`
	UAVEnergy  map[int]float64    `yaml:"uav_energy"`
	Slots      []SlotReport       `yaml:"slots,omitempty"`
	Events     []SimulationEvent  `yaml:"events,omitempty"`
}

// ReportMetadata identifies the run
type ReportMetadata struct {
	SimulationID string    `yaml:"simulation_id"`
	GeneratedAt  time.Time `yaml:"generated_at"`
	StartedAt    time.Time `yaml:"started_at"`
	Duration     string    `yaml:"duration"`
	Seed         int64     `yaml:"seed"`
}

// ScenarioSummary is the size of the simulated scenario
type ScenarioSummary struct {
	DeviceCount    int     `yaml:"device_count"`
	UAVCount       int     `yaml:"uav_count"`
	TimeSlots      int     `yaml:"time_slots"`
	SlotsElapsed   int     `yaml:"slots_elapsed"`
	AreaSize       float64 `yaml:"area_size"`
	CoverageRadius float64 `yaml:"coverage_radius"`
}

// ResultSummary holds the end-of-run metrics
type ResultSummary struct {
	TotalEnergy       float64 `yaml:"total_energy"`
	UAVEnergy         float64 `yaml:"uav_energy"`
	DeviceEnergy      float64 `yaml:"device_energy"`
	SystemUtility     float64 `yaml:"system_utility"`
	EnergyEfficiency  float64 `yaml:"energy_efficiency"`
	TasksDecided      int     `yaml:"tasks_decided"`
	TasksOffloaded    int     `yaml:"tasks_offloaded"`
	TasksLocal        int     `yaml:"tasks_local"`
	CoverageGapSlots  int     `yaml:"coverage_gap_slots"`
	MeanSlotOffloaded float64 `yaml:"mean_slot_offloaded"`
}

// ReportConfig configures report generation
type ReportConfig struct {
	OutputDir    string
	Format       string // "yaml" or "markdown"
	IncludeSlots bool
}

// ReportWriter saves run reports
type ReportWriter struct {
	config ReportConfig
}

// NewReportWriter creates a report writer. An empty format means YAML.
func NewReportWriter(config ReportConfig) *ReportWriter {
	if config.Format == "" {
		config.Format = "yaml"
	}
	return &ReportWriter{config: config}
}

// Finalize fills the metadata and totals that derive from the logger and
// the slot rows
func Finalize(report *RunReport, sl *SimulationLogger, slots []SlotReport) {
	summary := sl.GetSummary()

	report.Metadata.SimulationID = summary.SimulationID
	report.Metadata.GeneratedAt = time.Now()
	report.Metadata.StartedAt = summary.StartTime
	report.Metadata.Duration = summary.Duration.Round(time.Millisecond).String()
	report.Results.CoverageGapSlots = summary.EventCounts[EventTypeCoverageGap]

	offloaded := 0
	for _, s := range slots {
		report.Results.TasksDecided += s.Tasks
		report.Results.TasksOffloaded += s.Offloaded
		report.Results.TasksLocal += s.Local
		offloaded += s.Offloaded
	}
	if len(slots) > 0 {
		report.Results.MeanSlotOffloaded = float64(offloaded) / float64(len(slots))
	}

	report.Slots = slots
	report.Events = sl.GetEvents()
}

// Save writes the report and returns its path
func (w *ReportWriter) Save(report *RunReport) (string, error) {
	if err := os.MkdirAll(w.config.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := report.Metadata.GeneratedAt.Format("20060102_150405")
	filename := fmt.Sprintf("report_%s_%s", shortID(report.Metadata.SimulationID), timestamp)

	out := *report
	if !w.config.IncludeSlots {
		out.Slots = nil
		out.Events = nil
	}

	var (
		data []byte
		ext  string
		err  error
	)
	switch w.config.Format {
	case "yaml":
		data, err = yaml.Marshal(&out)
		if err != nil {
			return "", fmt.Errorf("failed to marshal report: %w", err)
		}
		ext = ".yaml"
	case "markdown":
		data = []byte(renderMarkdown(&out))
		ext = ".md"
	default:
		return "", fmt.Errorf("unsupported format: %s", w.config.Format)
	}

	path := filepath.Join(w.config.OutputDir, filename+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	logger.Successf("Report saved to: %s", path)
	return path, nil
}

// LoadReport reads a YAML report back
func LoadReport(path string) (*RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var report RunReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

func renderMarkdown(report *RunReport) string {
	var sb strings.Builder

	sb.WriteString("# Offloading Run Report\n\n")
	sb.WriteString(fmt.Sprintf("**Simulation ID:** %s\n", report.Metadata.SimulationID))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n", report.Metadata.GeneratedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("**Duration:** %s\n", report.Metadata.Duration))
	sb.WriteString(fmt.Sprintf("**Seed:** %d\n\n", report.Metadata.Seed))

	sb.WriteString("## Scenario\n\n")
	sb.WriteString(fmt.Sprintf("- **Devices:** %d\n", report.Scenario.DeviceCount))
	sb.WriteString(fmt.Sprintf("- **UAVs:** %d\n", report.Scenario.UAVCount))
	sb.WriteString(fmt.Sprintf("- **Slots:** %d/%d\n", report.Scenario.SlotsElapsed, report.Scenario.TimeSlots))
	sb.WriteString(fmt.Sprintf("- **Area:** %.0f m, coverage radius %.0f m\n\n", report.Scenario.AreaSize, report.Scenario.CoverageRadius))

	sb.WriteString("## Results\n\n")
	sb.WriteString(fmt.Sprintf("- **Energy efficiency:** %.6g Mb/J\n", report.Results.EnergyEfficiency))
	sb.WriteString(fmt.Sprintf("- **Total energy:** %.6g J (UAV %.6g J, devices %.6g J)\n",
		report.Results.TotalEnergy, report.Results.UAVEnergy, report.Results.DeviceEnergy))
	sb.WriteString(fmt.Sprintf("- **System utility:** %.6g Mb\n", report.Results.SystemUtility))
	sb.WriteString(fmt.Sprintf("- **Tasks:** %d decided, %d offloaded, %d local\n",
		report.Results.TasksDecided, report.Results.TasksOffloaded, report.Results.TasksLocal))
	sb.WriteString(fmt.Sprintf("- **Coverage gap slots:** %d\n\n", report.Results.CoverageGapSlots))

	if len(report.TopDevices) > 0 {
		sb.WriteString("## Most Efficient Devices\n\n")
		sb.WriteString("| Rank | Device | Efficiency (Mb/J) |\n|---|---|---|\n")
		for i, d := range report.TopDevices {
			sb.WriteString(fmt.Sprintf("| %d | %d | %.6g |\n", i+1, d.DeviceID, d.Efficiency))
		}
		sb.WriteString("\n")
	}

	if len(report.Slots) > 0 {
		sb.WriteString("## Slots\n\n")
		sb.WriteString("| Slot | Tasks | Offloaded | Local | Utility (Mb) | Energy (J) |\n|---|---|---|---|---|---|\n")
		for _, s := range report.Slots {
			sb.WriteString(fmt.Sprintf("| %d | %d | %d | %d | %.4g | %.4g |\n",
				s.Slot, s.Tasks, s.Offloaded, s.Local, s.Utility, s.Energy))
		}
	}

	return sb.String()
}

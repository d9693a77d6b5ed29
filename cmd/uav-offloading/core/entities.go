package core

// NoUAV marks a decision that keeps the task on the device
const NoUAV = -1

// IoTDevice is a mobile ground device that senses data and emits tasks
type IoTDevice struct {
	ID       int
	Position Position
	History  []Position // initial position plus one entry per slot
}

// NewIoTDevice creates a device at its initial position
func NewIoTDevice(id int, initial Position) *IoTDevice {
	return &IoTDevice{
		ID:       id,
		Position: initial,
		History:  []Position{initial},
	}
}

// MoveTo records the next position
func (d *IoTDevice) MoveTo(p Position) {
	d.Position = p
	d.History = append(d.History, p)
}

// UAV is an aerial relay with on-board compute
type UAV struct {
	ID       int
	Position Position
	History  []Position
}

// NewUAV creates a UAV at its initial position
func NewUAV(id int, initial Position) *UAV {
	return &UAV{
		ID:       id,
		Position: initial,
		History:  []Position{initial},
	}
}

// MoveTo records the next position
func (u *UAV) MoveTo(p Position) {
	u.Position = p
	u.History = append(u.History, p)
}

// Task is a unit of sensed data that must be processed within the slot it
// was generated in
type Task struct {
	DeviceID             int
	Position             Position // device position at generation time
	DataSize             float64  // megabits
	ComputationIntensity float64  // cycles per bit
	Deadline             int      // slot index
	CreatedAt            int      // slot index
}

// Decision is the outcome of the offloading step for one task
type Decision struct {
	DeviceID         int
	UAVID            int // NoUAV for local execution
	Task             Task
	Offloaded        bool
	EnergyEfficiency float64 // megabits per joule

	// Instantaneous Shannon rate to the chosen UAV. Informational only, the
	// transmission energy is charged at the nominal rate.
	ChannelRate float64
}

// EfficiencySnapshot maps device id to the most recent efficiency computed
// for one of its tasks
type EfficiencySnapshot map[int]float64

// Copy returns an independent snapshot
func (s EfficiencySnapshot) Copy() EfficiencySnapshot {
	out := make(EfficiencySnapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

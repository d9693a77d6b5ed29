package reporting

import (
	"fmt"
	"sort"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/picogrid/uav-offload-sim/pkg/logger"
)

// DeviceEfficiency pairs a device with its latest offloading efficiency
type DeviceEfficiency struct {
	DeviceID   int     `yaml:"device_id"`
	Efficiency float64 `yaml:"efficiency"`
}

// weaker orders the heap so its root is the entry to evict first: the
// lowest efficiency, and among equals the highest id
func weaker(a, b interface{}) int {
	x := a.(DeviceEfficiency)
	y := b.(DeviceEfficiency)

	switch {
	case x.Efficiency < y.Efficiency:
		return -1
	case x.Efficiency > y.Efficiency:
		return 1
	case x.DeviceID > y.DeviceID:
		return -1
	case x.DeviceID < y.DeviceID:
		return 1
	default:
		return 0
	}
}

// TopDevices returns the k most efficient devices, best first. Ties go to
// the lower device id.
func TopDevices(snapshot map[int]float64, k int) []DeviceEfficiency {
	if k <= 0 || len(snapshot) == 0 {
		return nil
	}

	ids := make([]int, 0, len(snapshot))
	for id := range snapshot {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	heap := binaryheap.NewWith(weaker)
	for _, id := range ids {
		heap.Push(DeviceEfficiency{DeviceID: id, Efficiency: snapshot[id]})
		if heap.Size() > k {
			heap.Pop()
		}
	}

	top := make([]DeviceEfficiency, heap.Size())
	for i := len(top) - 1; i >= 0; i-- {
		v, _ := heap.Pop()
		top[i] = v.(DeviceEfficiency)
	}

	return top
}

// TopDevicesTable renders a ranking as a console table
func TopDevicesTable(top []DeviceEfficiency) *logger.Table {
	table := logger.NewTable("Rank", "Device", "Efficiency (Mb/J)")
	for i, d := range top {
		table.AddRow(fmt.Sprintf("%d", i+1), fmt.Sprintf("%d", d.DeviceID), fmt.Sprintf("%.6g", d.Efficiency))
	}
	return table
}

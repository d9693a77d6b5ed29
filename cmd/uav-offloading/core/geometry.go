package core

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Position is a point in meters. Z is altitude above ground.
type Position = r3.Vec

// Distance returns the Euclidean distance between two points
func Distance(p1, p2 Position) float64 {
	return r3.Norm(r3.Sub(p1, p2))
}

// ChannelModel holds the propagation constants of the device-to-UAV uplink
type ChannelModel struct {
	NoisePower        float64 // watts
	Bandwidth         float64 // Hz
	PathLossExponent  float64
	TransmissionPower float64 // device transmit power, watts
}

// PathLoss is the free-space attenuation distance^α. It is 0 only for
// coincident points, callers dividing by it must guard that case.
func (c ChannelModel) PathLoss(distance float64) float64 {
	return math.Pow(distance, c.PathLossExponent)
}

// DataRate is the Shannon capacity B·log2(1+SNR) in bits per second
func (c ChannelModel) DataRate(transmissionPower, pathLoss float64) float64 {
	denominator := pathLoss * c.NoisePower
	if denominator <= 0 {
		return 0
	}
	snr := transmissionPower / denominator
	return c.Bandwidth * math.Log2(1+snr)
}

// LinkRate is the instantaneous uplink rate from a device to a UAV
func (c ChannelModel) LinkRate(device, uav Position) float64 {
	return c.DataRate(c.TransmissionPower, c.PathLoss(Distance(device, uav)))
}

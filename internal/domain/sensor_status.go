package domain

// SensorStatus is the device_status sensor_status bit field. Zero means
// every sensor is healthy.
type SensorStatus uint64

const (
	SensorLightningFailed SensorStatus = 1 << iota
	SensorLightningNoise
	SensorLightningDisturber
	SensorPressureFailed
	SensorTemperatureFailed
	SensorHumidityFailed
	SensorWindFailed
	SensorPrecipFailed
	SensorLightUVFailed
)

var sensorStatusNames = []struct {
	flag SensorStatus
	name string
}{
	{SensorLightningFailed, "lightning_failed"},
	{SensorLightningNoise, "lightning_noise"},
	{SensorLightningDisturber, "lightning_disturber"},
	{SensorPressureFailed, "pressure_failed"},
	{SensorTemperatureFailed, "temperature_failed"},
	{SensorHumidityFailed, "rh_failed"},
	{SensorWindFailed, "wind_failed"},
	{SensorPrecipFailed, "precip_failed"},
	{SensorLightUVFailed, "light_uv_failed"},
}

// OK reports whether no failure bit is set.
func (s SensorStatus) OK() bool { return s == 0 }

// Has reports whether every bit in flag is set.
func (s SensorStatus) Has(flag SensorStatus) bool { return s&flag == flag }

// Failures lists the names of the set bits in bit order. Bits above the
// documented range are ignored.
func (s SensorStatus) Failures() []string {
	var out []string
	for _, n := range sensorStatusNames {
		if s.Has(n.flag) {
			out = append(out, n.name)
		}
	}
	return out
}

package domain

import "math"

// Weather is the canonical record built from one observation report.
type Weather struct {
	TimeEpoch            int64             `json:"time_epoch" yaml:"time_epoch"`
	WindLull             float32           `json:"wind_lull" yaml:"wind_lull"`
	WindAvg              float32           `json:"wind_avg" yaml:"wind_avg"`
	WindGust             float32           `json:"wind_gust" yaml:"wind_gust"`
	WindDirection        uint16            `json:"wind_direction" yaml:"wind_direction"`
	WindSampleInterval   uint16            `json:"wind_sample_interval" yaml:"wind_sample_interval"`
	StationPressure      float32           `json:"station_pressure" yaml:"station_pressure"`
	AirTemp              float32           `json:"air_temp" yaml:"air_temp"`
	RelativeHumidity     float32           `json:"relative_humidity" yaml:"relative_humidity"`
	Illuminance          uint32            `json:"illuminance" yaml:"illuminance"`
	UVIndex              float32           `json:"uv_index" yaml:"uv_index"`
	SolarRadiation       uint32            `json:"solar_radiation" yaml:"solar_radiation"`
	RainOverPrevMinute   float32           `json:"rain_over_prev_minute" yaml:"rain_over_prev_minute"`
	PrecipType           PrecipitationType `json:"precip_type" yaml:"precip_type"`
	LightningAvgDistance uint32            `json:"lightning_avg_distance" yaml:"lightning_avg_distance"`
	LightningStrikeCount uint32            `json:"lightning_strike_count" yaml:"lightning_strike_count"`
	BatteryVoltage       float32           `json:"battery_voltage" yaml:"battery_voltage"`
	ReportInterval       uint16            `json:"report_interval" yaml:"report_interval"`
}

// StoredWeather is a Weather with the row ID assigned by storage.
type StoredWeather struct {
	ID      int64 `json:"id" yaml:"id"`
	Weather `yaml:",inline"`
}

// Normalize builds a Weather from an *Observation. Every other packet type
// yields false; only full observation reports are persisted.
func Normalize(p Packet) (Weather, bool) {
	obs, ok := p.(*Observation)
	if !ok {
		return Weather{}, false
	}
	r := obs.Report
	return Weather{
		TimeEpoch:            saturateInt64(r.TimeEpoch),
		WindLull:             float32(r.WindLull),
		WindAvg:              float32(r.WindAvg),
		WindGust:             float32(r.WindGust),
		WindDirection:        uint16(saturateUnsigned(r.WindDirection, math.MaxUint16)),
		WindSampleInterval:   uint16(saturateUnsigned(r.WindSampleInterval, math.MaxUint16)),
		StationPressure:      float32(r.StationPressure),
		AirTemp:              float32(r.AirTemp),
		RelativeHumidity:     float32(r.RelativeHumidity),
		Illuminance:          uint32(saturateUnsigned(r.Illuminance, math.MaxUint32)),
		UVIndex:              float32(r.UVIndex),
		SolarRadiation:       uint32(saturateUnsigned(r.SolarRadiation, math.MaxUint32)),
		RainOverPrevMinute:   float32(r.RainOverPrevMinute),
		PrecipType:           PrecipitationTypeFromFloat(r.PrecipType),
		LightningAvgDistance: uint32(saturateUnsigned(r.LightningAvgDistance, math.MaxUint32)),
		LightningStrikeCount: uint32(saturateUnsigned(r.LightningStrikeCount, math.MaxUint32)),
		BatteryVoltage:       float32(r.BatteryVoltage),
		ReportInterval:       uint16(saturateUnsigned(r.ReportInterval, math.MaxUint16)),
	}, true
}

// saturateUnsigned truncates f toward zero and clamps it to [0, limit].
// NaN maps to 0.
func saturateUnsigned(f float64, limit uint64) uint64 {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= float64(limit) {
		return limit
	}
	return uint64(f)
}

func saturateUint64(f float64) uint64 {
	return saturateUnsigned(f, math.MaxUint64)
}

// saturateInt64 truncates f toward zero and clamps it to the int64 range.
// NaN maps to 0.
func saturateInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}

// Package domain models the WeatherFlow Tempest local UDP broadcast protocol.
//
// # Data Source
//
// A Tempest hub broadcasts one JSON object per UDP datagram on port 50222.
// Every object carries a "type" discriminator; the remaining members depend
// on the type. Six types are understood:
//
//	obs_st         full observation report (persisted)
//	rapid_wind     3-second wind sample
//	evt_precip     rain start event
//	evt_strike     lightning strike event
//	device_status  sensor health report
//	hub_status     hub health report
//
// Any other type, or an object with no type at all, decodes to [Unrecognized]
// so newer firmware cannot stall ingestion.
//
// # Encoding Quirks
//
// Observation fields arrive as a nested positional array, obs = [[18 numbers]],
// with no field names. The slot order is fixed by the firmware:
//
//	 0 epoch seconds          9 illuminance, lux
//	 1 wind lull, m/s        10 UV index
//	 2 wind avg, m/s         11 solar radiation, W/m^2
//	 3 wind gust, m/s        12 rain over previous minute, mm
//	 4 wind direction, deg   13 precipitation type (0 none, 1 rain, 2 hail, 3 both)
//	 5 wind sample interval  14 lightning average distance, km
//	 6 station pressure, mb  15 lightning strike count
//	 7 air temperature, C    16 battery, volts
//	 8 relative humidity, %  17 report interval, minutes
//
// The payload has no schema version, so a firmware release that reorders these
// slots would be decoded silently into the wrong fields. Positional access is
// confined to [reportFromSlots]; everything past the decoder uses names.
//
// hub_status reports firmware_revision as a decimal string while every other
// type uses a number. device_status encodes its debug flag as the integer 0
// or 1 and sensor_status as a bit field (see [SensorStatus]).
//
// # Narrowing
//
// [Normalize] converts the float64 slots to the narrower [Weather] field types
// by truncating toward zero and saturating at the target range; NaN becomes 0.
// Go leaves out-of-range float-to-integer conversions implementation-defined,
// so the saturation is explicit to keep results identical across platforms.
package domain

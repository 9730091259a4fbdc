package domain

import "log/slog"

// PacketType is the value of the "type" discriminator.
type PacketType string

const (
	TypeObservation     PacketType = "obs_st"
	TypeRapidWind       PacketType = "rapid_wind"
	TypeRainStart       PacketType = "evt_precip"
	TypeLightningStrike PacketType = "evt_strike"
	TypeDeviceStatus    PacketType = "device_status"
	TypeHubStatus       PacketType = "hub_status"
)

// Packet is one decoded datagram. The set of implementations is closed:
// *Observation, *RapidWind, *RainStartEvent, *LightningStrikeEvent,
// *DeviceStatus, *HubStatus and *Unrecognized.
type Packet interface {
	slog.LogValuer
	Type() PacketType
	isPacket()
}

// Observation is an obs_st report.
type Observation struct {
	SerialNumber     string
	HubSerialNumber  string
	FirmwareRevision uint64
	Report           ObservationReport
}

// ObservationReport names the 18 positional slots of obs_st.obs[0].
type ObservationReport struct {
	TimeEpoch            float64
	WindLull             float64
	WindAvg              float64
	WindGust             float64
	WindDirection        float64
	WindSampleInterval   float64
	StationPressure      float64
	AirTemp              float64
	RelativeHumidity     float64
	Illuminance          float64
	UVIndex              float64
	SolarRadiation       float64
	RainOverPrevMinute   float64
	PrecipType           float64
	LightningAvgDistance float64
	LightningStrikeCount float64
	BatteryVoltage       float64
	ReportInterval       float64
}

// observationSlots is the number of values in one obs_st report.
const observationSlots = 18

// reportFromSlots maps the firmware's slot order onto ObservationReport.
func reportFromSlots(s [observationSlots]float64) ObservationReport {
	return ObservationReport{
		TimeEpoch:            s[0],
		WindLull:             s[1],
		WindAvg:              s[2],
		WindGust:             s[3],
		WindDirection:        s[4],
		WindSampleInterval:   s[5],
		StationPressure:      s[6],
		AirTemp:              s[7],
		RelativeHumidity:     s[8],
		Illuminance:          s[9],
		UVIndex:              s[10],
		SolarRadiation:       s[11],
		RainOverPrevMinute:   s[12],
		PrecipType:           s[13],
		LightningAvgDistance: s[14],
		LightningStrikeCount: s[15],
		BatteryVoltage:       s[16],
		ReportInterval:       s[17],
	}
}

// RapidWind is a rapid_wind sample.
type RapidWind struct {
	SerialNumber    string
	HubSerialNumber string
	TimeEpoch       uint64
	WindSpeed       float64 // m/s
	WindDirection   uint64  // degrees
}

// RainStartEvent is an evt_precip event.
type RainStartEvent struct {
	SerialNumber    string
	HubSerialNumber string
	TimeEpoch       uint64
}

// LightningStrikeEvent is an evt_strike event.
type LightningStrikeEvent struct {
	SerialNumber    string
	HubSerialNumber string
	TimeEpoch       uint64
	Distance        uint64 // km
	Energy          uint64
}

// DeviceStatus is a device_status health report.
type DeviceStatus struct {
	SerialNumber     string
	HubSerialNumber  string
	Timestamp        uint64
	Uptime           uint64 // seconds
	Voltage          float64
	FirmwareRevision uint64
	RSSI             int64
	HubRSSI          int64
	SensorStatus     SensorStatus
	Debug            bool
}

// HubStatus is a hub_status health report.
type HubStatus struct {
	SerialNumber     string
	FirmwareRevision string
	Uptime           uint64
	RSSI             int64
	Timestamp        uint64
	ResetFlags       string
	Seq              uint64
	RadioStats       [5]uint64
	MQTTStats        [2]uint64
}

// Unrecognized is any object whose discriminator is missing or unknown.
// Tag is empty when the object had no string "type" member.
type Unrecognized struct {
	Tag string
}

func (*Observation) Type() PacketType          { return TypeObservation }
func (*RapidWind) Type() PacketType            { return TypeRapidWind }
func (*RainStartEvent) Type() PacketType       { return TypeRainStart }
func (*LightningStrikeEvent) Type() PacketType { return TypeLightningStrike }
func (*DeviceStatus) Type() PacketType         { return TypeDeviceStatus }
func (*HubStatus) Type() PacketType            { return TypeHubStatus }
func (u *Unrecognized) Type() PacketType       { return PacketType(u.Tag) }

func (*Observation) isPacket()          {}
func (*RapidWind) isPacket()            {}
func (*RainStartEvent) isPacket()       {}
func (*LightningStrikeEvent) isPacket() {}
func (*DeviceStatus) isPacket()         {}
func (*HubStatus) isPacket()            {}
func (*Unrecognized) isPacket()         {}

func (p *Observation) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", string(TypeObservation)),
		slog.String("serial_number", p.SerialNumber),
		slog.String("hub_sn", p.HubSerialNumber),
		slog.Float64("time_epoch", p.Report.TimeEpoch),
	)
}

func (p *RapidWind) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", string(TypeRapidWind)),
		slog.String("serial_number", p.SerialNumber),
		slog.Uint64("time_epoch", p.TimeEpoch),
		slog.Float64("wind_speed", p.WindSpeed),
		slog.Uint64("wind_direction", p.WindDirection),
	)
}

func (p *RainStartEvent) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", string(TypeRainStart)),
		slog.String("serial_number", p.SerialNumber),
		slog.Uint64("time_epoch", p.TimeEpoch),
	)
}

func (p *LightningStrikeEvent) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", string(TypeLightningStrike)),
		slog.String("serial_number", p.SerialNumber),
		slog.Uint64("time_epoch", p.TimeEpoch),
		slog.Uint64("distance_km", p.Distance),
		slog.Uint64("energy", p.Energy),
	)
}

func (p *DeviceStatus) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", string(TypeDeviceStatus)),
		slog.String("serial_number", p.SerialNumber),
		slog.Uint64("uptime", p.Uptime),
		slog.Float64("voltage", p.Voltage),
		slog.Int64("rssi", p.RSSI),
		slog.Int64("hub_rssi", p.HubRSSI),
		slog.Any("sensor_failures", p.SensorStatus.Failures()),
		slog.Bool("debug", p.Debug),
	)
}

func (p *HubStatus) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", string(TypeHubStatus)),
		slog.String("serial_number", p.SerialNumber),
		slog.String("firmware_revision", p.FirmwareRevision),
		slog.Uint64("uptime", p.Uptime),
		slog.Int64("rssi", p.RSSI),
		slog.Uint64("seq", p.Seq),
		slog.String("reset_flags", p.ResetFlags),
	)
}

func (u *Unrecognized) LogValue() slog.Value {
	return slog.GroupValue(slog.String("type", u.Tag))
}

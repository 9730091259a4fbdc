package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

var (
	errNotObject     = errors.New("top-level value is not an object")
	errInvalidUTF8   = errors.New("payload is not valid UTF-8")
	errMissing       = errors.New("missing field")
	errNotString     = errors.New("expected string")
	errNotUnsigned   = errors.New("expected unsigned integer")
	errNotInteger    = errors.New("expected integer")
	errNotNumber     = errors.New("expected number")
	errNotArray      = errors.New("expected array")
	errNotBinaryFlag = errors.New("expected 0 or 1")
)

// Decode parses one datagram payload.
//
// A payload that is not valid UTF-8 or not a JSON object fails with ErrUnparseable. An object
// with a missing or unknown "type" decodes to *Unrecognized without error.
// A known type whose members do not match its shape fails with ErrMalformed;
// the returned *DecodeError names the field and its raw value.
func Decode(payload []byte) (Packet, error) {
	// encoding/json would silently replace invalid bytes with U+FFFD.
	if !utf8.Valid(payload) {
		return nil, &DecodeError{Kind: Unparseable, Err: errInvalidUTF8}
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(payload, &members); err != nil {
		return nil, &DecodeError{Kind: Unparseable, Err: err}
	}
	if members == nil {
		return nil, &DecodeError{Kind: Unparseable, Err: errNotObject}
	}

	var tag string
	if raw, ok := members["type"]; ok {
		// A non-string discriminator is treated the same as an absent one.
		_ = json.Unmarshal(raw, &tag)
	}

	r := &fieldReader{variant: PacketType(tag), members: members}
	switch PacketType(tag) {
	case TypeObservation:
		return decodeObservation(r)
	case TypeRapidWind:
		return decodeRapidWind(r)
	case TypeRainStart:
		return decodeRainStart(r)
	case TypeLightningStrike:
		return decodeLightningStrike(r)
	case TypeDeviceStatus:
		return decodeDeviceStatus(r)
	case TypeHubStatus:
		return decodeHubStatus(r)
	default:
		return &Unrecognized{Tag: tag}, nil
	}
}

func decodeObservation(r *fieldReader) (Packet, error) {
	p := &Observation{
		SerialNumber:     r.String("serial_number"),
		HubSerialNumber:  r.String("hub_sn"),
		FirmwareRevision: r.Uint("firmware_revision"),
	}

	var slots [observationSlots]float64
	if reports := r.Array("obs", 1); reports != nil {
		values := r.arrayAt("obs[0]", reports[0], observationSlots)
		for i, v := range values {
			slots[i] = r.floatAt(fmt.Sprintf("obs[0][%d]", i), v)
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	p.Report = reportFromSlots(slots)
	return p, nil
}

func decodeRapidWind(r *fieldReader) (Packet, error) {
	p := &RapidWind{
		SerialNumber:    r.String("serial_number"),
		HubSerialNumber: r.String("hub_sn"),
	}
	if ob := r.Array("ob", 3); ob != nil {
		p.TimeEpoch = r.uintAt("ob[0]", ob[0])
		p.WindSpeed = r.floatAt("ob[1]", ob[1])
		p.WindDirection = r.uintAt("ob[2]", ob[2])
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

func decodeRainStart(r *fieldReader) (Packet, error) {
	p := &RainStartEvent{
		SerialNumber:    r.String("serial_number"),
		HubSerialNumber: r.String("hub_sn"),
	}
	if evt := r.Array("evt", 1); evt != nil {
		p.TimeEpoch = r.uintAt("evt[0]", evt[0])
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

func decodeLightningStrike(r *fieldReader) (Packet, error) {
	p := &LightningStrikeEvent{
		SerialNumber:    r.String("serial_number"),
		HubSerialNumber: r.String("hub_sn"),
	}
	if evt := r.Array("evt", 3); evt != nil {
		p.TimeEpoch = r.uintAt("evt[0]", evt[0])
		p.Distance = r.uintAt("evt[1]", evt[1])
		p.Energy = r.uintAt("evt[2]", evt[2])
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

func decodeDeviceStatus(r *fieldReader) (Packet, error) {
	p := &DeviceStatus{
		SerialNumber:     r.String("serial_number"),
		HubSerialNumber:  r.String("hub_sn"),
		Timestamp:        r.Uint("timestamp"),
		Uptime:           r.Uint("uptime"),
		Voltage:          r.Float("voltage"),
		FirmwareRevision: r.Uint("firmware_revision"),
		RSSI:             r.Int("rssi"),
		HubRSSI:          r.Int("hub_rssi"),
		SensorStatus:     SensorStatus(r.Uint("sensor_status")),
		Debug:            r.BinaryFlag("debug"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

func decodeHubStatus(r *fieldReader) (Packet, error) {
	p := &HubStatus{
		SerialNumber:     r.String("serial_number"),
		FirmwareRevision: r.String("firmware_revision"),
		Uptime:           r.Uint("uptime"),
		RSSI:             r.Int("rssi"),
		Timestamp:        r.Uint("timestamp"),
		ResetFlags:       r.String("reset_flags"),
		Seq:              r.Uint("seq"),
	}
	for i, v := range r.Array("radio_stats", len(p.RadioStats)) {
		p.RadioStats[i] = r.uintAt(fmt.Sprintf("radio_stats[%d]", i), v)
	}
	for i, v := range r.Array("mqtt_stats", len(p.MQTTStats)) {
		p.MQTTStats[i] = r.uintAt(fmt.Sprintf("mqtt_stats[%d]", i), v)
	}
	if r.err != nil {
		return nil, r.err
	}
	return p, nil
}

// fieldReader extracts typed members from a decoded object. The first
// failure is kept in err and later reads become no-ops returning zero values.
type fieldReader struct {
	variant PacketType
	members map[string]json.RawMessage
	err     error
}

func (r *fieldReader) fail(field string, raw json.RawMessage, err error) {
	if r.err != nil {
		return
	}
	r.err = &DecodeError{
		Kind:    Malformed,
		Variant: r.variant,
		Field:   field,
		Value:   string(raw),
		Err:     err,
	}
}

func (r *fieldReader) member(name string) (json.RawMessage, bool) {
	if r.err != nil {
		return nil, false
	}
	raw, ok := r.members[name]
	if !ok {
		r.fail(name, nil, errMissing)
		return nil, false
	}
	return bytes.TrimSpace(raw), true
}

func (r *fieldReader) String(name string) string {
	raw, ok := r.member(name)
	if !ok {
		return ""
	}
	return r.stringAt(name, raw)
}

func (r *fieldReader) Uint(name string) uint64 {
	raw, ok := r.member(name)
	if !ok {
		return 0
	}
	return r.uintAt(name, raw)
}

func (r *fieldReader) Int(name string) int64 {
	raw, ok := r.member(name)
	if !ok {
		return 0
	}
	return r.intAt(name, raw)
}

func (r *fieldReader) Float(name string) float64 {
	raw, ok := r.member(name)
	if !ok {
		return 0
	}
	return r.floatAt(name, raw)
}

// BinaryFlag reads a boolean encoded as the integer 0 or 1.
func (r *fieldReader) BinaryFlag(name string) bool {
	raw, ok := r.member(name)
	if !ok {
		return false
	}
	v := r.uintAt(name, raw)
	if r.err == nil && v > 1 {
		r.fail(name, raw, errNotBinaryFlag)
	}
	return v == 1
}

// Array reads a fixed-length array member. It returns nil on any failure,
// otherwise a slice of exactly n elements.
func (r *fieldReader) Array(name string, n int) []json.RawMessage {
	raw, ok := r.member(name)
	if !ok {
		return nil
	}
	return r.arrayAt(name, raw, n)
}

func (r *fieldReader) stringAt(path string, raw json.RawMessage) string {
	if r.err != nil {
		return ""
	}
	var s string
	if len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &s) != nil {
		r.fail(path, raw, errNotString)
		return ""
	}
	return s
}

func (r *fieldReader) uintAt(path string, raw json.RawMessage) uint64 {
	if r.err != nil {
		return 0
	}
	if !isNumber(raw) {
		r.fail(path, raw, errNotUnsigned)
		return 0
	}
	v, err := strconv.ParseUint(string(raw), 10, 64)
	if err != nil {
		r.fail(path, raw, fmt.Errorf("%w: %w", errNotUnsigned, err))
		return 0
	}
	return v
}

func (r *fieldReader) intAt(path string, raw json.RawMessage) int64 {
	if r.err != nil {
		return 0
	}
	if !isNumber(raw) {
		r.fail(path, raw, errNotInteger)
		return 0
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		r.fail(path, raw, fmt.Errorf("%w: %w", errNotInteger, err))
		return 0
	}
	return v
}

func (r *fieldReader) floatAt(path string, raw json.RawMessage) float64 {
	if r.err != nil {
		return 0
	}
	if !isNumber(raw) {
		r.fail(path, raw, errNotNumber)
		return 0
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		r.fail(path, raw, fmt.Errorf("%w: %w", errNotNumber, err))
		return 0
	}
	return v
}

func (r *fieldReader) arrayAt(path string, raw json.RawMessage, n int) []json.RawMessage {
	if r.err != nil {
		return nil
	}
	var elems []json.RawMessage
	if len(raw) == 0 || raw[0] != '[' || json.Unmarshal(raw, &elems) != nil {
		r.fail(path, raw, errNotArray)
		return nil
	}
	if len(elems) != n {
		r.fail(path, raw, fmt.Errorf("expected %d elements, got %d", n, len(elems)))
		return nil
	}
	for i := range elems {
		elems[i] = bytes.TrimSpace(elems[i])
	}
	return elems
}

// isNumber reports whether raw starts like a JSON number literal.
func isNumber(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	c := raw[0]
	return c == '-' || (c >= '0' && c <= '9')
}

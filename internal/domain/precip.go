package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// PrecipitationType is the kind of precipitation detected in an observation.
type PrecipitationType uint8

const (
	PrecipNone PrecipitationType = iota
	PrecipRain
	PrecipHail
	PrecipRainAndHail
)

func (p PrecipitationType) String() string {
	switch p {
	case PrecipNone:
		return "None"
	case PrecipRain:
		return "Rain"
	case PrecipHail:
		return "Hail"
	case PrecipRainAndHail:
		return "RainAndHail"
	default:
		return "PrecipitationType(" + strconv.Itoa(int(p)) + ")"
	}
}

// PrecipitationTypeFromFloat coerces a raw observation slot. Values outside
// 1..3 after truncation, including NaN and negatives, become PrecipNone so
// newer firmware codes do not reject the whole report.
func PrecipitationTypeFromFloat(f float64) PrecipitationType {
	switch saturateUint64(f) {
	case 1:
		return PrecipRain
	case 2:
		return PrecipHail
	case 3:
		return PrecipRainAndHail
	default:
		return PrecipNone
	}
}

// ParsePrecipitationType is the strict conversion used for structured input.
func ParsePrecipitationType(v uint64) (PrecipitationType, error) {
	if v > uint64(PrecipRainAndHail) {
		return PrecipNone, fmt.Errorf("invalid precipitation type %d", v)
	}
	return PrecipitationType(v), nil
}

func (p PrecipitationType) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(p), 10), nil
}

func (p *PrecipitationType) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return errors.New("invalid precipitation type null")
	}
	var v uint8
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid precipitation type %s: %w", data, err)
	}
	parsed, err := ParsePrecipitationType(uint64(v))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

func (p PrecipitationType) MarshalYAML() (any, error) {
	return uint8(p), nil
}

func (p *PrecipitationType) UnmarshalYAML(node *yaml.Node) error {
	var v uint8
	if err := node.Decode(&v); err != nil {
		return fmt.Errorf("invalid precipitation type %q: %w", node.Value, err)
	}
	parsed, err := ParsePrecipitationType(uint64(v))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value stores the integer code.
func (p PrecipitationType) Value() (driver.Value, error) {
	return int64(p), nil
}

// Scan reads a stored code leniently, matching PrecipitationTypeFromFloat.
func (p *PrecipitationType) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*p = PrecipitationTypeFromFloat(float64(v))
	case float64:
		*p = PrecipitationTypeFromFloat(v)
	case []byte:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return fmt.Errorf("scan precipitation type %q: %w", v, err)
		}
		*p = PrecipitationTypeFromFloat(f)
	case nil:
		*p = PrecipNone
	default:
		return fmt.Errorf("scan precipitation type: unsupported type %T", src)
	}
	return nil
}

package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNormalize_Observation(t *testing.T) {
	p, err := Decode([]byte(testObservation))
	require.NoError(t, err)

	w, ok := Normalize(p)
	require.True(t, ok)

	want := Weather{
		TimeEpoch:            1588186800,
		WindLull:             0,
		WindAvg:              float32(2.6),
		WindGust:             float32(4.6),
		WindDirection:        187,
		WindSampleInterval:   3,
		StationPressure:      float32(1017.57),
		AirTemp:              float32(22.37),
		RelativeHumidity:     float32(50.26),
		Illuminance:          328,
		UVIndex:              float32(0.03),
		SolarRadiation:       3,
		RainOverPrevMinute:   0,
		PrecipType:           PrecipNone,
		LightningAvgDistance: 0,
		LightningStrikeCount: 0,
		BatteryVoltage:       float32(2.41),
		ReportInterval:       1,
	}
	if diff := cmp.Diff(want, w); diff != "" {
		t.Fatalf("weather mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize_OtherVariantsYieldNothing(t *testing.T) {
	for _, payload := range []string{testRapidWind, testRainStart, testStrike, testDevice, testHub, `{"type":"obs_air"}`} {
		p, err := Decode([]byte(payload))
		require.NoError(t, err)

		w, ok := Normalize(p)
		assert.False(t, ok, "type %s", p.Type())
		assert.Equal(t, Weather{}, w)
	}
}

func TestNormalize_Narrowing(t *testing.T) {
	obs := &Observation{Report: ObservationReport{
		TimeEpoch:            -12.9,
		WindLull:             0.1,
		WindDirection:        359.99,
		WindSampleInterval:   70000,
		Illuminance:          -5,
		SolarRadiation:       math.NaN(),
		PrecipType:           2.7,
		LightningAvgDistance: 1e12,
		LightningStrikeCount: math.Inf(1),
		ReportInterval:       1.999,
	}}

	w, ok := Normalize(obs)
	require.True(t, ok)

	assert.Equal(t, int64(-12), w.TimeEpoch)
	assert.Equal(t, math.Float32bits(float32(0.1)), math.Float32bits(w.WindLull))
	assert.Equal(t, uint16(359), w.WindDirection)
	assert.Equal(t, uint16(math.MaxUint16), w.WindSampleInterval)
	assert.Equal(t, uint32(0), w.Illuminance)
	assert.Equal(t, uint32(0), w.SolarRadiation)
	assert.Equal(t, PrecipHail, w.PrecipType)
	assert.Equal(t, uint32(math.MaxUint32), w.LightningAvgDistance)
	assert.Equal(t, uint32(math.MaxUint32), w.LightningStrikeCount)
	assert.Equal(t, uint16(1), w.ReportInterval)

	again, _ := Normalize(obs)
	assert.Equal(t, w, again)
}

func TestSaturateInt64(t *testing.T) {
	assert.Equal(t, int64(0), saturateInt64(math.NaN()))
	assert.Equal(t, int64(math.MaxInt64), saturateInt64(1e19))
	assert.Equal(t, int64(math.MinInt64), saturateInt64(-1e19))
	assert.Equal(t, int64(-3), saturateInt64(-3.99))
	assert.Equal(t, int64(1588186800), saturateInt64(1588186800))
}

func TestPrecipitationTypeFromFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want PrecipitationType
	}{
		{0, PrecipNone},
		{1, PrecipRain},
		{2, PrecipHail},
		{3, PrecipRainAndHail},
		{4, PrecipNone},
		{255, PrecipNone},
		{-1, PrecipNone},
		{1.5, PrecipRain},
		{math.NaN(), PrecipNone},
		{math.Inf(1), PrecipNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PrecipitationTypeFromFloat(tt.in), "input %v", tt.in)
	}
}

func TestPrecipitationType_JSONIsStrict(t *testing.T) {
	for code, want := range []PrecipitationType{PrecipNone, PrecipRain, PrecipHail, PrecipRainAndHail} {
		data, err := json.Marshal(want)
		require.NoError(t, err)
		assert.Equal(t, string(rune('0'+code)), string(data))

		var got PrecipitationType
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, want, got)
	}

	for _, bad := range []string{`4`, `255`, `256`, `-1`, `1.5`, `"1"`, `null`} {
		var got PrecipitationType
		assert.Error(t, json.Unmarshal([]byte(bad), &got), "input %s", bad)
	}
}

func TestPrecipitationType_YAMLIsStrict(t *testing.T) {
	var w struct {
		P PrecipitationType `yaml:"p"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("p: 3\n"), &w))
	assert.Equal(t, PrecipRainAndHail, w.P)

	assert.Error(t, yaml.Unmarshal([]byte("p: 4\n"), &w))

	out, err := yaml.Marshal(map[string]PrecipitationType{"p": PrecipHail})
	require.NoError(t, err)
	assert.Equal(t, "p: 2\n", string(out))
}

func TestPrecipitationType_ScanIsLenient(t *testing.T) {
	tests := []struct {
		src  any
		want PrecipitationType
	}{
		{int64(1), PrecipRain},
		{int64(9), PrecipNone},
		{float64(3), PrecipRainAndHail},
		{[]byte("2"), PrecipHail},
		{nil, PrecipNone},
	}
	for _, tt := range tests {
		var p PrecipitationType
		require.NoError(t, p.Scan(tt.src))
		assert.Equal(t, tt.want, p)
	}

	var p PrecipitationType
	assert.Error(t, p.Scan("rain"))
}

func TestWeather_JSONRejectsOutOfDomainPrecip(t *testing.T) {
	var w Weather
	err := json.Unmarshal([]byte(`{"time_epoch":1588186800,"precip_type":7}`), &w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "precipitation type")
}

func TestPrecipitationType_String(t *testing.T) {
	assert.Equal(t, "None", PrecipNone.String())
	assert.Equal(t, "RainAndHail", PrecipRainAndHail.String())
	assert.Equal(t, "PrecipitationType(9)", PrecipitationType(9).String())
}

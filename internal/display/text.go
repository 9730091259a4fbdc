package display

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/couchcryptid/tempest-listener/internal/domain"
)

// TimeLayout is how observation times are printed, e.g. "April 29, 2020 at 7:00 PM".
const TimeLayout = "January 2, 2006 at 3:04 PM"

// FormatDuration spells out d in whole seconds, e.g. "1 hour, 0 minutes, 5 seconds".
// Hours are omitted when zero and minutes are omitted when both hours and
// minutes are zero. Negative durations print as "0 seconds".
func FormatDuration(d time.Duration) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	minutes := (total / 60) % 60
	seconds := total % 60

	pieces := make([]string, 0, 3)
	if hours > 0 {
		pieces = append(pieces, counted(hours, "hour"))
	}
	if hours > 0 || minutes > 0 {
		pieces = append(pieces, counted(minutes, "minute"))
	}
	pieces = append(pieces, counted(seconds, "second"))
	return strings.Join(pieces, ", ")
}

func counted(n int64, singular string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %ss", n, singular)
}

// Text writes the human-readable report for one observation. The observation
// time is shown in loc along with how long ago it was taken.
func Text(w io.Writer, weather domain.Weather, loc *time.Location) error {
	observed := time.Unix(weather.TimeEpoch, 0).In(loc)

	lines := []string{
		fmt.Sprintf("%s (%s ago)", observed.Format(TimeLayout), FormatDuration(clock.Since(observed))),
		fmt.Sprintf("Air Temperature: %s", Celsius(weather.AirTemp).Fahrenheit()),
		fmt.Sprintf("Wind Lull: %s", MetersPerSecond(weather.WindLull).MilesPerHour()),
		fmt.Sprintf("Wind Avg: %s", MetersPerSecond(weather.WindAvg).MilesPerHour()),
		fmt.Sprintf("Wind Gust: %s", MetersPerSecond(weather.WindGust).MilesPerHour()),
		fmt.Sprintf("Wind Direction: %d°", weather.WindDirection),
		fmt.Sprintf("Wind Sample Interval: %d seconds", weather.WindSampleInterval),
		fmt.Sprintf("Station Pressure: %s mbar", formatFloat(weather.StationPressure)),
		fmt.Sprintf("Relative Humidity: %s%%", formatFloat(weather.RelativeHumidity)),
		fmt.Sprintf("Illuminance: %d Lux", weather.Illuminance),
		fmt.Sprintf("UV Index: %s", formatFloat(weather.UVIndex)),
		fmt.Sprintf("Solar Radiation: %d W/m^2", weather.SolarRadiation),
		fmt.Sprintf("Rain over Previous Minute: %s mm", formatFloat(weather.RainOverPrevMinute)),
		fmt.Sprintf("Precipitation Type: %s", weather.PrecipType),
		fmt.Sprintf("Lightning Average Distance: %d km", weather.LightningAvgDistance),
		fmt.Sprintf("Lightning Strike Count: %d", weather.LightningStrikeCount),
		fmt.Sprintf("Battery Voltage: %s Volts", formatFloat(weather.BatteryVoltage)),
		fmt.Sprintf("Report Interval: %d Minutes", weather.ReportInterval),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Command inspect checks a capture of Tempest datagrams, one JSON payload per
// line, against the decoder and normalizer. It reports packet counts by type,
// every line that fails to decode, and observations whose values are out of
// physical range.
//
// Usage:
//
//	nc -ul 50222 > capture.jsonl   # let it run, then Ctrl-C
//	go run ./cmd/inspect -capture capture.jsonl
package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/couchcryptid/tempest-listener/internal/domain"
)

// phase tracks pass/fail for a check.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	capture := flag.String("capture", "", "path to a capture file (use - for stdin)")
	flag.Parse()

	if *capture == "" {
		flag.Usage()
		os.Exit(1)
	}

	in := os.Stdin
	if *capture != "-" {
		f, err := os.Open(*capture)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: open capture: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	if code := run(in, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

type line struct {
	num     int
	payload []byte
}

func run(r io.Reader, w io.Writer) int {
	lines, err := readLines(r)
	if err != nil {
		fmt.Fprintf(w, "FATAL: read capture: %v\n", err)
		return 1
	}

	fmt.Fprintln(w, "=== Tempest Capture Inspection ===")

	decoded := &phase{name: "Datagrams decode"}
	ranges := &phase{name: "Observation values in range"}
	order := &phase{name: "Observations in time order"}

	counts := map[string]int{}
	var observations int
	var lastEpoch int64
	for _, l := range lines {
		p, err := domain.Decode(l.payload)
		if err != nil {
			decoded.errorf("line %d: %s", l.num, describe(err))
			counts["<error>"]++
			continue
		}
		if u, ok := p.(*domain.Unrecognized); ok {
			counts["<unrecognized:"+u.Tag+">"]++
			continue
		}
		counts[string(p.Type())]++

		weather, ok := domain.Normalize(p)
		if !ok {
			continue
		}
		observations++
		checkRanges(ranges, l.num, weather)
		if weather.TimeEpoch < lastEpoch {
			order.errorf("line %d: time_epoch %d before previous %d", l.num, weather.TimeEpoch, lastEpoch)
		}
		lastEpoch = weather.TimeEpoch
	}

	fmt.Fprintf(w, "\nDatagrams: %d, observations: %d\n", len(lines), observations)
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(w, "  %-28s %d\n", t, counts[t])
	}

	phases := []*phase{decoded, ranges, order}
	fmt.Fprintln(w)
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll checks passed.")
		return 0
	}
	fmt.Fprintln(w, "\nInspection FAILED.")
	return 1
}

func readLines(r io.Reader) ([]line, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), domain.MaxDatagramSize)

	var lines []line
	num := 0
	for sc.Scan() {
		num++
		payload := bytes.TrimSpace(sc.Bytes())
		if len(payload) == 0 {
			continue
		}
		lines = append(lines, line{num: num, payload: append([]byte(nil), payload...)})
	}
	return lines, sc.Err()
}

func describe(err error) string {
	var de *domain.DecodeError
	if errors.As(err, &de) && de.Kind == domain.Malformed {
		return fmt.Sprintf("malformed %s field %s = %s", de.Variant, de.Field, de.Value)
	}
	return err.Error()
}

func checkRanges(p *phase, num int, w domain.Weather) {
	if w.WindDirection >= 360 {
		p.errorf("line %d: wind_direction %d", num, w.WindDirection)
	}
	if w.WindLull > w.WindAvg || w.WindAvg > w.WindGust {
		p.errorf("line %d: wind lull/avg/gust %v/%v/%v not ordered", num, w.WindLull, w.WindAvg, w.WindGust)
	}
	if w.RelativeHumidity < 0 || w.RelativeHumidity > 100 {
		p.errorf("line %d: relative_humidity %v", num, w.RelativeHumidity)
	}
	if w.AirTemp < -90 || w.AirTemp > 60 {
		p.errorf("line %d: air_temp %v", num, w.AirTemp)
	}
	if w.BatteryVoltage <= 0 {
		p.errorf("line %d: battery_voltage %v", num, w.BatteryVoltage)
	}
	if w.ReportInterval == 0 {
		p.errorf("line %d: report_interval 0", num)
	}
}

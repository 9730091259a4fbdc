// Command simulate broadcasts synthetic Tempest hub datagrams over UDP so the
// listener can be exercised without a station on the network.
//
// Usage:
//
//	go run ./cmd/simulate \
//	  -addr 127.0.0.1:50222 \
//	  -interval 3s \
//	  -obs-every 20 \
//	  -count 100
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	addr := flag.String("addr", "127.0.0.1:50222", "listener UDP address")
	interval := flag.Duration("interval", 3*time.Second, "time between rapid_wind datagrams")
	obsEvery := flag.Int("obs-every", 20, "send an observation and device status every N ticks")
	count := flag.Int("count", 0, "stop after N ticks (0 runs until interrupted)")
	garbage := flag.Float64("garbage", 0, "probability of sending an undecodable datagram per tick")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *interval <= 0 || *obsEvery <= 0 {
		flag.Usage()
		return fmt.Errorf("-interval and -obs-every must be positive")
	}

	conn, err := net.Dial("udp", *addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", *addr, err)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	st := newStation(*seed, clock.Now())
	ticker := clock.NewTicker(*interval)
	defer ticker.Stop()

	log.Printf("broadcasting to %s every %s", *addr, *interval)
	for tick := 0; *count == 0 || tick < *count; tick++ {
		for _, d := range st.datagrams(clock.Now(), tick, *obsEvery, *garbage) {
			if _, err := conn.Write(d); err != nil {
				log.Printf("send: %v", err)
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
		}
	}
	log.Printf("sent %d ticks", *count)
	return nil
}

// station produces a plausible stream of hub broadcasts.
type station struct {
	serial    string
	hub       string
	rng       *rand.Rand
	bootedAt  time.Time
	seq       uint64
	windDir   float64
	windSpeed float64
}

func newStation(seed uint64, now time.Time) *station {
	return &station{
		serial:    "ST-00000512",
		hub:       "HB-00013030",
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		bootedAt:  now,
		windDir:   180,
		windSpeed: 2,
	}
}

// datagrams returns the payloads to send for one tick.
func (s *station) datagrams(now time.Time, tick, obsEvery int, garbage float64) [][]byte {
	s.windSpeed = math.Max(0, s.windSpeed+s.rng.NormFloat64()*0.3)
	s.windDir = math.Mod(s.windDir+s.rng.NormFloat64()*10+360, 360)

	out := [][]byte{s.rapidWind(now)}
	if tick%obsEvery == 0 {
		out = append(out, s.observation(now), s.deviceStatus(now), s.hubStatus(now))
	}
	if s.rng.Float64() < 0.01 {
		out = append(out, s.strike(now))
	}
	if garbage > 0 && s.rng.Float64() < garbage {
		out = append(out, []byte(`{"type":"obs_st","obs":[[`))
	}
	return out
}

func (s *station) rapidWind(now time.Time) []byte {
	return mustJSON(map[string]any{
		"serial_number": s.serial,
		"type":          "rapid_wind",
		"hub_sn":        s.hub,
		"ob":            []any{now.Unix(), round(s.windSpeed, 2), int(s.windDir)},
	})
}

func (s *station) observation(now time.Time) []byte {
	lull := math.Max(0, s.windSpeed-0.8)
	gust := s.windSpeed + 1.5
	temp := 15 + 8*math.Sin(float64(now.Hour())/24*2*math.Pi) + s.rng.NormFloat64()*0.2
	return mustJSON(map[string]any{
		"serial_number": s.serial,
		"type":          "obs_st",
		"hub_sn":        s.hub,
		"obs": [][]any{{
			now.Unix(),
			round(lull, 2),
			round(s.windSpeed, 2),
			round(gust, 2),
			int(s.windDir),
			3,
			round(1013+s.rng.NormFloat64()*2, 2),
			round(temp, 2),
			round(55+s.rng.NormFloat64()*5, 2),
			s.rng.IntN(50000),
			round(s.rng.Float64()*5, 2),
			s.rng.IntN(800),
			0.0,
			0,
			0,
			0,
			round(2.4+s.rng.Float64()*0.2, 3),
			1,
		}},
		"firmware_revision": 129,
	})
}

func (s *station) deviceStatus(now time.Time) []byte {
	return mustJSON(map[string]any{
		"serial_number":     s.serial,
		"type":              "device_status",
		"hub_sn":            s.hub,
		"timestamp":         now.Unix(),
		"uptime":            int64(now.Sub(s.bootedAt).Seconds()),
		"voltage":           2.41,
		"firmware_revision": 129,
		"rssi":              -60 - s.rng.IntN(20),
		"hub_rssi":          -55 - s.rng.IntN(20),
		"sensor_status":     0,
		"debug":             0,
	})
}

func (s *station) hubStatus(now time.Time) []byte {
	s.seq++
	return mustJSON(map[string]any{
		"serial_number":     s.hub,
		"type":              "hub_status",
		"firmware_revision": "171",
		"uptime":            int64(now.Sub(s.bootedAt).Seconds()),
		"rssi":              -50,
		"timestamp":         now.Unix(),
		"reset_flags":       "BOR,PIN,POR",
		"seq":               s.seq,
		"radio_stats":       []int{25, 1, 0, 3, 16464},
		"mqtt_stats":        []int{1, 0},
	})
}

func (s *station) strike(now time.Time) []byte {
	return mustJSON(map[string]any{
		"serial_number": s.serial,
		"type":          "evt_strike",
		"hub_sn":        s.hub,
		"evt":           []any{now.Unix(), 1 + s.rng.IntN(40), s.rng.IntN(10000)},
	})
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal datagram: %v\n", err)
		os.Exit(1)
	}
	return data
}

package adapters

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/geofleet/svc-location-tracker/internal/adapters/repos"
	"github.com/geofleet/svc-location-tracker/internal/config"
	"github.com/geofleet/svc-location-tracker/internal/domain"
	"github.com/geofleet/svc-location-tracker/internal/infrastructure"
	"github.com/geofleet/svc-location-tracker/internal/shared/backoff"
)

const (
	gpsdWatchCommand = `?WATCH={"enable":true,"json":true}` + "\n"

	// TPV mode values per the gpsd protocol: 2 is a 2D fix, 3 a 3D fix.
	gpsdMode2D = 2
	gpsdMode3D = 3
)

type (
	// gpsdReport is the subset of the gpsd JSON stream the tracker consumes.
	// Only TPV (time-position-velocity) and SKY reports are inspected.
	gpsdReport struct {
		Class string  `json:"class"`
		Mode  int     `json:"mode"`
		Time  string  `json:"time"`
		Lat   float64 `json:"lat"`
		Lon   float64 `json:"lon"`
		Alt   float64 `json:"alt"`
		Speed float64 `json:"speed"`
		Track float64 `json:"track"`
		EPH   float64 `json:"eph"`

		Satellites []struct {
			Used bool `json:"used"`
		} `json:"satellites"`
	}

	// GpsdProvider reads position fixes from a gpsd daemon over TCP. A reader
	// goroutine keeps the most recent fix; Current never blocks on the socket.
	GpsdProvider struct {
		cfg     config.TrackingConfig
		logger  infrastructure.Logger
		backoff backoff.Strategy

		mu        sync.RWMutex
		latest    *domain.LocationFix
		usedSats  int
		conn      net.Conn
		closed    chan struct{}
		closeOnce sync.Once
	}
)

func NewGpsdProvider(cfg config.TrackingConfig, backoffStrategy backoff.Strategy, logger infrastructure.Logger) *GpsdProvider {
	p := &GpsdProvider{
		cfg:     cfg,
		logger:  logger,
		backoff: backoffStrategy,
		closed:  make(chan struct{}),
	}

	go p.readLoop()

	return p
}

// Current returns the most recent fix gpsd produced, or
// domain.ErrFixUnavailable when no usable TPV report has arrived yet.
func (p *GpsdProvider) Current(_ context.Context) (*domain.LocationFix, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.latest == nil {
		return nil, domain.ErrFixUnavailable
	}

	fix := *p.latest

	return &fix, nil
}

func (p *GpsdProvider) Close() error {
	p.closeOnce.Do(func() {
		close(p.closed)

		p.mu.Lock()
		if p.conn != nil {
			p.conn.Close()
		}
		p.mu.Unlock()
	})

	return nil
}

// readLoop dials gpsd, streams reports and reconnects with backoff on
// failure until the provider is closed.
func (p *GpsdProvider) readLoop() {
	retries := 0

	for {
		select {
		case <-p.closed:
			return
		default:
		}

		if err := p.streamReports(); err != nil {
			delay := p.backoff.Backoff(retries)
			retries++

			p.logger.Warn().
				Err(err).
				Str("addr", p.cfg.GpsdAddr).
				Dur("retry_in", delay).
				Msg("gpsd connection lost, reconnecting")

			select {
			case <-p.closed:
				return
			case <-time.After(delay):
			}

			continue
		}

		retries = 0
	}
}

func (p *GpsdProvider) streamReports() error {
	conn, err := net.DialTimeout("tcp", p.cfg.GpsdAddr, p.cfg.GpsdDialTimeout)
	if err != nil {
		return fmt.Errorf("failed to dial gpsd: %w", err)
	}

	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()

	if _, err := conn.Write([]byte(gpsdWatchCommand)); err != nil {
		conn.Close()

		return fmt.Errorf("failed to enable gpsd watch: %w", err)
	}

	p.logger.Info().Str("addr", p.cfg.GpsdAddr).Msg("connected to gpsd")

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		select {
		case <-p.closed:
			conn.Close()

			return nil
		default:
		}

		p.handleReport(scanner.Bytes())
	}

	conn.Close()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("gpsd stream error: %w", err)
	}

	return fmt.Errorf("gpsd closed the connection")
}

func (p *GpsdProvider) handleReport(line []byte) {
	var report gpsdReport
	if err := json.Unmarshal(line, &report); err != nil {
		p.logger.Debug().Err(err).Msg("skipping malformed gpsd report")

		return
	}

	switch report.Class {
	case "SKY":
		used := 0
		for _, sat := range report.Satellites {
			if sat.Used {
				used++
			}
		}

		p.mu.Lock()
		p.usedSats = used
		p.mu.Unlock()

	case "TPV":
		if report.Mode != gpsdMode2D && report.Mode != gpsdMode3D {
			return
		}

		recordedAt := time.Now().UTC()
		if parsed, err := time.Parse(time.RFC3339, report.Time); err == nil {
			recordedAt = parsed.UTC()
		}

		p.mu.Lock()
		p.latest = &domain.LocationFix{
			ID:         repos.NewFixID(p.cfg.DeviceID, recordedAt),
			DeviceID:   p.cfg.DeviceID,
			Latitude:   report.Lat,
			Longitude:  report.Lon,
			Altitude:   report.Alt,
			Speed:      report.Speed,
			Heading:    report.Track,
			Accuracy:   report.EPH,
			Satellites: p.usedSats,
			Source:     domain.FixSourceGpsd,
			RecordedAt: recordedAt,
		}
		p.mu.Unlock()
	}
}

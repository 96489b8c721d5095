package monitoring

import (
	"fmt"
	"time"

	"github.com/koloni/koloni-be/internal/services"
	"github.com/koloni/koloni-be/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// highCpuThreshold is the percentage above which a warn event is raised.
const highCpuThreshold = 90.0

// highCpuAlertCooldown spaces repeated alerts apart.
const highCpuAlertCooldown = 5 * time.Minute

// SystemStats is a point-in-time snapshot of host resource usage.
type SystemStats struct {
	CPUPercent    float64   `json:"cpuPercent"`
	MemoryPercent float64   `json:"memoryPercent"`
	MemoryUsedMB  uint64    `json:"memoryUsedMb"`
	MemoryTotalMB uint64    `json:"memoryTotalMb"`
	SampledAt     time.Time `json:"sampledAt"`
}

// StatUpdater periodically samples host stats, pushes them to dashboard
// clients and raises an event when CPU stays pinned.
type StatUpdater struct {
	hub          *websocket.Hub
	eventSvc     services.EventServiceProvider
	interval     time.Duration
	ticker       *time.Ticker
	done         chan bool
	lastCpuAlert time.Time
}

// NewStatUpdater creates a new StatUpdater.
func NewStatUpdater(hub *websocket.Hub, eventSvc services.EventServiceProvider, interval time.Duration) *StatUpdater {
	return &StatUpdater{
		hub:      hub,
		eventSvc: eventSvc,
		interval: interval,
		done:     make(chan bool),
	}
}

// Run starts the periodic updates.
func (su *StatUpdater) Run() {
	log.Info().Msg("Starting background stat updater...")
	su.ticker = time.NewTicker(su.interval)
	defer su.ticker.Stop()

	// Run once immediately on start
	su.sampleAndPublish()

	for {
		select {
		case <-su.done:
			log.Info().Msg("Stopping background stat updater.")
			return
		case <-su.ticker.C:
			su.sampleAndPublish()
		}
	}
}

// Stop halts the periodic updates.
func (su *StatUpdater) Stop() {
	su.done <- true
}

// Sample collects one host stats snapshot.
func Sample() (SystemStats, error) {
	percents, err := cpu.Percent(0, false)
	if err != nil {
		return SystemStats{}, fmt.Errorf("sample cpu: %w", err)
	}
	var cpuPercent float64
	if len(percents) > 0 {
		cpuPercent = percents[0]
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return SystemStats{}, fmt.Errorf("sample memory: %w", err)
	}

	return SystemStats{
		CPUPercent:    cpuPercent,
		MemoryPercent: vm.UsedPercent,
		MemoryUsedMB:  vm.Used / 1024 / 1024,
		MemoryTotalMB: vm.Total / 1024 / 1024,
		SampledAt:     time.Now().UTC(),
	}, nil
}

// sampleAndPublish collects a snapshot, broadcasts it and checks alerting
// thresholds.
func (su *StatUpdater) sampleAndPublish() {
	stats, err := Sample()
	if err != nil {
		log.Error().Err(err).Msg("StatUpdater: failed to sample host stats")
		return
	}

	su.hub.BroadcastAll(websocket.NewStatsMessage(stats))

	if stats.CPUPercent > highCpuThreshold && time.Since(su.lastCpuAlert) > highCpuAlertCooldown {
		su.lastCpuAlert = time.Now()
		su.eventSvc.CreateEvent("system.alert.cpu", "warn",
			fmt.Sprintf("Host CPU usage at %.1f%%.", stats.CPUPercent), nil)
	}
}

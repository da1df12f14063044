// Package system holds host-level concerns: resource limits, a runtime
// snapshot for diagnostics, and workspace scanning helpers.
package system

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file limit. Batch runs open one
// project, several telemetry files and several artifact files per job.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Warn().Err(err).Msg("could not read open-file limit")
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Warn().Err(err).Msg("could not raise open-file limit")
		return
	}
	log.Debug().Uint64("limit", rLimit.Cur).Msg("open-file limit raised")
}

// Snapshot is a point-in-time view of the host, attached to batch reports so
// path-computation timings can be read in context.
type Snapshot struct {
	Hostname    string
	Platform    string
	CPUModel    string
	CPUCores    int
	LoadAvg1    float64
	MemoryTotal uint64
	MemoryUsed  uint64
	GoVersion   string
	TakenAt     time.Time
}

// TakeSnapshot collects host information. Probes that fail leave their
// fields zeroed rather than failing the snapshot.
func TakeSnapshot() Snapshot {
	snap := Snapshot{
		GoVersion: runtime.Version(),
		TakenAt:   time.Now(),
	}

	if info, err := host.Info(); err == nil {
		snap.Hostname = info.Hostname
		snap.Platform = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
	}
	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		snap.CPUModel = infos[0].ModelName
	}
	if n, err := cpu.Counts(true); err == nil {
		snap.CPUCores = n
	}
	if avg, err := load.Avg(); err == nil {
		snap.LoadAvg1 = avg.Load1
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.MemoryTotal = vm.Total
		snap.MemoryUsed = vm.Used
	}
	return snap
}

// Report formats the snapshot for terminal output.
func (s Snapshot) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "host:    %s (%s)\n", s.Hostname, s.Platform)
	fmt.Fprintf(&b, "cpu:     %s, %d cores, load %.2f\n", s.CPUModel, s.CPUCores, s.LoadAvg1)
	fmt.Fprintf(&b, "memory:  %s / %s\n", formatBytes(s.MemoryUsed), formatBytes(s.MemoryTotal))
	fmt.Fprintf(&b, "runtime: %s\n", s.GoVersion)
	return b.String()
}

func formatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// FindLatestProject returns the most recently modified project file in dir.
func FindLatestProject(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latest string
	var latestTime time.Time
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latest = filepath.Join(dir, e.Name())
		}
	}

	if latest == "" {
		return "", fmt.Errorf("no project files found in %s", dir)
	}
	return latest, nil
}

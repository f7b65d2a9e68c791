package workers

import (
	"context"
	"log/slog"
	"os"
	"safe-space/contract"
	"sync"
	"time"

	"github.com/shirou/gopsutil/process"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// StatusSetter receives serving status changes, typically a grpc health.Server.
type StatusSetter interface {
	SetServingStatus(service string, servingStatus healthpb.HealthCheckResponse_ServingStatus)
}

// HealthSnapshot is the latest observation of the process and its store.
type HealthSnapshot struct {
	Serving    bool      `json:"serving"`
	Error      string    `json:"error,omitempty"`
	Pid        int32     `json:"pid"`
	RAMBytes   uint64    `json:"ramBytes"`
	CPUPercent float64   `json:"cpuPercent"`
	CheckedAt  time.Time `json:"checkedAt"`
}

// HealthWorker probes the message store on a fixed cadence and publishes the
// result to the gRPC health service. Process memory and CPU are sampled on
// the same tick.
type HealthWorker struct {
	log      *slog.Logger
	store    contract.Pinger
	status   StatusSetter
	service  string
	interval time.Duration

	mu     sync.RWMutex
	latest HealthSnapshot
}

func NewHealthWorker(log *slog.Logger, store contract.Pinger, status StatusSetter, service string, interval time.Duration) *HealthWorker {
	return &HealthWorker{
		log:      log,
		store:    store,
		status:   status,
		service:  service,
		interval: interval,
	}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	w.log.Info("Starting health worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	w.check(p)
	for {
		select {
		case <-ctx.Done():
			w.status.SetServingStatus(w.service, healthpb.HealthCheckResponse_NOT_SERVING)
			return nil
		case <-ticker.C:
			w.check(p)
		}
	}
}

// Latest returns the most recent snapshot.
func (w *HealthWorker) Latest() HealthSnapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest
}

func (w *HealthWorker) check(p *process.Process) {
	snapshot := HealthSnapshot{Serving: true, Pid: p.Pid, CheckedAt: time.Now().UTC()}
	if err := w.store.Ping(); err != nil {
		snapshot.Serving = false
		snapshot.Error = err.Error()
	}

	if memInfo, err := p.MemoryInfo(); err == nil {
		snapshot.RAMBytes = memInfo.RSS
	} else {
		w.log.Debug("Failed to collect memory stats", "error", err)
	}
	if cpu, err := p.CPUPercent(); err == nil {
		snapshot.CPUPercent = cpu
	} else {
		w.log.Debug("Failed to collect cpu stats", "error", err)
	}

	w.mu.Lock()
	previous := w.latest
	w.latest = snapshot
	w.mu.Unlock()

	if snapshot.Serving {
		w.status.SetServingStatus(w.service, healthpb.HealthCheckResponse_SERVING)
	} else {
		w.status.SetServingStatus(w.service, healthpb.HealthCheckResponse_NOT_SERVING)
	}
	if previous.CheckedAt.IsZero() || previous.Serving != snapshot.Serving {
		w.log.Info("Store health changed", "serving", snapshot.Serving, "error", snapshot.Error)
	}
}

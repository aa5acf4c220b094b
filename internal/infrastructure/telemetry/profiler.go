package telemetry

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/grafana/pyroscope-go"
	"go.uber.org/zap"
)

type ProfilerConfig struct {
	Enabled           bool
	ServerAddress     string
	ApplicationName   string
	BasicAuthUser     string
	BasicAuthPassword string
	// ProfileTypes falls back to DefaultProfileTypes when empty.
	ProfileTypes []pyroscope.ProfileType
}

var DefaultProfileTypes = []pyroscope.ProfileType{
	pyroscope.ProfileCPU,
	pyroscope.ProfileAllocObjects,
	pyroscope.ProfileAllocSpace,
	pyroscope.ProfileInuseObjects,
	pyroscope.ProfileInuseSpace,
	pyroscope.ProfileGoroutines,
}

// Profiler pushes continuous profiles to a pyroscope server. The zero
// profiler is disabled.
type Profiler struct {
	sdk      *pyroscope.Profiler
	log      *zap.Logger
	stopOnce sync.Once
	stopErr  error
}

func NewProfiler(cfg ProfilerConfig, log *zap.Logger) (*Profiler, error) {
	if !cfg.Enabled {
		log.Info("Continuous profiling disabled")
		return &Profiler{log: log}, nil
	}
	switch {
	case cfg.ServerAddress == "":
		return nil, errors.New("profiler server address is required when profiling is enabled")
	case cfg.ApplicationName == "":
		return nil, errors.New("profiler application name is required when profiling is enabled")
	}

	types := cfg.ProfileTypes
	if len(types) == 0 {
		types = DefaultProfileTypes
	}
	sdk, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.ApplicationName,
		ServerAddress:     cfg.ServerAddress,
		BasicAuthUser:     cfg.BasicAuthUser,
		BasicAuthPassword: cfg.BasicAuthPassword,
		Logger:            newPyroscopeLogger(log),
		Tags:              hostTags(),
		ProfileTypes:      types,
	})
	if err != nil {
		return nil, fmt.Errorf("start pyroscope profiler: %w", err)
	}

	log.Info("Pyroscope profiler started",
		zap.String("server_address", cfg.ServerAddress),
		zap.String("application_name", cfg.ApplicationName),
		zap.Int("profile_types", len(types)),
	)
	return &Profiler{sdk: sdk, log: log}, nil
}

// hostTags identifies the replica by HOSTNAME and POD_NAME when set.
func hostTags() map[string]string {
	tags := make(map[string]string, 2)
	for tag, env := range map[string]string{"hostname": "HOSTNAME", "pod": "POD_NAME"} {
		if v := os.Getenv(env); v != "" {
			tags[tag] = v
		}
	}
	return tags
}

// Stop uploads what is buffered and ends profiling. Later calls return the
// first result. The SDK takes no context, so a dead server can stall it.
func (p *Profiler) Stop() error {
	p.stopOnce.Do(func() {
		if p.sdk == nil {
			return
		}
		if err := p.sdk.Stop(); err != nil {
			p.stopErr = fmt.Errorf("stop pyroscope profiler: %w", err)
			return
		}
		p.log.Info("Pyroscope profiler stopped")
	})
	return p.stopErr
}

func (p *Profiler) IsEnabled() bool { return p.sdk != nil }

// pyroscopeLogger satisfies pyroscope.Logger with a named sugared zap logger.
type pyroscopeLogger struct{ *zap.SugaredLogger }

func newPyroscopeLogger(log *zap.Logger) pyroscope.Logger {
	return pyroscopeLogger{log.Named("pyroscope").Sugar()}
}

package morphology

import (
	"context"
	"fmt"
	"runtime"

	"github.com/charmbracelet/log"
)

// Connectivity selects which neighbor offsets count as adjacent.
type Connectivity int

const (
	// FaceConnected uses the 2·N neighbors one unit step along a single axis.
	FaceConnected Connectivity = iota
	// FullyConnected uses all 3^N−1 neighbors in the unit cube.
	FullyConnected
)

func (c Connectivity) String() string {
	switch c {
	case FaceConnected:
		return "face"
	case FullyConnected:
		return "full"
	default:
		return fmt.Sprintf("Connectivity(%d)", int(c))
	}
}

// ParseConnectivity maps "face" or "full" to a Connectivity.
func ParseConnectivity(s string) (Connectivity, error) {
	switch s {
	case "", "face":
		return FaceConnected, nil
	case "full":
		return FullyConnected, nil
	default:
		return FaceConnected, fmt.Errorf("unknown connectivity %q (want face or full)", s)
	}
}

// Options configures a geodesic erosion request.
type Options struct {
	// RunOneIteration performs a single geodesic erosion step instead of
	// iterating to the fixed point (reconstruction by erosion).
	RunOneIteration bool

	// Connectivity picks the elementary structuring element.
	Connectivity Connectivity

	// Workers bounds the number of concurrent sub-region workers.
	// Zero or negative means runtime.NumCPU().
	Workers int

	// MaxIterations caps the convergence loop. Zero means no cap.
	MaxIterations int

	// CheckPreconditions verifies marker >= mask before computing and
	// fails with a PreconditionError on the first violation.
	CheckPreconditions bool

	// Logger receives progress messages. When nil the logger attached to
	// the request context is used.
	Logger *log.Logger
}

// DefaultOptions returns convergence mode, face connectivity, one worker per
// CPU and no iteration cap.
func DefaultOptions() Options {
	return Options{
		Connectivity: FaceConnected,
		Workers:      runtime.NumCPU(),
	}
}

func (o Options) logger(ctx context.Context) *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return LoggerFromContext(ctx)
}

type ctxKey int

const loggerKey ctxKey = 0

// WithLogger returns a copy of ctx carrying l.
func WithLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// LoggerFromContext returns the logger attached to ctx, or log.Default().
func LoggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so every random choice leaves an audit trail.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that draws from src and logs each draw to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn draws from the underlying source and logs it like Choose. Roller
// satisfies Source, so it can stand in wherever a plain Source is taken.
func (r *Roller) Intn(n int) int {
	return r.Choose("draw", n)
}

// Choose draws an index in [0, n) and logs it at debug level under label.
//
// Precondition: n > 0.
func (r *Roller) Choose(label string, n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("random choice",
		zap.String("label", label),
		zap.Int("options", n),
		zap.Int("result", v),
	)
	return v
}

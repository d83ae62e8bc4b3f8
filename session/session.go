package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-ephys/core"
)

// Session bundles the metadata of one recording folder.
type Session struct {
	Recinfo  *Recinfo
	Behavior *BehaviorEpochs
	logger   *zap.Logger
}

// Open loads the recording description and behavioral epochs found in
// basepath.
func Open(basepath string, opts ...Option) (*Session, error) {
	o := applyOptions(opts)

	ri, err := OpenRecinfo(basepath, opts...)
	if err != nil {
		return nil, err
	}

	be, err := NewBehaviorEpochs(ri.FilePrefix, opts...)
	if err != nil {
		return nil, fmt.Errorf("behavior epochs: %w", err)
	}

	o.logger.Info("session opened",
		zap.String("session", ri.SessionName),
		zap.Int("periods", be.Epoch().Len()))

	return &Session{Recinfo: ri, Behavior: be, logger: o.logger}, nil
}

// PeriodLFP reads the LFP of channels during a named behavioral period.
func (s *Session) PeriodLFP(period string, channels []int) (*core.Signal, error) {
	iv, ok := s.Behavior.Period(period)
	if !ok {
		return nil, fmt.Errorf("%w: no period %q", ErrPeriod, period)
	}

	return s.Recinfo.LFP(channels, iv.Start, iv.Stop)
}

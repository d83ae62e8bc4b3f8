package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-ephys/core"
	"github.com/cwbudde/algo-ephys/plot"
	"github.com/cwbudde/algo-ephys/session"
)

// traceSource selects a single LFP trace: a session channel, an EDF
// signal or a .npy vector at the configured LFP rate.
type traceSource struct {
	channel     int
	start, stop float64
	npy         string
	edf         string
	label       string
}

func (s *traceSource) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&s.channel, "channel", 0, "Channel to read from the session")
	cmd.Flags().Float64Var(&s.start, "start", 0, "Start time in seconds")
	cmd.Flags().Float64Var(&s.stop, "stop", 0, "Stop time in seconds (0: end of file)")
	cmd.Flags().StringVar(&s.npy, "npy", "", "Read the trace from a .npy vector instead of the session")
	cmd.Flags().StringVar(&s.edf, "edf", "", "Read the trace from an EDF file instead of the session")
	cmd.Flags().StringVar(&s.label, "label", "", "EDF signal label (default: first signal)")
}

// load returns the trace as a one-channel signal.
func (s *traceSource) load() (*core.Signal, error) {
	switch {
	case s.npy != "":
		x, err := core.LoadVector(s.npy)
		if err != nil {
			return nil, err
		}

		sig, err := core.NewSignal([][]float64{x}, cfg.LFPRate)
		if err != nil {
			return nil, err
		}

		return s.slice(sig)

	case s.edf != "":
		var labels []string
		if s.label != "" {
			labels = []string{s.label}
		}

		rec, err := session.LoadEDF(s.edf, labels, session.WithLogger(logger))
		if err != nil {
			return nil, err
		}

		sig, err := rec.Signal.ChannelSlice([]int{rec.Signal.ChannelIDs[0]})
		if err != nil {
			return nil, err
		}

		return s.slice(sig)

	default:
		ses, err := session.Open(basepath, session.WithLogger(logger))
		if err != nil {
			return nil, err
		}

		return ses.Recinfo.LFP([]int{s.channel}, s.start, s.stop)
	}
}

func (s *traceSource) slice(sig *core.Signal) (*core.Signal, error) {
	if s.stop <= s.start && s.start == 0 {
		return sig, nil
	}

	stop := s.stop
	if stop <= s.start {
		stop = sig.TStop()
	}

	return sig.TimeSlice(s.start, stop)
}

// parsePair reads "a,b" into two floats.
func parsePair(s string) ([2]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return [2]float64{}, fmt.Errorf("want two comma-separated values, got %q", s)
	}

	var out [2]float64

	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return [2]float64{}, fmt.Errorf("%q: %w", s, err)
		}

		out[i] = v
	}

	return out, nil
}

var errNoColormap = errors.New("unknown colormap")

func colormap() (plot.Colormap, error) {
	c, ok := plot.ColormapByName(cfg.Colormap)
	if !ok {
		return plot.Colormap{}, fmt.Errorf("%w %q", errNoColormap, cfg.Colormap)
	}

	return c, nil
}

// savePlot writes panels to path in a single column.
func savePlot(path, caption string, panels ...plot.Panel) error {
	fig, err := plot.NewFig(len(panels), 1,
		plot.WithSize(8, 3*float64(len(panels))),
		plot.WithCaption(caption),
		plot.WithScript("ephys"))
	if err != nil {
		return err
	}

	for i, p := range panels {
		if err := fig.Add(i, 0, p); err != nil {
			return err
		}
	}

	if err := fig.Save(path); err != nil {
		return fmt.Errorf("save figure: %w", err)
	}

	logger.Info("figure saved", zap.String("path", path), zap.Int("panels", len(panels)))

	return nil
}

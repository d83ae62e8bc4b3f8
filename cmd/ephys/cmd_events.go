package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-ephys/analysis/events"
	"github.com/cwbudde/algo-ephys/core"
	"github.com/cwbudde/algo-ephys/stats/desc"
)

var (
	pbeRate   string
	pbeSpikes string
	pbeBin    float64
	pbeSave   string
	pbeXLSX   string
	pbeOff    string
)

var pbeCmd = &cobra.Command{
	Use:   "pbe",
	Short: "Detect population burst events from a population rate",
	Long: `Detects population burst events in a binned population rate, given
either directly (--rate, a .npy vector with --bin spacing) or as pooled
spike times in seconds (--spikes, binned at --bin).

With --off start,stop it instead reports local-sleep OFF periods in that
window.`,
	Args: cobra.NoArgs,
	RunE: runPBE,
}

func init() {
	pbeCmd.Flags().StringVar(&pbeRate, "rate", "", "Population rate .npy vector")
	pbeCmd.Flags().StringVar(&pbeSpikes, "spikes", "", "Pooled spike times .npy vector (s)")
	pbeCmd.Flags().Float64Var(&pbeBin, "bin", 0.001, "Rate bin size in seconds")
	pbeCmd.Flags().StringVar(&pbeSave, "save", "", "Save the events as JSON")
	pbeCmd.Flags().StringVar(&pbeXLSX, "xlsx", "", "Export the events to a spreadsheet")
	pbeCmd.Flags().StringVar(&pbeOff, "off", "", "Detect OFF periods inside start,stop instead")
}

// populationRate bins spike times at bin seconds, or wraps a rate vector.
func populationRate() (*core.MUA, error) {
	if pbeBin <= 0 {
		return nil, fmt.Errorf("--bin must be > 0")
	}

	switch {
	case pbeRate != "":
		rate, err := core.LoadVector(pbeRate)
		if err != nil {
			return nil, err
		}

		tm := make([]float64, len(rate))
		for i := range tm {
			tm[i] = float64(i) * pbeBin
		}

		return &core.MUA{Time: tm, Rate: rate}, nil

	case pbeSpikes != "":
		spikes, err := core.LoadVector(pbeSpikes)
		if err != nil {
			return nil, err
		}

		if len(spikes) == 0 {
			return nil, fmt.Errorf("%s: no spikes", pbeSpikes)
		}

		edges := desc.ArangeEdges(0, slices.Max(spikes)+pbeBin, pbeBin)

		counts, err := desc.Histogram(spikes, edges)
		if err != nil {
			return nil, err
		}

		mua := &core.MUA{Time: edges[:len(counts)], Rate: make([]float64, len(counts))}
		for i, c := range counts {
			mua.Rate[i] = float64(c) / pbeBin
		}

		return mua, nil
	}

	return nil, fmt.Errorf("give --rate or --spikes")
}

func runPBE(cmd *cobra.Command, args []string) error {
	mua, err := populationRate()
	if err != nil {
		return err
	}

	var ep *core.Epoch

	if pbeOff != "" {
		win, err := parsePair(pbeOff)
		if err != nil {
			return err
		}

		ep, err = events.DetectLocalSleep(mua, win[0], win[1])
		if err != nil {
			return err
		}
	} else {
		ep, err = events.DetectPBE(mua, cfg.PBEParams())
		if err != nil {
			return err
		}
	}

	logger.Info("events detected", zap.Int("count", ep.Len()), zap.Int("bins", mua.Len()))
	fmt.Fprint(cmd.OutOrStdout(), ep)

	if pbeSave != "" {
		if err := ep.Save(pbeSave, core.WithLogger(logger)); err != nil {
			return err
		}
	}

	if pbeXLSX != "" {
		if err := ep.WriteXLSX(pbeXLSX); err != nil {
			return err
		}
	}

	return nil
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ephys/analysis/oscillation"
	"github.com/cwbudde/algo-ephys/plot"
	"github.com/cwbudde/algo-ephys/stats/desc"
)

var (
	pacSrc  traceSource
	pacComo bool
	pacPlot string

	thetaSrc    traceSource
	thetaMethod string
	thetaPlot   string
	thetaWindow float64
)

var pacCmd = &cobra.Command{
	Use:   "pac",
	Short: "Phase-amplitude coupling (Tort modulation index)",
	Args:  cobra.NoArgs,
	RunE:  runPAC,
}

var thetaCmd = &cobra.Command{
	Use:   "theta",
	Short: "Cycle-by-cycle theta parameters",
	Args:  cobra.NoArgs,
	RunE:  runTheta,
}

func init() {
	pacSrc.register(pacCmd)
	pacCmd.Flags().BoolVar(&pacComo, "comodulogram", false, "Also scan 2-14 Hz phase against 20-140 Hz amplitude")
	pacCmd.Flags().StringVar(&pacPlot, "plot", "", "Write a PAC figure to this PNG")

	thetaSrc.register(thetaCmd)
	thetaCmd.Flags().StringVar(&thetaMethod, "method", "hilbert", "Phase method: hilbert or waveshape")
	thetaCmd.Flags().StringVar(&thetaPlot, "plot", "", "Write a sanity figure to this PNG")
	thetaCmd.Flags().Float64Var(&thetaWindow, "plot-window", 2, "Seconds shown in the sanity figure")
}

func runPAC(cmd *cobra.Command, args []string) error {
	sig, err := pacSrc.load()
	if err != nil {
		return err
	}

	p := cfg.PACParams()
	p.Fs = sig.SamplingRate

	res, err := p.Compute(sig.Traces[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "phase %v Hz, amplitude %v Hz, MI %.5f\n", p.PhaseBand, p.AmpBand, res.ModulationIndex)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Phase\tAmplitude\n")

	for i, c := range res.Centers {
		fmt.Fprintf(tw, "%.1f\t%.4f\n", c, res.Amplitude[i])
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	panels := []plot.Panel{plot.PACPanel(res)}

	if pacComo {
		phaseBands, err := oscillation.SlidingBands(2, 14, 2, 1)
		if err != nil {
			return err
		}

		ampBands, err := oscillation.SlidingBands(20, 140, 10, 5)
		if err != nil {
			return err
		}

		como, err := oscillation.ComputeComodulogram(cmd.Context(), sig.Traces[0], p.Fs,
			phaseBands, ampBands, p.BinSize, cfg.Workers)
		if err != nil {
			return err
		}

		best, bp, ba := 0.0, 0, 0

		for i, row := range como.MI {
			for j, v := range row {
				if v > best {
					best, bp, ba = v, i, j
				}
			}
		}

		fmt.Fprintf(out, "comodulogram max MI %.5f at phase %v Hz, amplitude %v Hz\n",
			best, como.PhaseBands[bp], como.AmpBands[ba])

		cmap, err := colormap()
		if err != nil {
			return err
		}

		panels = append(panels, plot.ComodulogramPanel(como, cmap))
	}

	if pacPlot == "" {
		return nil
	}

	return savePlot(pacPlot, "Mean fast-band amplitude per slow-band phase bin.", panels...)
}

func runTheta(cmd *cobra.Command, args []string) error {
	method, err := oscillation.ParseThetaMethod(thetaMethod)
	if err != nil {
		return err
	}

	sig, err := thetaSrc.load()
	if err != nil {
		return err
	}

	raw := sig.Traces[0]

	th, err := oscillation.ThetaParams(raw, sig.SamplingRate, method)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"%s: %d cycles, rise %.1f ms, fall %.1f ms, asymmetry %.3f, peak width %.1f ms, trough width %.1f ms\n",
		method, len(th.Peak),
		1000*desc.Mean(th.RiseTime), 1000*desc.Mean(th.FallTime),
		desc.Mean(th.Asymmetry()),
		1000*desc.Mean(th.PeakWidth()), 1000*desc.Mean(th.TroughWidth()))

	if thetaPlot == "" {
		return nil
	}

	window := min(len(raw), int(thetaWindow*sig.SamplingRate))

	tr, ph, err := plot.ThetaSanityPanels(raw, th, 0, window)
	if err != nil {
		return err
	}

	return savePlot(thetaPlot, fmt.Sprintf("Theta extraction (%s method).", method), tr, ph)
}

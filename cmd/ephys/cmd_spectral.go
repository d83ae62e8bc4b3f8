package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-ephys/analysis/oscillation"
	"github.com/cwbudde/algo-ephys/core"
	"github.com/cwbudde/algo-ephys/dsp/spectrum"
	"github.com/cwbudde/algo-ephys/plot"
	"github.com/cwbudde/algo-ephys/stats/desc"
	"github.com/cwbudde/algo-ephys/stats/spectral"
	"github.com/cwbudde/algo-ephys/stats/trace"
)

var (
	psdSrc        traceSource
	psdWindow     float64
	psdOverlap    float64
	psdMultitaper bool
	psdPlot       string

	sgSrc        traceSource
	sgMultitaper bool
	sgFMax       float64
	sgPlot       string
	sgOut        string

	bicSrc    traceSource
	bicSigma  float64
	bicPlot   string
	bicWindow int
)

var psdCmd = &cobra.Command{
	Use:   "psd",
	Short: "Welch PSD with band powers and spectral descriptors",
	Args:  cobra.NoArgs,
	RunE:  runPSD,
}

var spectrogramCmd = &cobra.Command{
	Use:   "spectrogram",
	Short: "Fourier spectrogram of one channel",
	Args:  cobra.NoArgs,
	RunE:  runSpectrogram,
}

var bicoherenceCmd = &cobra.Command{
	Use:   "bicoherence",
	Short: "Bicoherence of one channel",
	Args:  cobra.NoArgs,
	RunE:  runBicoherence,
}

func init() {
	psdSrc.register(psdCmd)
	psdCmd.Flags().Float64Var(&psdWindow, "window", 10, "Welch segment length in seconds")
	psdCmd.Flags().Float64Var(&psdOverlap, "overlap", 5, "Welch segment overlap in seconds")
	psdCmd.Flags().BoolVar(&psdMultitaper, "multitaper", false, "Average over Slepian tapers (NW=5, K=6)")
	psdCmd.Flags().StringVar(&psdPlot, "plot", "", "Write a PSD figure to this PNG")

	sgSrc.register(spectrogramCmd)
	spectrogramCmd.Flags().BoolVar(&sgMultitaper, "multitaper", false, "Average over Slepian tapers (NW=5, K=6)")
	spectrogramCmd.Flags().Float64Var(&sgFMax, "fmax", 0, "Keep frequencies up to fmax Hz (0: all)")
	spectrogramCmd.Flags().StringVar(&sgPlot, "plot", "", "Write a spectrogram figure to this PNG")
	spectrogramCmd.Flags().StringVar(&sgOut, "out", "", "Save the power matrix (freq x time) as .npy")

	bicSrc.register(bicoherenceCmd)
	bicoherenceCmd.Flags().Float64Var(&bicSigma, "sigma", 2, "Gaussian smoothing of the plotted map in bins")
	bicoherenceCmd.Flags().IntVar(&bicWindow, "window", 0, "STFT window in samples (0: config)")
	bicoherenceCmd.Flags().StringVar(&bicPlot, "plot", "", "Write a bicoherence figure to this PNG")
}

func runPSD(cmd *cobra.Command, args []string) error {
	sig, err := psdSrc.load()
	if err != nil {
		return err
	}

	x := sig.Traces[0]
	fs := sig.SamplingRate
	out := cmd.OutOrStdout()

	sum := trace.Calculate(x, fs)
	fmt.Fprintf(out, "%s samples, %.1f s, mean %.2f, rms %.2f\n",
		humanize.Comma(int64(sum.Length)), sum.Duration, sum.Mean, sum.RMS)

	nperseg := min(len(x), int(psdWindow*fs))
	noverlap := min(nperseg-1, int(psdOverlap*fs))

	var est spectrum.PSD
	if psdMultitaper {
		est, err = spectrum.Multitaper(desc.ZScore(x), fs, nperseg, noverlap, 5, 6)
	} else {
		est, err = spectrum.Welch(desc.ZScore(x), fs, spectrum.WithSegment(nperseg), spectrum.WithOverlap(noverlap))
	}

	if err != nil {
		return err
	}

	st, err := spectral.Calculate(est.Freqs, est.Power)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "peak %.2f Hz, centroid %.2f Hz, spread %.2f Hz, edge95 %.2f Hz, flatness %.3f\n",
		st.PeakFreq, st.Centroid, st.Spread, st.Edge, st.Flatness)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Band\tLow\tHigh\tPower\tRelative\n")

	for _, name := range cfg.BandNames() {
		b := cfg.Bands[name]
		fmt.Fprintf(tw, "%s\t%g\t%g\t%.4g\t%.3f\n", name, b[0], b[1],
			spectrum.BandPower(est.Freqs, est.Power, b[0], b[1]),
			spectral.RelativePower(est.Freqs, est.Power, b))
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	theta, err := cfg.Band("theta")
	if err != nil {
		return err
	}

	delta, err := cfg.Band("delta")
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "theta/delta %.3f\n", spectral.BandRatio(est.Freqs, est.Power, theta, delta))

	if psdPlot == "" {
		return nil
	}

	return savePlot(psdPlot, fmt.Sprintf("Welch PSD of channel %d, %g s segments.", sig.ChannelIDs[0], psdWindow),
		plot.PSDPanel(est.Freqs, [][]float64{est.Power}, nil))
}

func runSpectrogram(cmd *cobra.Command, args []string) error {
	sig, err := sgSrc.load()
	if err != nil {
		return err
	}

	opts := []oscillation.SgOption{
		oscillation.WithWindow(cfg.Spectrogram.Window),
		oscillation.WithOverlap(cfg.Spectrogram.Overlap),
		oscillation.WithSigma(cfg.Spectrogram.Sigma),
	}
	if sgMultitaper {
		opts = append(opts, oscillation.WithMultitaper())
	}

	sg, err := oscillation.FourierSpectrogram(sig, opts...)
	if err != nil {
		return err
	}

	if sgFMax > 0 {
		sg = sg.FreqSlice(0, sgFMax)
	}

	if len(sg.Freqs) == 0 || sg.NTimes() == 0 {
		return fmt.Errorf("spectrogram is empty")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d freqs x %d times, %.3f Hz frame rate, t0 %.3f s\n",
		len(sg.Freqs), sg.NTimes(), sg.SamplingRate, sg.TStart)

	if sgOut != "" {
		if err := core.SaveArray(sgOut, core.SpectrogramMatrix(sg), core.WithLogger(logger)); err != nil {
			return err
		}
	}

	if sgPlot == "" {
		return nil
	}

	cmap, err := colormap()
	if err != nil {
		return err
	}

	return savePlot(sgPlot, "Fourier spectrogram.", plot.SpectrogramPanel(sg, cmap))
}

func runBicoherence(cmd *cobra.Command, args []string) error {
	sig, err := bicSrc.load()
	if err != nil {
		return err
	}

	b := cfg.BicoherenceParams()
	b.Fs = sig.SamplingRate

	if bicWindow > 0 {
		b.Window, b.Overlap = bicWindow, bicWindow/2
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	logger.Info("bicoherence",
		zap.Float64("flow", b.FLow), zap.Float64("fhigh", b.FHigh),
		zap.Int("window", b.Window), zap.Int("workers", b.Workers))

	res, err := b.Compute(ctx, sig.Traces)
	if err != nil {
		return err
	}

	peak, f1, f2 := 0.0, 0.0, 0.0

	for i, row := range res.Bicoher[0] {
		for j, v := range row {
			if j >= i && v > peak {
				peak, f1, f2 = v, res.Freqs[j], res.Freqs[i]
			}
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d freqs, dof %d, significance %.4f, max %.4f at f1=%.2f f2=%.2f Hz\n",
		len(res.Freqs), res.DOF, res.Significance, peak, f1, f2)

	if bicPlot == "" {
		return nil
	}

	cmap, err := colormap()
	if err != nil {
		return err
	}

	panel, err := plot.BicoherencePanel(res, 0, bicSigma, cmap)
	if err != nil {
		return err
	}

	return savePlot(bicPlot, "Bicoherence; values below significance are masked.", panel)
}

package main

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ephys/dsp/window"
)

type windowEntry struct {
	name     string
	typ      window.Type
	hasAlpha bool
	defAlpha float64
}

var windowRegistry = []windowEntry{
	{"boxcar", window.TypeRectangular, false, 0},
	{"hann", window.TypeHann, false, 0},
	{"hamming", window.TypeHamming, false, 0},
	{"blackman", window.TypeBlackman, false, 0},
	{"tukey", window.TypeTukey, true, 0.25},
	{"gaussian", window.TypeGaussian, true, 0},
}

var (
	winSize     int
	winAlpha    float64
	winPeriodic bool
	winList     bool
	winNW       float64
	winTapers   int
)

var windowsCmd = &cobra.Command{
	Use:   "windows [window-name ...]",
	Short: "Spectral properties of analysis windows and Slepian tapers",
	Long: `Prints coherent gain, ENBW, 3 dB bandwidth, first null, highest sidelobe
and scalloping loss of the windows used by the spectral estimators.
Without arguments every window is shown. --tapers K adds the first K
Slepian tapers with time-halfbandwidth --nw.`,
	RunE: runWindows,
}

func init() {
	windowsCmd.Flags().IntVar(&winSize, "size", 1024, "Window length in samples")
	windowsCmd.Flags().Float64Var(&winAlpha, "alpha", math.NaN(), "Tukey fraction or Gaussian std in samples")
	windowsCmd.Flags().BoolVar(&winPeriodic, "periodic", false, "Use the periodic (FFT) form")
	windowsCmd.Flags().BoolVar(&winList, "list", false, "List window names")
	windowsCmd.Flags().Float64Var(&winNW, "nw", 5, "Slepian time-halfbandwidth product")
	windowsCmd.Flags().IntVar(&winTapers, "tapers", 0, "Number of Slepian tapers to analyze")
}

func runWindows(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if winList {
		names := make([]string, len(windowRegistry))
		for i, e := range windowRegistry {
			names[i] = e.name
		}

		sort.Strings(names)
		fmt.Fprintln(out, strings.Join(names, "\n"))

		return nil
	}

	if winSize <= 0 {
		return fmt.Errorf("--size must be > 0")
	}

	byName := make(map[string]windowEntry, len(windowRegistry))
	for _, e := range windowRegistry {
		byName[e.name] = e
	}

	entries := windowRegistry
	if len(args) > 0 {
		entries = nil

		for _, name := range args {
			e, ok := byName[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				return fmt.Errorf("unknown window %q (use --list)", name)
			}

			entries = append(entries, e)
		}
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Window\tSize\tCoherent Gain\tENBW [bins]\tBW 3dB [bins]\tSidelobe [dB]\t1st Min [bins]\tScallop [dB]\n")

	var base []window.Option
	if winPeriodic {
		base = append(base, window.WithPeriodic())
	}

	for _, e := range entries {
		opts := append([]window.Option(nil), base...)
		label := e.name

		if e.hasAlpha {
			a := e.defAlpha
			if e.typ == window.TypeGaussian {
				a = float64(winSize) / 6
			}

			if !math.IsNaN(winAlpha) {
				a = winAlpha
			}

			opts = append(opts, window.WithAlpha(a))
			label = fmt.Sprintf("%s (a=%.2f)", e.name, a)
		}

		writeAnalysis(tw, label, window.Generate(e.typ, winSize, opts...))
	}

	if winTapers > 0 {
		tapers, ratios, err := window.DPSS(winSize, winNW, winTapers)
		if err != nil {
			return err
		}

		for k, taper := range tapers {
			writeAnalysis(tw, fmt.Sprintf("dpss k=%d (%.6f)", k, ratios[k]), taper)
		}
	}

	return tw.Flush()
}

func writeAnalysis(tw *tabwriter.Writer, label string, coeffs []float64) {
	a := window.Analyze(coeffs)
	fmt.Fprintf(tw, "%s\t%d\t%.6f\t%.4f\t%.4f\t%.2f\t%.4f\t%.4f\n",
		label, len(coeffs), a.CoherentGain, a.ENBW, a.Bandwidth3dB,
		a.HighestSidelobedB, a.FirstMinimumBins, a.ScallopLossdB)
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ephys/session"
	"github.com/cwbudde/algo-ephys/stats/trace"
)

var infoStats bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Describe the session: channels, LFP file and behavior epochs",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoStats, "stats", false, "Print per-channel signal statistics (reads the whole LFP)")
}

func runInfo(cmd *cobra.Command, args []string) error {
	ses, err := session.Open(basepath, session.WithLogger(logger))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ri := ses.Recinfo

	fmt.Fprintln(out, ri)
	fmt.Fprintf(out, "good channels: %v\n", ri.GoodChannels())

	if path, err := ri.LFPPath(); err == nil {
		st, err := os.Stat(path)
		if err != nil {
			return err
		}

		frames := st.Size() / int64(2*ri.NChannels)
		fmt.Fprintf(out, "lfp: %s, %s, %s frames, %.1f s\n",
			path, humanize.Bytes(uint64(st.Size())), humanize.Comma(frames), float64(frames)/ri.LFPRate)
	} else {
		fmt.Fprintf(out, "lfp: none\n")
	}

	fmt.Fprintf(out, "behavior: %.1f s total\n%s", ses.Behavior.TotalDuration(), ses.Behavior.Epoch())

	if !infoStats {
		return nil
	}

	sig, err := ri.LFP(ri.GoodChannels(), 0, 0)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Channel\tMean\tRMS\tMin\tMax\tSkew\tKurtosis\n")

	for _, cs := range trace.CalculateSignal(sig) {
		s := cs.Summary
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.0f\t%.0f\t%.3f\t%.3f\n",
			cs.Channel, s.Mean, s.RMS, s.Min, s.Max, s.Skewness, s.Kurtosis)
	}

	return tw.Flush()
}

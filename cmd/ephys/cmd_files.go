package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-ephys/session"
)

var (
	renameExt     string
	renamePattern string
	renameCopy    bool
	renameDryRun  bool
)

var renameCmd = &cobra.Command{
	Use:   "rename <folder>",
	Short: "Prefix recordings with the time folder they sit in",
	Long: `Finds files with the given extension below folder and renames each to
<time>_<name>, where time is the path component matching --pattern
(HH_MM_SS by default). With --copy the originals are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runRename,
}

func init() {
	renameCmd.Flags().StringVar(&renameExt, "ext", "avi", "File extension")
	renameCmd.Flags().StringVar(&renamePattern, "pattern", session.DefaultTimePattern, "Time folder pattern")
	renameCmd.Flags().BoolVar(&renameCopy, "copy", false, "Copy instead of rename")
	renameCmd.Flags().BoolVar(&renameDryRun, "dry-run", false, "Only list files and their times")
}

func runRename(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if renameDryRun {
		files, times, err := session.RecordTimes(args[0], renameExt, renamePattern)
		if err != nil {
			return err
		}

		for i, f := range files {
			fmt.Fprintf(out, "%s\t%s\n", times[i], f)
		}

		return nil
	}

	n, err := session.PrependTime(args[0], renameExt, renamePattern, renameCopy, session.WithLogger(logger))
	if err != nil {
		return err
	}

	verb := "renamed"
	if renameCopy {
		verb = "copied"
	}

	fmt.Fprintf(out, "%s %d files\n", verb, n)

	return nil
}

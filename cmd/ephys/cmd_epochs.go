package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-ephys/session"
)

var epochsCmd = &cobra.Command{
	Use:   "epochs",
	Short: "Show and edit behavioral epochs (pre, maze, post)",
}

var epochsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the behavioral epochs",
	Args:  cobra.NoArgs,
	RunE:  runEpochsShow,
}

var epochsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set periods by value or from maze bounds",
	Long: `Sets named periods and saves them to <prefix>_epochs.json.

Either give periods directly:
  ephys epochs set --pre 0,3500 --maze 3600,5400 --post 5500,9000
or derive PRE and POST from the maze bounds and the session end:
  ephys epochs set --maze 3600,5400 --t-end 9000`,
	Args: cobra.NoArgs,
	RunE: runEpochsSet,
}

var epochsImportCmd = &cobra.Command{
	Use:   "import-csv",
	Short: "Merge periods from <prefix>_epochs.csv (name,start,stop)",
	Args:  cobra.NoArgs,
	RunE:  runEpochsImport,
}

var epochsExportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Write the epochs to a spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runEpochsExport,
}

var (
	setPre, setMaze, setPost string
	setTEnd                  float64
)

func init() {
	epochsSetCmd.Flags().StringVar(&setPre, "pre", "", "PRE period as start,stop")
	epochsSetCmd.Flags().StringVar(&setMaze, "maze", "", "MAZE period as start,stop")
	epochsSetCmd.Flags().StringVar(&setPost, "post", "", "POST period as start,stop")
	epochsSetCmd.Flags().Float64Var(&setTEnd, "t-end", 0, "Session end; with --maze alone derives PRE and POST")

	epochsCmd.AddCommand(epochsShowCmd)
	epochsCmd.AddCommand(epochsSetCmd)
	epochsCmd.AddCommand(epochsImportCmd)
	epochsCmd.AddCommand(epochsExportCmd)
}

func behaviorEpochs() (*session.BehaviorEpochs, error) {
	ri, err := session.OpenRecinfo(basepath, session.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	return session.NewBehaviorEpochs(ri.FilePrefix, session.WithLogger(logger))
}

func runEpochsShow(cmd *cobra.Command, args []string) error {
	b, err := behaviorEpochs()
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), b.Epoch())

	return nil
}

func runEpochsSet(cmd *cobra.Command, args []string) error {
	b, err := behaviorEpochs()
	if err != nil {
		return err
	}

	if setTEnd > 0 {
		if setMaze == "" || setPre != "" || setPost != "" {
			return fmt.Errorf("--t-end needs --maze and no --pre/--post")
		}

		maze, err := parsePair(setMaze)
		if err != nil {
			return err
		}

		if err := b.FromMazeBounds(maze[0], maze[1], setTEnd); err != nil {
			return err
		}
	} else {
		periods := map[string][]float64{}

		for name, v := range map[string]string{
			session.PeriodPre:  setPre,
			session.PeriodMaze: setMaze,
			session.PeriodPost: setPost,
		} {
			if v == "" {
				continue
			}

			p, err := parsePair(v)
			if err != nil {
				return fmt.Errorf("--%s: %w", name, err)
			}

			periods[name] = p[:]
		}

		if len(periods) == 0 {
			return fmt.Errorf("nothing to set: give --pre, --maze or --post")
		}

		if err := b.Make(periods); err != nil {
			return err
		}
	}

	logger.Info("epochs updated", zap.String("path", b.Path()))
	fmt.Fprint(cmd.OutOrStdout(), b.Epoch())

	return nil
}

func runEpochsImport(cmd *cobra.Command, args []string) error {
	b, err := behaviorEpochs()
	if err != nil {
		return err
	}

	if err := b.ImportCSV(); err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), b.Epoch())

	return nil
}

func runEpochsExport(cmd *cobra.Command, args []string) error {
	b, err := behaviorEpochs()
	if err != nil {
		return err
	}

	if err := b.Epoch().WriteXLSX(args[0]); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d epochs to %s\n", b.Epoch().Len(), args[0])

	return nil
}

package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-ephys/core"
	"github.com/cwbudde/algo-ephys/internal/config"
	"github.com/cwbudde/algo-ephys/session"
)

const sessionXML = `<?xml version="1.0"?>
<parameters>
 <acquisitionSystem>
  <nBits>16</nBits>
  <nChannels>2</nChannels>
  <samplingRate>30000</samplingRate>
 </acquisitionSystem>
 <fieldPotentials>
  <lfpSamplingRate>1250</lfpSamplingRate>
 </fieldPotentials>
 <anatomicalDescription>
  <channelGroups>
   <group>
    <channel skip="0">0</channel>
    <channel skip="0">1</channel>
   </group>
  </channelGroups>
 </anatomicalDescription>
</parameters>
`

// setup resets the command globals to a fresh session directory.
func setup(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	logger = zap.NewNop()
	cfg = config.Default()
	basepath = t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(basepath, "rat_day1.xml"), []byte(sessionXML), 0o644))

	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)

	return cmd, buf
}

func sine(n int, fs, f float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = 200 * math.Sin(2*math.Pi*f*float64(i)/fs)
	}

	return x
}

func writeLFP(t *testing.T) {
	t.Helper()

	sig, err := core.NewSignal([][]float64{sine(2500, 1250, 8), sine(2500, 1250, 30)}, 1250)
	require.NoError(t, err)
	require.NoError(t, session.WriteBinaryLFP(filepath.Join(basepath, "rat_day1.eeg"), sig))
}

func TestRunInfo(t *testing.T) {
	cmd, buf := setup(t)
	writeLFP(t)

	require.NoError(t, runInfo(cmd, nil))

	out := buf.String()
	assert.Contains(t, out, "good channels: [0 1]")
	assert.Contains(t, out, "2,500 frames, 2.0 s")
	assert.Contains(t, out, "0 epochs")
}

func TestRunInfoNoSession(t *testing.T) {
	cmd, _ := setup(t)
	basepath = t.TempDir()

	require.ErrorIs(t, runInfo(cmd, nil), session.ErrNoXML)
}

func TestRunEpochs(t *testing.T) {
	cmd, buf := setup(t)

	setMaze, setTEnd = "100,200", 400
	t.Cleanup(func() { setMaze, setTEnd = "", 0 })

	require.NoError(t, runEpochsSet(cmd, nil))
	assert.Contains(t, buf.String(), "3 epochs")

	buf.Reset()
	require.NoError(t, runEpochsShow(cmd, nil))
	assert.Contains(t, buf.String(), "maze")
	assert.Contains(t, buf.String(), "post")

	xlsx := filepath.Join(t.TempDir(), "epochs.xlsx")

	buf.Reset()
	require.NoError(t, runEpochsExport(cmd, []string{xlsx}))
	assert.Contains(t, buf.String(), "wrote 3 epochs")

	back, err := core.ReadXLSX(xlsx)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 100, 201}, back.Starts())
}

func TestRunEpochsSetErrors(t *testing.T) {
	cmd, _ := setup(t)

	require.Error(t, runEpochsSet(cmd, nil))

	setPre, setTEnd = "0,10", 400
	t.Cleanup(func() { setPre, setTEnd = "", 0 })

	require.Error(t, runEpochsSet(cmd, nil))
}

func TestRunPSD(t *testing.T) {
	cmd, buf := setup(t)

	npy := filepath.Join(t.TempDir(), "trace.npy")
	require.NoError(t, core.SaveVector(npy, sine(25000, cfg.LFPRate, 8)))

	psdSrc.npy = npy
	t.Cleanup(func() { psdSrc.npy = "" })

	require.NoError(t, runPSD(cmd, nil))

	out := buf.String()
	assert.Contains(t, out, "25,000 samples")
	assert.Contains(t, out, "peak 8.00 Hz")
	assert.Contains(t, out, "theta")
	assert.Contains(t, out, "theta/delta")
}

func TestRunPBE(t *testing.T) {
	cmd, buf := setup(t)

	rate := make([]float64, 3000)
	for i := range rate {
		rate[i] = 1
		if i >= 1000 && i < 1150 {
			rate[i] = 40
		}
	}

	dir := t.TempDir()
	npy := filepath.Join(dir, "rate.npy")
	require.NoError(t, core.SaveVector(npy, rate))

	pbeRate, pbeSave = npy, filepath.Join(dir, "pbe.json")
	t.Cleanup(func() { pbeRate, pbeSave = "", "" })

	require.NoError(t, runPBE(cmd, nil))
	assert.Contains(t, buf.String(), "1 epochs")

	ep, err := core.LoadEpoch(pbeSave)
	require.NoError(t, err)
	require.Equal(t, 1, ep.Len())
	assert.InDelta(t, 1.0, ep.Starts()[0], 0.01)
}

func TestRunPBENoInput(t *testing.T) {
	cmd, _ := setup(t)

	require.Error(t, runPBE(cmd, nil))
}

func TestRunRename(t *testing.T) {
	cmd, buf := setup(t)

	root := t.TempDir()
	dir := filepath.Join(root, "10_15_30")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cam.avi"), []byte("x"), 0o644))

	renameDryRun = true
	require.NoError(t, runRename(cmd, []string{root}))
	assert.Contains(t, buf.String(), "10_15_30\t")

	renameDryRun = false

	buf.Reset()
	require.NoError(t, runRename(cmd, []string{root}))
	assert.Equal(t, "renamed 1 files\n", buf.String())
	assert.FileExists(t, filepath.Join(dir, "10_15_30_cam.avi"))
}

func TestRunWindows(t *testing.T) {
	cmd, buf := setup(t)

	winList = true
	require.NoError(t, runWindows(cmd, nil))
	assert.Equal(t, "blackman\nboxcar\ngaussian\nhamming\nhann\ntukey\n", buf.String())

	winList = false

	buf.Reset()
	require.NoError(t, runWindows(cmd, []string{"hann", "tukey"}))
	assert.Contains(t, buf.String(), "hann")
	assert.Contains(t, buf.String(), "tukey (a=0.25)")
	assert.Contains(t, buf.String(), "1024")

	require.Error(t, runWindows(cmd, []string{"kaiser"}))
}

func TestRunWindowsTapers(t *testing.T) {
	cmd, buf := setup(t)

	winTapers, winSize = 2, 256
	t.Cleanup(func() { winTapers, winSize = 0, 1024 })

	require.NoError(t, runWindows(cmd, []string{"hann"}))
	assert.Contains(t, buf.String(), "dpss k=0")
	assert.Contains(t, buf.String(), "dpss k=1")
}

func TestParsePair(t *testing.T) {
	p, err := parsePair(" 1.5, 3")
	require.NoError(t, err)
	assert.Equal(t, [2]float64{1.5, 3}, p)

	_, err = parsePair("1")
	require.Error(t, err)

	_, err = parsePair("a,b")
	require.Error(t, err)
}

func TestRootCommands(t *testing.T) {
	for _, name := range []string{"info", "epochs", "psd", "spectrogram", "bicoherence", "pac", "theta", "pbe", "rename", "windows"} {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}
}

// Package config holds analysis defaults for the ephys command, loaded
// from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-ephys/analysis/events"
	"github.com/cwbudde/algo-ephys/analysis/oscillation"
	"github.com/cwbudde/algo-ephys/dsp/filter/zerophase"
)

// Environment variables read by ApplyEnv.
const (
	EnvDataDir = "EPHYS_DATA_DIR"
	EnvWorkers = "EPHYS_WORKERS"
	EnvLFPRate = "EPHYS_LFP_RATE"
)

// Config holds all analysis settings.
type Config struct {
	DataDir string  `yaml:"data_dir"`
	LFPRate float64 `yaml:"lfp_rate"`
	Workers int     `yaml:"workers"`
	// Colormap names the heatmap colormap used by plots.
	Colormap string `yaml:"colormap"`

	Bands       map[string][2]float64 `yaml:"bands"`
	Spectrogram SpectrogramConfig     `yaml:"spectrogram"`
	Bicoherence BicoherenceConfig     `yaml:"bicoherence"`
	PAC         PACConfig             `yaml:"pac"`
	PBE         PBEConfig             `yaml:"pbe"`
}

// SpectrogramConfig sets the Fourier spectrogram window in seconds.
type SpectrogramConfig struct {
	Window  float64 `yaml:"window"`
	Overlap float64 `yaml:"overlap"`
	Sigma   float64 `yaml:"sigma"`
}

// BicoherenceConfig sets the bicoherence range in Hz and window in
// samples.
type BicoherenceConfig struct {
	FLow    float64 `yaml:"flow"`
	FHigh   float64 `yaml:"fhigh"`
	Window  int     `yaml:"window"`
	Overlap int     `yaml:"overlap"`
}

// PACConfig sets the phase and amplitude bands and phase bin width.
type PACConfig struct {
	PhaseBand [2]float64 `yaml:"phase_band"`
	AmpBand   [2]float64 `yaml:"amp_band"`
	BinSize   float64    `yaml:"bin_size"`
}

// PBEConfig sets population burst thresholds (z units) and durations (s).
type PBEConfig struct {
	Thresh   [2]float64 `yaml:"thresh"`
	MinDur   float64    `yaml:"min_dur"`
	MergeDur float64    `yaml:"merge_dur"`
	MaxDur   float64    `yaml:"max_dur"`
}

// Default returns the built-in settings.
func Default() *Config {
	bands := make(map[string][2]float64)
	for _, b := range zerophase.Bands() {
		bands[b.Name] = [2]float64{b.Low, b.High}
	}

	bic := oscillation.DefaultBicoherence()
	pac := oscillation.DefaultPAC()
	pbe := events.DefaultPBEParams()

	return &Config{
		DataDir:     ".",
		LFPRate:     zerophase.DefaultSampleRate,
		Workers:     bic.Workers,
		Colormap:    "viridis",
		Bands:       bands,
		Spectrogram: SpectrogramConfig{Window: 1, Overlap: 0.5},
		Bicoherence: BicoherenceConfig{FLow: bic.FLow, FHigh: bic.FHigh, Window: bic.Window, Overlap: bic.Overlap},
		PAC:         PACConfig{PhaseBand: pac.PhaseBand, AmpBand: pac.AmpBand, BinSize: pac.BinSize},
		PBE:         PBEConfig{Thresh: pbe.Thresh, MinDur: pbe.MinDur, MergeDur: pbe.MergeDur, MaxDur: pbe.MaxDur},
	}
}

// Load overlays the YAML file at path on the defaults. A missing file
// yields the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)

		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// LoadDotEnv reads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	var present []string

	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}

	if len(present) == 0 {
		return nil
	}

	return godotenv.Load(present...)
}

// ApplyEnv applies EPHYS_DATA_DIR, EPHYS_WORKERS and EPHYS_LFP_RATE.
func (c *Config) ApplyEnv() error {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		c.DataDir = dir
	}

	if s := os.Getenv(EnvWorkers); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}

		c.Workers = n
	}

	if s := os.Getenv(EnvLFPRate); s != "" {
		fs, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLFPRate, err)
		}

		c.LFPRate = fs
	}

	return nil
}

// Validate checks rates, windows and band edges.
func (c *Config) Validate() error {
	if c.LFPRate <= 0 {
		return fmt.Errorf("config: lfp_rate must be > 0, got %g", c.LFPRate)
	}

	if c.Spectrogram.Window <= 0 || c.Spectrogram.Overlap < 0 || c.Spectrogram.Overlap >= c.Spectrogram.Window {
		return fmt.Errorf("config: spectrogram overlap %g must be in [0, window %g)", c.Spectrogram.Overlap, c.Spectrogram.Window)
	}

	if c.Bicoherence.Window <= 0 || c.Bicoherence.Overlap < 0 || c.Bicoherence.Overlap >= c.Bicoherence.Window {
		return fmt.Errorf("config: bicoherence overlap %d must be in [0, window %d)", c.Bicoherence.Overlap, c.Bicoherence.Window)
	}

	if !(c.PAC.BinSize > 0 && c.PAC.BinSize <= 360) {
		return fmt.Errorf("config: pac bin_size must be in (0, 360], got %g", c.PAC.BinSize)
	}

	for _, name := range c.BandNames() {
		b := c.Bands[name]
		if !(b[0] >= 0 && b[1] > b[0]) {
			return fmt.Errorf("config: band %s has edges %v", name, b)
		}
	}

	return nil
}

// Band returns the named band, falling back to the built-in table.
func (c *Config) Band(name string) ([2]float64, error) {
	if b, ok := c.Bands[name]; ok {
		return b, nil
	}

	b, err := zerophase.Lookup(name)
	if err != nil {
		return [2]float64{}, err
	}

	return [2]float64{b.Low, b.High}, nil
}

// BandNames lists the configured bands sorted by name.
func (c *Config) BandNames() []string {
	names := make([]string, 0, len(c.Bands))
	for n := range c.Bands {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// BicoherenceParams returns the bicoherence settings at the LFP rate.
func (c *Config) BicoherenceParams() oscillation.Bicoherence {
	return oscillation.Bicoherence{
		FLow:    c.Bicoherence.FLow,
		FHigh:   c.Bicoherence.FHigh,
		Fs:      c.LFPRate,
		Window:  c.Bicoherence.Window,
		Overlap: c.Bicoherence.Overlap,
		Workers: c.Workers,
	}
}

// PACParams returns the PAC settings at the LFP rate.
func (c *Config) PACParams() oscillation.PAC {
	return oscillation.PAC{
		PhaseBand: c.PAC.PhaseBand,
		AmpBand:   c.PAC.AmpBand,
		BinSize:   c.PAC.BinSize,
		Fs:        c.LFPRate,
	}
}

// PBEParams returns the burst detection settings.
func (c *Config) PBEParams() events.PBEParams {
	return events.PBEParams{
		Thresh:   c.PBE.Thresh,
		MinDur:   c.PBE.MinDur,
		MergeDur: c.PBE.MergeDur,
		MaxDur:   c.PBE.MaxDur,
	}
}

// Save writes c as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

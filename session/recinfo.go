package session

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrNoXML is returned when the session folder has no .xml file.
	ErrNoXML = errors.New("session: no .xml file in basepath")
	// ErrManyXML is returned when the session folder has several .xml
	// files.
	ErrManyXML = errors.New("session: more than one .xml file in basepath")
	// ErrNoLFP is returned when neither <prefix>.eeg nor <prefix>.lfp
	// exists.
	ErrNoLFP = errors.New("session: no .eeg or .lfp file")
)

// Recinfo describes a recording from its Neuroscope XML.
type Recinfo struct {
	// Basepath is the session folder.
	Basepath string
	// SessionName is the XML file name without extension.
	SessionName string
	// FilePrefix is Basepath joined with SessionName.
	FilePrefix string

	NBits      int
	NChannels  int
	SampleRate float64
	LFPRate    float64
	// ChannelGroups lists the channels of each shank in probe order.
	ChannelGroups [][]int
	// Skipped holds channels marked skip="1".
	Skipped []int

	logger *zap.Logger
}

type xmlParameters struct {
	Acquisition struct {
		NBits        int     `xml:"nBits"`
		NChannels    int     `xml:"nChannels"`
		SamplingRate float64 `xml:"samplingRate"`
	} `xml:"acquisitionSystem"`
	FieldPotentials struct {
		LFPSamplingRate float64 `xml:"lfpSamplingRate"`
	} `xml:"fieldPotentials"`
	Anatomy struct {
		Groups []struct {
			Channels []struct {
				Skip  int `xml:"skip,attr"`
				Value int `xml:",chardata"`
			} `xml:"channel"`
		} `xml:"channelGroups>group"`
	} `xml:"anatomicalDescription"`
}

// OpenRecinfo parses the single .xml file in basepath.
func OpenRecinfo(basepath string, opts ...Option) (*Recinfo, error) {
	o := applyOptions(opts)

	matches, err := filepath.Glob(filepath.Join(basepath, "*.xml"))
	if err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNoXML, basepath)
	case 1:
	default:
		return nil, fmt.Errorf("%w: %s", ErrManyXML, strings.Join(matches, ", "))
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		return nil, fmt.Errorf("read recinfo: %w", err)
	}

	var p xmlParameters
	if err := xml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", matches[0], err)
	}

	name := strings.TrimSuffix(filepath.Base(matches[0]), ".xml")

	r := &Recinfo{
		Basepath:    basepath,
		SessionName: name,
		FilePrefix:  filepath.Join(basepath, name),
		NBits:       p.Acquisition.NBits,
		NChannels:   p.Acquisition.NChannels,
		SampleRate:  p.Acquisition.SamplingRate,
		LFPRate:     p.FieldPotentials.LFPSamplingRate,
		logger:      o.logger,
	}

	for _, g := range p.Anatomy.Groups {
		chans := make([]int, 0, len(g.Channels))
		for _, c := range g.Channels {
			chans = append(chans, c.Value)
			if c.Skip == 1 {
				r.Skipped = append(r.Skipped, c.Value)
			}
		}

		r.ChannelGroups = append(r.ChannelGroups, chans)
	}

	slices.Sort(r.Skipped)

	o.logger.Debug("recinfo loaded",
		zap.String("session", name),
		zap.Int("channels", r.NChannels),
		zap.Float64("lfp_rate", r.LFPRate),
		zap.Int("groups", len(r.ChannelGroups)))

	return r, nil
}

// GoodChannels returns all grouped channels that are not skipped, in
// group order.
func (r *Recinfo) GoodChannels() []int {
	var out []int

	for _, g := range r.ChannelGroups {
		for _, c := range g {
			if !slices.Contains(r.Skipped, c) {
				out = append(out, c)
			}
		}
	}

	return out
}

// LFPPath returns <prefix>.eeg, or <prefix>.lfp when only that exists.
func (r *Recinfo) LFPPath() (string, error) {
	for _, ext := range []string{".eeg", ".lfp"} {
		p := r.FilePrefix + ext
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNoLFP, r.FilePrefix)
}

// String summarizes the recording.
func (r *Recinfo) String() string {
	return fmt.Sprintf("%s: %d channels in %d groups, %g Hz (lfp %g Hz), %d skipped",
		r.SessionName, r.NChannels, len(r.ChannelGroups), r.SampleRate, r.LFPRate, len(r.Skipped))
}

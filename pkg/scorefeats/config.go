package scorefeats

import "fmt"

// Config controls label-to-frame aggregation parameters.
//
// WinLength, HopLength and Center must match the spectral transform the
// labels are aligned against; with matching values the aggregated label
// frame count equals the spectral frame count for any input length.
// SampleRate and FFTSize do not affect aggregation and are carried for
// introspection and experiment-reproducibility logs only.
type Config struct {
	SampleRate int  `yaml:"fs" json:"fs"`                 // audio sample rate in Hz (default 22050)
	FFTSize    int  `yaml:"n_fft" json:"n_fft"`           // companion transform FFT size (default 1024)
	WinLength  int  `yaml:"win_length" json:"win_length"` // window length in samples (default 512)
	HopLength  int  `yaml:"hop_length" json:"hop_length"` // hop length in samples (default 128)
	Center     bool `yaml:"center" json:"center"`         // symmetric edge-reflected padding before framing
}

// DefaultConfig returns the standard configuration used by singing-voice
// data preparation (22.05 kHz audio, 1024-point FFT, 512-sample window,
// 128-sample hop, centered framing).
func DefaultConfig() Config {
	return Config{
		SampleRate: 22050,
		FFTSize:    1024,
		WinLength:  512,
		HopLength:  128,
		Center:     true,
	}
}

// Validate checks the framing parameters.
func (c Config) Validate() error {
	if c.HopLength < 1 {
		return fmt.Errorf("scorefeats: hop_length must be >= 1, got %d", c.HopLength)
	}
	if c.WinLength < c.HopLength {
		return fmt.Errorf("scorefeats: win_length (%d) must be >= hop_length (%d)", c.WinLength, c.HopLength)
	}
	return nil
}

// pad returns the center-padding width applied on each side of a sequence.
func (c Config) pad() int {
	if !c.Center {
		return 0
	}
	return c.WinLength / 2
}

// NumFrames returns the number of analysis frames produced for a sequence of
// n valid samples. The formula must agree with the companion spectral
// transform so that label frames and spectral frames are index-aligned.
func (c Config) NumFrames(n int) int {
	padded := n + 2*c.pad()
	if padded < c.WinLength {
		return 0
	}
	return (padded-c.WinLength)/c.HopLength + 1
}

// Params returns the configuration as a flat map, for experiment
// reproducibility logs.
func (c Config) Params() map[string]any {
	return map[string]any{
		"fs":         c.SampleRate,
		"n_fft":      c.FFTSize,
		"win_length": c.WinLength,
		"hop_length": c.HopLength,
		"center":     c.Center,
	}
}

// String implements fmt.Stringer.
func (c Config) String() string {
	return fmt.Sprintf("win_length=%d, hop_length=%d, center=%v", c.WinLength, c.HopLength, c.Center)
}

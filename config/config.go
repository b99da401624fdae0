package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// OutputConfig selects the MIDI port the trainer plays clicks and strums on
type OutputConfig struct {
	PortName     string `json:"portName,omitempty"` // substring match, first port if empty
	ClickChannel uint8  `json:"clickChannel"`       // 1-16, 10 is GM percussion
	StrumChannel uint8  `json:"strumChannel"`
	ClickHigh    uint8  `json:"clickHigh"` // downbeat note
	ClickLow     uint8  `json:"clickLow"`  // other beats
	StrumProgram uint8  `json:"strumProgram"`
}

// TapInputConfig describes the MIDI input used as an onset source
type TapInputConfig struct {
	PortName string `json:"portName,omitempty"` // substring match; empty disables
	Note     int    `json:"note"`               // -1 accepts any note
}

// VolumeConfig holds mixer levels in [0,1]
type VolumeConfig struct {
	Click        float64 `json:"click"`
	Strum        float64 `json:"strum"`
	Master       float64 `json:"master"`
	ClickEnabled bool    `json:"clickEnabled"`
	StrumEnabled bool    `json:"strumEnabled"`
}

// Config is the main configuration structure
type Config struct {
	LastTempo   int                `json:"lastTempo,omitempty"`
	LastPattern string             `json:"lastPattern,omitempty"`
	LastSong    string             `json:"lastSong,omitempty"`
	Progression []string           `json:"progression,omitempty"`
	Voicings    map[string][]uint8 `json:"voicings,omitempty"` // chord name -> MIDI notes low to high
	Output      OutputConfig       `json:"output"`
	TapInput    TapInputConfig     `json:"tapInput"`
	Volume      VolumeConfig       `json:"volume"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LastPattern: "eighths",
		Progression: []string{"G", "C", "D", "G"},
		Voicings: map[string][]uint8{
			"C":  {48, 52, 55, 60, 64},
			"D":  {50, 57, 62, 66},
			"Em": {40, 47, 52, 55, 59, 64},
			"G":  {43, 47, 50, 55, 59, 67},
			"Am": {45, 52, 57, 60, 64},
			"Dm": {50, 57, 62, 65},
			"E":  {40, 47, 52, 56, 59, 64},
			"E7": {40, 47, 50, 56, 59, 64},
			"F":  {41, 48, 53, 57, 60, 65},
			"A":  {45, 52, 57, 61, 64},
			"A7": {45, 52, 55, 61, 64},
			"B7": {47, 51, 57, 59, 66},
		},
		Output: OutputConfig{
			ClickChannel: 10,
			StrumChannel: 1,
			ClickHigh:    76, // hi wood block
			ClickLow:     77, // low wood block
			StrumProgram: 25, // steel string guitar
		},
		TapInput: TapInputConfig{Note: -1},
		Volume: VolumeConfig{
			Click:        0.7,
			Strum:        0.5,
			Master:       0.8,
			ClickEnabled: true,
			StrumEnabled: true,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "strum-trainer"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, or returns defaults if not found.
// Fields missing from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating the directory if needed
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Voicing returns the notes for a chord, or nil when unknown
func (c *Config) Voicing(chord string) []uint8 {
	if c.Voicings == nil {
		return nil
	}
	return c.Voicings[chord]
}

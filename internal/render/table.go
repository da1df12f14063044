package render

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Table is the YAML path-table artifact handed to an external renderer: the
// keyframed camera path plus the output parameters it was computed for.
type Table struct {
	Version   string     `yaml:"version"`
	FPS       int        `yaml:"fps"`
	Width     int        `yaml:"width"`
	Height    int        `yaml:"height"`
	Keyframes []Keyframe `yaml:"keyframes"`
}

// NewTable wraps keyframes for persistence.
func NewTable(kfs []Keyframe, fps, width, height int) *Table {
	return &Table{
		Version:   "1.0",
		FPS:       fps,
		Width:     width,
		Height:    height,
		Keyframes: kfs,
	}
}

// WriteTable writes a path table to a YAML file.
func WriteTable(table *Table, path string) error {
	data, err := yaml.Marshal(table)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadTable reads a path table from a YAML file.
func ReadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, err
	}
	return &table, nil
}

// Package report renders computed surfaces. It is the output side of the
// tool: sinks receive a finished surface and never feed anything back into
// pricing.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/contactkeval/option-surface/internal/logger"
	"github.com/contactkeval/option-surface/internal/pricing"
)

// Sink consumes one surface.
type Sink interface {
	Render(s *pricing.Surface) error
}

// MultiSink renders to every sink in order and reports the first error.
type MultiSink []Sink

func (m MultiSink) Render(s *pricing.Surface) error {
	var first error
	for _, sink := range m {
		if err := sink.Render(s); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Emit hands s to sink. Failures are logged and otherwise ignored.
func Emit(sink Sink, s *pricing.Surface) {
	if err := sink.Render(s); err != nil {
		logger.Errorf("event=render_failed greek=%s label=%q err=%v", s.Greek, s.Label, err)
		return
	}
	logger.Debugf("event=rendered greek=%s label=%q", s.Greek, s.Label)
}

// NewSink builds a MultiSink writing the given formats into dir.
func NewSink(dir string, formats []string) (Sink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir %s: %w", dir, err)
	}

	var sinks MultiSink
	for _, f := range formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "json":
			sinks = append(sinks, JSONSink{Dir: dir})
		case "csv":
			sinks = append(sinks, CSVSink{Dir: dir})
		case "png":
			sinks = append(sinks, NewPNGSink(dir))
		default:
			return nil, fmt.Errorf("unknown report format %q (want json, csv or png)", f)
		}
	}
	return sinks, nil
}

// Document is the serialized form of a surface: x = spot, y = time to
// expiry, z = the quantity.
type Document struct {
	Greek    pricing.Greek `json:"greek"`
	Label    string        `json:"label"`
	XLabel   string        `json:"x_label"`
	YLabel   string        `json:"y_label"`
	ZLabel   string        `json:"z_label"`
	SpotAxis []float64     `json:"spot_axis"`
	TimeAxis []float64     `json:"time_axis"`
	Values   [][]float64   `json:"values"` // values[i][j] at time_axis[i], spot_axis[j]
}

// NewDocument converts s for serialization.
func NewDocument(s *pricing.Surface) Document {
	return Document{
		Greek:    s.Greek,
		Label:    s.Label,
		XLabel:   pricing.SpotAxisLabel,
		YLabel:   pricing.TimeAxisLabel,
		ZLabel:   s.Label,
		SpotAxis: s.Grid.SpotAxis,
		TimeAxis: s.Grid.TimeAxis,
		Values:   s.Rows(),
	}
}

// fileName is <greek>.<ext>.
func fileName(dir string, s *pricing.Surface, ext string) string {
	return filepath.Join(dir, string(s.Greek)+"."+ext)
}

// JSONSink writes <dir>/<greek>.json.
type JSONSink struct {
	Dir string
}

func (j JSONSink) Render(s *pricing.Surface) error {
	b, err := json.MarshalIndent(NewDocument(s), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fileName(j.Dir, s, "json"), b, 0644)
}

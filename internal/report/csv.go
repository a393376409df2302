package report

import (
	"os"

	"github.com/gocarina/gocsv"

	"github.com/contactkeval/option-surface/internal/pricing"
)

// csvRow is one grid point in long format.
type csvRow struct {
	Time  float64 `csv:"time"`
	Spot  float64 `csv:"spot"`
	Value float64 `csv:"value"`
}

// CSVSink writes <dir>/<greek>.csv with one row per grid point, time-major.
type CSVSink struct {
	Dir string
}

func (c CSVSink) Render(s *pricing.Surface) error {
	rows := make([]*csvRow, 0, len(s.Grid.TimeAxis)*len(s.Grid.SpotAxis))
	for i, t := range s.Grid.TimeAxis {
		for j, spot := range s.Grid.SpotAxis {
			rows = append(rows, &csvRow{Time: t, Spot: spot, Value: s.Values.At(i, j)})
		}
	}

	f, err := os.Create(fileName(c.Dir, s, "csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	return gocsv.MarshalFile(&rows, f)
}

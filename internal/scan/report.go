package scan

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kiesman99/pixeliter/internal/analysis"
)

// Area is the JSON form of an iteration area
type Area struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Report is the printable form of a statistics result
type Report struct {
	Area  Area                 `json:"area"`
	Bands []analysis.BandStats `json:"bands"`
}

func NewReport(res *analysis.Result) *Report {
	return &Report{
		Area: Area{
			X:      res.Area.Min.X,
			Y:      res.Area.Min.Y,
			Width:  res.Area.Dx(),
			Height: res.Area.Dy(),
		},
		Bands: res.Bands,
	}
}

func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func (r *Report) WriteText(w io.Writer) error {
	fmt.Fprintf(w, "Area: %d,%d %dx%d\n", r.Area.X, r.Area.Y, r.Area.Width, r.Area.Height)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "band\tcount\tmin\tmax\tmean\tstddev\tsum\t")
	for _, b := range r.Bands {
		fmt.Fprintf(tw, "%d\t%d\t%.6g\t%.6g\t%.6g\t%.6g\t%.6g\t\n", b.Band, b.Count, b.Min, b.Max, b.Mean, b.StdDev, b.Sum)
	}
	return tw.Flush()
}

// Package svgpreview renders a lightweight SVG plan-view preview of a
// CalcGrid's sample mask, grounded on the same svgo canvas pattern
// dungo's export package uses for its dungeon-graph visualizations.
// Render only returns the SVG bytes, a debug/audit preview, not the
// full report renderer (out of scope for this build); no other package
// calls it, and the runner writes no preview file with its artifacts.
package svgpreview

import (
	"bytes"
	"fmt"

	svg "github.com/ajstarks/svgo"

	"luxera/internal/project"
)

// Options configures the preview canvas.
type Options struct {
	Width, Height int
	Margin        int
	ShowLabels    bool
	Title         string
}

// DefaultOptions returns sensible preview canvas defaults.
func DefaultOptions() Options {
	return Options{Width: 800, Height: 600, Margin: 40, ShowLabels: true, Title: "Calc Grid Preview"}
}

// Render draws grid's sample points, colored by whether each sample is
// masked out, and returns the SVG document as bytes.
func Render(grid project.CalcGrid, opts Options) ([]byte, error) {
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	if opts.Margin <= 0 {
		opts.Margin = 40
	}
	if len(grid.SamplePoints) == 0 {
		return nil, fmt.Errorf("svgpreview: grid %s has no sample points", grid.ID)
	}

	buf := new(bytes.Buffer)
	canvas := svg.New(buf)
	canvas.Start(opts.Width, opts.Height)
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:#ffffff")

	minX, maxX, minY, maxY := boundsOf(grid.SamplePoints)
	plotW := float64(opts.Width - 2*opts.Margin)
	plotH := float64(opts.Height - 2*opts.Margin)
	spanX := maxX - minX
	spanY := maxY - minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	for i, pt := range grid.SamplePoints {
		x := opts.Margin + int((pt[0]-minX)/spanX*plotW)
		y := opts.Height - opts.Margin - int((pt[1]-minY)/spanY*plotH)

		color := "fill:#2a9d8f"
		if i < len(grid.SampleMask) && !grid.SampleMask[i] {
			color = "fill:#e76f51"
		}
		canvas.Circle(x, y, 3, color)
	}

	if opts.ShowLabels {
		canvas.Text(opts.Margin, opts.Margin/2, labelFor(grid, opts), "font-size:14px;fill:#333333")
	}

	canvas.End()
	return buf.Bytes(), nil
}

func labelFor(grid project.CalcGrid, opts Options) string {
	title := opts.Title
	if grid.ID != "" {
		title = fmt.Sprintf("%s (%s)", title, grid.ID)
	}
	return title
}

func boundsOf(points [][3]float64) (minX, maxX, minY, maxY float64) {
	minX, maxX = points[0][0], points[0][0]
	minY, maxY = points[0][1], points[0][1]
	for _, p := range points[1:] {
		if p[0] < minX {
			minX = p[0]
		}
		if p[0] > maxX {
			maxX = p[0]
		}
		if p[1] < minY {
			minY = p[1]
		}
		if p[1] > maxY {
			maxY = p[1]
		}
	}
	return
}

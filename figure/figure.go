// Package figure draws the comparison and convergence figures.
package figure

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Figure is a grid of panels saved as one image.
type Figure struct {
	Rows, Cols int
	Panels     [][]*plot.Plot
	Width      vg.Length
	Height     vg.Length
	format     Format
}

// newFigure lays out rows x cols styled panels. Height is in inches.
func newFigure(rows, cols int, height float64) *Figure {
	f := &Figure{
		Rows:   rows,
		Cols:   cols,
		Panels: make([][]*plot.Plot, rows),
		format: CurrentFormat(),
	}
	f.Width = f.format.Width
	f.Height = vg.Length(height) * vg.Inch
	for i := range f.Panels {
		f.Panels[i] = make([]*plot.Plot, cols)
		for j := range f.Panels[i] {
			p := plot.New()
			f.style(p)
			f.Panels[i][j] = p
		}
	}
	return f
}

// Panel returns the i-th panel in row-major order.
func (f *Figure) Panel(i int) *plot.Plot {
	return f.Panels[i/f.Cols][i%f.Cols]
}

// hideUnused blanks the panels from index n onwards.
func (f *Figure) hideUnused(n int) {
	for i := n; i < f.Rows*f.Cols; i++ {
		f.Panel(i).HideAxes()
	}
}

func (f *Figure) style(p *plot.Plot) {
	fs, ls := f.format.FontSize, f.format.LabelSize
	p.Title.TextStyle.Font.Size = ls
	p.X.Label.TextStyle.Font.Size = ls
	p.Y.Label.TextStyle.Font.Size = ls
	p.X.Tick.Label.Font.Size = fs
	p.Y.Tick.Label.Font.Size = fs
	p.Legend.TextStyle.Font.Size = fs
	p.Legend.Top = true
}

type lineStyle struct {
	color  color.Color
	dashed bool
	points bool
}

func (f *Figure) addLine(p *plot.Plot, xs, ys []float64, st lineStyle, label string) error {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	xys := make(plotter.XYs, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: xs[i], Y: ys[i]})
	}
	if len(xys) == 0 {
		return nil
	}
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.Color = st.color
	line.Width = f.format.LineWidth
	if st.dashed {
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	}
	p.Add(line)
	if st.points {
		sc, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		sc.Color = st.color
		sc.Radius = f.format.LineWidth
		p.Add(sc)
	}
	if label != "" {
		p.Legend.Add(label, line)
	}
	return nil
}

func colour(i int) color.Color {
	return plotutil.Color(i)
}

var (
	black     = color.Black
	lightGray = color.Gray{Y: 0xd3}
)

// WriteTo renders the figure as PNG.
func (f *Figure) WriteTo(w io.Writer) (int64, error) {
	img := vgimg.NewWith(vgimg.UseWH(f.Width, f.Height), vgimg.UseDPI(f.format.DPI))
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      f.Rows,
		Cols:      f.Cols,
		PadX:      vg.Millimeter,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(2),
		PadBottom: vg.Points(2),
		PadLeft:   vg.Points(2),
		PadRight:  vg.Points(2),
	}
	canvases := plot.Align(f.Panels, tiles, dc)
	for i := range f.Panels {
		for j, p := range f.Panels[i] {
			p.Draw(canvases[i][j])
		}
	}
	return vgimg.PngCanvas{Canvas: img}.WriteTo(w)
}

// Save writes the figure to a PNG file.
func (f *Figure) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	w := bufio.NewWriter(file)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	log.WithField("path", path).Info("figure saved")
	return nil
}

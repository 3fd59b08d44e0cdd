// Package render draws predicted-vs-actual comparison charts using
// gonum/plot with a fogleman/gg overlay pass for score annotations.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"

	"github.com/fogleman/gg"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/lcz-viz/server/pkg/colormap"
	"github.com/lcz-viz/server/pkg/frame"
	"github.com/lcz-viz/server/pkg/scores"
)

// Style is the scoped chart appearance configuration. It is carried by the
// renderer rather than by process-wide state, so concurrent renders stay
// independent.
type Style struct {
	WidthPx     int
	HeightPx    int
	PointRadius float64 // printer's points
	FontSize    float64 // printer's points

	Background    color.Color
	IdentityColor color.Color
	GridColor     color.Color
	ScoreColor    color.Color
}

// DefaultStyle mirrors the reference chart: small opaque markers, light
// gray grid, thin dark identity line.
func DefaultStyle() Style {
	return Style{
		WidthPx:       900,
		HeightPx:      700,
		PointRadius:   2,
		FontSize:      10,
		Background:    color.White,
		IdentityColor: color.RGBA{A: 192},
		GridColor:     color.RGBA{R: 211, G: 211, B: 211, A: 255},
		ScoreColor:    color.Black,
	}
}

// Options selects the frame columns and decorations for one comparison
// chart.
type Options struct {
	ActualField string
	PredField   string

	// Hue settings are consulted only when UseHue is true.
	HueField   string
	HueTitle   string
	HueOrder   []string
	HuePalette map[string]string

	TargetTitle string
	TargetUnits string

	Scores      []scores.Score
	UseHue      bool
	PrintScores bool
}

// ChartRenderer renders comparison charts. It keeps no per-chart state and
// is safe for concurrent use.
type ChartRenderer struct {
	style      Style
	bufferPool sync.Pool
}

// NewChartRenderer creates a renderer with the given style. Zero-valued
// style fields fall back to DefaultStyle.
func NewChartRenderer(style Style) *ChartRenderer {
	def := DefaultStyle()
	if style.WidthPx <= 0 {
		style.WidthPx = def.WidthPx
	}
	if style.HeightPx <= 0 {
		style.HeightPx = def.HeightPx
	}
	if style.PointRadius <= 0 {
		style.PointRadius = def.PointRadius
	}
	if style.FontSize <= 0 {
		style.FontSize = def.FontSize
	}
	if style.Background == nil {
		style.Background = def.Background
	}
	if style.IdentityColor == nil {
		style.IdentityColor = def.IdentityColor
	}
	if style.GridColor == nil {
		style.GridColor = def.GridColor
	}
	if style.ScoreColor == nil {
		style.ScoreColor = def.ScoreColor
	}

	return &ChartRenderer{
		style: style,
		bufferPool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, 32*1024))
			},
		},
	}
}

// RenderComparison renders a scatter chart of actual vs predicted values
// with a slope-1 identity line, shared axis bounds padded by 5% of the
// value range, an optional per-class hue encoding with legend, and optional
// score annotations. It returns encoded PNG bytes.
//
// All column validation happens before anything is drawn, so a failed call
// has no partial rendering side effects.
func (r *ChartRenderer) RenderComparison(f *frame.Frame, opts Options) ([]byte, error) {
	if f == nil || f.Len() == 0 {
		return nil, fmt.Errorf("render: no records to plot")
	}

	actual, err := f.Numeric(opts.ActualField)
	if err != nil {
		return nil, err
	}
	predicted, err := f.Numeric(opts.PredField)
	if err != nil {
		return nil, err
	}

	var hues []string
	if opts.UseHue {
		hues, err = f.Labels(opts.HueField)
		if err != nil {
			return nil, err
		}
	}

	lo, hi := axisBounds(actual, predicted)

	p := plot.New()
	p.Title.Text = "Actual and predicted " + opts.TargetTitle
	p.Title.TextStyle.Font.Size = vg.Points(r.style.FontSize + 2)
	p.X.Label.Text = axisLabel("Actual", opts.TargetTitle, opts.TargetUnits)
	p.Y.Label.Text = axisLabel("Predicted", opts.TargetTitle, opts.TargetUnits)
	p.X.Label.TextStyle.Font.Size = vg.Points(r.style.FontSize)
	p.Y.Label.TextStyle.Font.Size = vg.Points(r.style.FontSize)
	p.X.Tick.Label.Font.Size = vg.Points(r.style.FontSize)
	p.Y.Tick.Label.Font.Size = vg.Points(r.style.FontSize)

	// Identical bounds on both axes keep the identity line at 45 degrees.
	p.X.Min, p.X.Max = lo, hi
	p.Y.Min, p.Y.Max = lo, hi

	grid := plotter.NewGrid()
	grid.Vertical.Color = r.style.GridColor
	grid.Vertical.Width = vg.Points(0.5)
	grid.Horizontal.Color = r.style.GridColor
	grid.Horizontal.Width = vg.Points(0.5)
	p.Add(grid)

	identity, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return nil, fmt.Errorf("render: identity line: %w", err)
	}
	identity.LineStyle.Width = vg.Points(0.75)
	identity.LineStyle.Color = r.style.IdentityColor
	p.Add(identity)

	if opts.UseHue {
		if err := r.addHuedScatters(p, actual, predicted, hues, opts); err != nil {
			return nil, err
		}
	} else {
		s, err := r.newScatter(points(actual, predicted, nil, ""), colormap.Categorical.AtIndex(0))
		if err != nil {
			return nil, err
		}
		p.Add(s)
	}

	return r.draw(p, opts)
}

// addHuedScatters adds one scatter per observed class so that legend
// entries follow the requested hue order. Classes outside HueOrder are not
// drawn.
func (r *ChartRenderer) addHuedScatters(p *plot.Plot, actual, predicted []float64, hues []string, opts Options) error {
	order := opts.HueOrder
	if order == nil {
		order = firstAppearance(hues)
	}

	if opts.HueTitle != "" {
		// Text-only entry standing in for a legend title.
		p.Legend.Add(opts.HueTitle)
	}

	for i, class := range order {
		xys := points(actual, predicted, hues, class)
		if len(xys) == 0 {
			continue
		}

		c, err := classColor(class, i, opts.HuePalette)
		if err != nil {
			return err
		}
		s, err := r.newScatter(xys, c)
		if err != nil {
			return err
		}
		p.Add(s)
		p.Legend.Add(class, s)
	}

	p.Legend.Top = true
	p.Legend.TextStyle.Font.Size = vg.Points(r.style.FontSize)
	p.Legend.Padding = vg.Points(2)
	return nil
}

func (r *ChartRenderer) newScatter(xys plotter.XYs, c color.Color) (*plotter.Scatter, error) {
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("render: scatter: %w", err)
	}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = vg.Points(r.style.PointRadius)
	return s, nil
}

// MissingColorError reports a drawn class that has no palette entry, the
// usual sign of a code the reference table did not know.
type MissingColorError struct {
	Class string
}

func (e *MissingColorError) Error() string {
	return fmt.Sprintf("render: no palette entry for class %q", e.Class)
}

// classColor resolves a class to its palette color, or to the categorical
// cycle when no palette was supplied. A supplied palette must cover every
// drawn class.
func classColor(class string, idx int, palette map[string]string) (color.Color, error) {
	if palette == nil {
		return colormap.Categorical.AtIndex(idx), nil
	}
	hex, ok := palette[class]
	if !ok {
		return nil, &MissingColorError{Class: class}
	}
	c, err := colormap.ParseHex(hex)
	if err != nil {
		return nil, fmt.Errorf("render: class %q: %w", class, err)
	}
	return c, nil
}

// draw rasterizes the plot, overlays score annotations in the upper-left
// corner, and encodes the result as PNG.
func (r *ChartRenderer) draw(p *plot.Plot, opts Options) ([]byte, error) {
	dc := gg.NewContext(r.style.WidthPx, r.style.HeightPx)
	dc.SetColor(r.style.Background)
	dc.Clear()

	rgba, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("render: unexpected backing image type %T", dc.Image())
	}

	canvas := vgimg.NewWith(vgimg.UseImage(rgba))
	p.Draw(draw.New(canvas))

	if opts.PrintScores && len(opts.Scores) > 0 {
		dc.SetColor(r.style.ScoreColor)
		x := 0.03 * float64(r.style.WidthPx)
		y := 0.03*float64(r.style.HeightPx) + 13
		for _, score := range opts.Scores {
			dc.DrawString(fmt.Sprintf("%s = %.3f", score.Label, score.Value), x, y)
			y += 16
		}
	}

	return r.encode(rgba)
}

func (r *ChartRenderer) encode(img image.Image) ([]byte, error) {
	buf := r.bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		r.bufferPool.Put(buf)
	}()

	// Use fast PNG encoder
	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(buf, img); err != nil {
		return nil, err
	}

	// Copy buffer contents (buffer will be reused)
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}

func axisLabel(prefix, title, units string) string {
	label := prefix
	if title != "" {
		label += " " + title
	}
	if units != "" {
		label += " [" + units + "]"
	}
	return label
}

// points collects the (actual, predicted) pairs; when hues is non-nil only
// rows of the given class are included.
func points(actual, predicted []float64, hues []string, class string) plotter.XYs {
	var xys plotter.XYs
	for i := range actual {
		if hues != nil && hues[i] != class {
			continue
		}
		xys = append(xys, plotter.XY{X: actual[i], Y: predicted[i]})
	}
	return xys
}

// firstAppearance returns the unique hue values in order of first
// appearance, for callers that supply no explicit hue order.
func firstAppearance(hues []string) []string {
	seen := make(map[string]bool, len(hues))
	var order []string
	for _, h := range hues {
		if !seen[h] {
			seen[h] = true
			order = append(order, h)
		}
	}
	return order
}

// axisBounds computes the shared axis range: the combined min and max of
// both series padded by 5% of the range on each side. A degenerate zero
// range widens by 0.5 so the chart stays drawable.
func axisBounds(actual, predicted []float64) (lo, hi float64) {
	lo, hi = actual[0], actual[0]
	for _, v := range actual {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	for _, v := range predicted {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	delta := hi - lo
	if delta == 0 {
		return lo - 0.5, hi + 0.5
	}
	return lo - 0.05*delta, hi + 0.05*delta
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plot builds interactive pore radius charts with go-echarts and can
// rasterise them to PNG through a headless browser.
package plot

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/pdiddy/holeviz/pkg/types"
)

const (
	DefaultTitle  = "HOLE Pore Radius Profile"
	XAxisLabel    = "Channel Coordinate (Å)"
	YAxisLabel    = "Pore Radius (Å)"
	DefaultWidth  = 1000
	DefaultHeight = 600

	renderTimeout = 20 * time.Second
	colorProfile  = "#1f77b4"
	colorMinimum  = "#d62728"
)

// Options controls chart appearance. Zero Width or Height fall back to the
// defaults.
type Options struct {
	Title            string
	Width            int
	Height           int
	ShowPoints       bool
	HighlightMinimum bool
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// ProfileChart plots radius against channel coordinate for one profile.
func ProfileChart(p types.Profile, o Options) *charts.Line {
	title := o.Title
	if title == "" {
		title = DefaultTitle
		if stem := Stem(p.Source); stem != "" {
			title += " - " + stem
		}
	}

	line := newLine(title, o)
	seriesOpts := []charts.SeriesOpts{
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorProfile, Width: 2}),
		symbolOpts(o),
	}
	if o.HighlightMinimum {
		seriesOpts = append(seriesOpts, minimumOpts(p, true)...)
	}
	line.AddSeries("radius", lineData(p), seriesOpts...)
	return line
}

// CompareChart overlays several profiles, one series each. Missing labels
// default to the report file stem.
func CompareChart(profiles []types.Profile, labels []string, o Options) *charts.Line {
	title := o.Title
	if title == "" {
		title = "HOLE Pore Radius Comparison"
	}
	line := newLine(title, o)
	for i, p := range profiles {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		if label == "" {
			label = Stem(p.Source)
		}
		if label == "" {
			label = fmt.Sprintf("profile %d", i+1)
		}
		seriesOpts := append([]charts.SeriesOpts{symbolOpts(o)}, minimumOpts(p, false)...)
		line.AddSeries(label, lineData(p), seriesOpts...)
	}
	return line
}

func newLine(title string, o Options) *charts.Line {
	w, h := o.size()
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     fmt.Sprintf("%dpx", w),
			Height:    fmt.Sprintf("%dpx", h),
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Left: "center"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:         XAxisLabel,
			NameLocation: "middle",
			NameGap:      30,
			Type:         "value",
			SplitLine:    &opts.SplitLine{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:         YAxisLabel,
			NameLocation: "middle",
			NameGap:      40,
			Type:         "value",
			SplitLine:    &opts.SplitLine{Show: opts.Bool(true)},
		}),
	)
	return line
}

func symbolOpts(o Options) charts.SeriesOpts {
	return charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(o.ShowPoints)})
}

// lineData emits [position, radius] pairs for a value-typed x axis.
func lineData(p types.Profile) []opts.LineData {
	data := make([]opts.LineData, 0, p.Len())
	for _, r := range p.Records {
		data = append(data, opts.LineData{Value: []any{r.Position, r.Radius}})
	}
	return data
}

func minimumOpts(p types.Profile, withLine bool) []charts.SeriesOpts {
	m, ok := p.Minimum()
	if !ok {
		return nil
	}
	label := fmt.Sprintf("min %.2f Å @ %.2f", m.Radius, m.Position)
	out := []charts.SeriesOpts{
		charts.WithMarkPointNameCoordItemOpts(opts.MarkPointNameCoordItem{
			Name:       "minimum",
			Coordinate: []any{m.Position, m.Radius},
			Value:      label,
			Symbol:     "pin",
			SymbolSize: 40,
			Label:      &opts.Label{Show: opts.Bool(true)},
		}),
	}
	if withLine {
		out = append(out,
			charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{
				Name:  "minimum radius",
				YAxis: m.Radius,
			}),
			charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
				LineStyle: &opts.LineStyle{Color: colorMinimum, Type: "dashed"},
			}),
		)
	}
	return out
}

// RenderHTML writes the charts as a single HTML page.
func RenderHTML(w io.Writer, cs ...components.Charter) error {
	if len(cs) == 0 {
		return fmt.Errorf("no charts to render")
	}
	page := components.NewPage()
	page.PageTitle = DefaultTitle
	page.AddCharts(cs...)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}

// RenderPNG loads html in headless Chrome and returns a full-page screenshot.
// Chrome must be installed.
func RenderPNG(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, renderTimeout)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500 * time.Millisecond),
		chromedp.FullScreenshot(&screenshot, 100),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, fmt.Errorf("rendering png: %w", err)
	}
	return screenshot, nil
}

// HTMLBytes renders the charts to an in-memory page, for feeding RenderPNG.
func HTMLBytes(cs ...components.Charter) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, cs...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DefaultPlotPath derives the plot path from a report path: "x_out.txt"
// becomes "x_profile.<ext>".
func DefaultPlotPath(reportPath, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	base := strings.TrimSuffix(reportPath, filepath.Ext(reportPath))
	base = strings.TrimSuffix(base, "_out")
	return base + "_profile." + ext
}

// Stem returns the report file name without directory, extension or the
// "_out" suffix HOLE appends.
func Stem(path string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, "_out")
}

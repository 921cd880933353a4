// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command diveplot renders a dive's depth and temperature profile to a
// PNG image: depth against the left axis, temperature against the
// right, freetype-rendered labels on both.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io/ioutil"
	"log"
	"os"

	"github.com/golang/freetype"
	"github.com/sirupsen/logrus"

	"github.com/divecomputer/godc"
	"github.com/divecomputer/godc/internal/diveparser"
	"github.com/divecomputer/godc/sample"
	"github.com/divecomputer/godc/scale"
)

func main() {
	fs := flag.NewFlagSet("diveplot", flag.ExitOnError)
	flagInput := fs.String("i", "", "input dive blob `file`")
	flagOutput := fs.String("o", "profile.png", "output PNG `file`")
	flagWidth := fs.Int("w", 900, "image width")
	flagHeight := fs.Int("h", 400, "image height")
	flagFont := fs.String("font", "/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf", "TrueType font used for axis labels")
	pf := diveparser.Register(fs)
	fs.Parse(os.Args[1:])

	if *flagInput == "" {
		fmt.Fprintln(os.Stderr, "missing -i")
		fs.Usage()
		os.Exit(1)
	}

	dctx := godc.NewContext(logrus.StandardLogger(), context.Background())
	p, err := pf.Build(dctx)
	if err != nil {
		log.Fatal(err)
	}

	data, err := ioutil.ReadFile(*flagInput)
	if err != nil {
		log.Fatal(err)
	}
	p.SetData(data)

	var times []float64
	var depths []float64
	var tempTimes []float64
	var temps []float64
	maxDepth, maxTemp, minTemp := 0.0, 0.0, 1000.0
	st := p.SamplesForeach(func(s sample.Sample) bool {
		switch s.Kind {
		case sample.KindDepth:
			times = append(times, float64(s.Time))
			depths = append(depths, s.Depth)
			if s.Depth > maxDepth {
				maxDepth = s.Depth
			}
		case sample.KindTemperature:
			if s.Temperature > maxTemp {
				maxTemp = s.Temperature
			}
			if s.Temperature < minTemp {
				minTemp = s.Temperature
			}
			tempTimes = append(tempTimes, float64(s.Time))
			temps = append(temps, s.Temperature)
		}
		return true
	})
	if !st.Ok() {
		log.Fatal(st)
	}
	if len(times) == 0 {
		log.Fatal("no depth samples to plot")
	}

	plot := newPlot(*flagWidth, *flagHeight, *flagFont)
	defer plot.done()

	const (
		marginLeft   = 50
		marginRight  = 50
		marginTop    = 30
		marginBottom = 40
	)
	xAxis := scale.NewOutputScale(marginLeft, float64(*flagWidth-marginRight))
	yAxis := scale.NewOutputScale(float64(*flagHeight-marginBottom), marginTop)

	tScale := scale.NewLinear([]float64{0, times[len(times)-1]})
	dScale := scale.NewLinear([]float64{0, maxDepth + 1})

	plot.axes(xAxis, yAxis, tScale, dScale, "time (s)", "depth (m)")
	plot.series(times, depths, tScale, dScale, xAxis, yAxis, color.NRGBA{0, 0, 255, 255})

	if len(temps) > 0 {
		tempScale := scale.NewLinear([]float64{minTemp - 1, maxTemp + 1})
		plot.rightAxis(xAxis, yAxis, tempScale, "temp (°C)")
		plot.series(tempTimes, temps, tScale, tempScale, xAxis, yAxis, color.NRGBA{200, 0, 0, 255})
	}

	f, err := os.Create(*flagOutput)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(f, plot.img); err != nil {
		log.Fatal(err)
	}
}

// plot wraps the raster image and the freetype context used to label
// its axes.
type plot struct {
	img     *image.NRGBA
	ctx     *freetype.Context
	w, h    int
	noLabel bool
}

func newPlot(w, h int, fontPath string) *plot {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	p := &plot{img: img, w: w, h: h}

	fontData, err := ioutil.ReadFile(fontPath)
	if err != nil {
		log.Printf("diveplot: no font available (%v), axis labels disabled", err)
		p.noLabel = true
		return p
	}
	font, err := freetype.ParseFont(fontData)
	if err != nil {
		log.Printf("diveplot: bad font (%v), axis labels disabled", err)
		p.noLabel = true
		return p
	}

	ctx := freetype.NewContext()
	ctx.SetDst(img)
	ctx.SetClip(img.Bounds())
	ctx.SetSrc(image.Black)
	ctx.SetFont(font)
	ctx.SetFontSize(11)
	p.ctx = ctx
	return p
}

func (p *plot) label(x, y int, text string) {
	if p.noLabel {
		return
	}
	if _, err := p.ctx.DrawString(text, freetype.Pt(x, y)); err != nil {
		log.Printf("diveplot: label %q: %v", text, err)
	}
}

func (p *plot) done() {}

// axes draws the frame and tick labels for the time/depth axes.
func (p *plot) axes(xAxis, yAxis scale.OutputScale, tScale, dScale scale.Linear, xLabel, yLabel string) {
	black := color.NRGBA{0, 0, 0, 255}
	x0, _ := xAxis.Of(0)
	x1, _ := xAxis.Of(1)
	y0, _ := yAxis.Of(0)
	y1, _ := yAxis.Of(1)

	drawLine(p.img, int(x0), int(y0), int(x1), int(y0), black)
	drawLine(p.img, int(x0), int(y0), int(x0), int(y1), black)

	tMajor, _ := tScale.Ticks(6)
	for _, t := range tMajor {
		if x, ok := xAxis.Of(tScale.Of(t)); ok {
			drawLine(p.img, int(x), int(y0)-3, int(x), int(y0)+3, black)
			p.label(int(x)-10, int(y0)+18, fmt.Sprintf("%g", t))
		}
	}
	dMajor, _ := dScale.Ticks(6)
	for _, d := range dMajor {
		if y, ok := yAxis.Of(dScale.Of(d)); ok {
			drawLine(p.img, int(x0)-3, int(y), int(x0)+3, int(y), black)
			p.label(int(x0)-35, int(y)+4, fmt.Sprintf("%g", d))
		}
	}

	p.label(p.w/2-20, p.h-10, xLabel)
	p.label(5, 15, yLabel)
}

// rightAxis draws tick marks and labels for a second series sharing the
// same time axis but its own value scale, plotted against the right edge.
func (p *plot) rightAxis(xAxis, yAxis scale.OutputScale, vScale scale.Linear, label string) {
	red := color.NRGBA{200, 0, 0, 255}
	x1, _ := xAxis.Of(1)

	major, _ := vScale.Ticks(6)
	for _, v := range major {
		if y, ok := yAxis.Of(vScale.Of(v)); ok {
			drawLine(p.img, int(x1)-3, int(y), int(x1)+3, int(y), red)
			p.label(int(x1)+6, int(y)+4, fmt.Sprintf("%g", v))
		}
	}
	p.label(p.w-60, 15, label)
}

// series draws a polyline through (xs[i], ys[i]) mapped through the
// given domain scales and pixel output scales.
func (p *plot) series(xs, ys []float64, xScale, yScale scale.Linear, xAxis, yAxis scale.OutputScale, c color.Color) {
	var px, py int
	for i := range xs {
		x, _ := xAxis.Of(xScale.Of(xs[i]))
		y, _ := yAxis.Of(yScale.Of(ys[i]))
		if i > 0 {
			drawLine(p.img, px, py, int(x), int(y), c)
		}
		px, py = int(x), int(y)
	}
}

// drawLine rasterizes a line segment with Bresenham's algorithm. No
// antialiasing or line-drawing library ships in the pack, so this is
// the one hand-rolled raster primitive in the tool.
func drawLine(img *image.NRGBA, x0, y0, x1, y1 int, c color.Color) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 >= x1 {
		sx = -1
	}
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy
	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

package viz

import (
	"math"
	"strings"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille pixel grid of Width x Height cells.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the sub-pixel (x, y). The canvas holds (Width*2) x (Height*4)
// sub-pixels with y growing downwards.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Curve draws the polyline through (xs[i], ys[i]) scaled to fill the
// canvas, together with the y = 0 axis when it falls inside the range.
func (c *Canvas) Curve(xs, ys []float64) {
	n := min(len(xs), len(ys))
	if n == 0 {
		return
	}
	xMin, xMax := bounds(xs[:n])
	yMin, yMax := bounds(ys[:n])
	if yMin > 0 {
		yMin = 0
	}
	if yMax < 0 {
		yMax = 0
	}
	w, h := c.Width*2-1, c.Height*4-1
	px := func(x float64) int { return scale(x, xMin, xMax, w) }
	py := func(y float64) int { return h - scale(y, yMin, yMax, h) }

	zero := py(0)
	for x := 0; x <= w; x += 2 {
		c.Set(x, zero)
	}

	x0, y0 := px(xs[0]), py(ys[0])
	for i := 1; i < n; i++ {
		x1, y1 := px(xs[i]), py(ys[i])
		c.DrawLine(x0, y0, x1, y1)
		x0, y0 = x1, y1
	}
}

// VLine draws a dashed vertical line at sub-pixel column x.
func (c *Canvas) VLine(x int) {
	for y := 0; y < c.Height*4; y += 2 {
		c.Set(x, y)
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func bounds(vs []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

func scale(v, lo, hi float64, size int) int {
	if hi <= lo || math.IsNaN(v) {
		return size / 2
	}
	return int(math.Round((v - lo) / (hi - lo) * float64(size)))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

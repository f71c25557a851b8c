// Package pipeline implements the contract package compositing pipeline:
// template resolution, form fill, signature compositing, certificate
// generation, merging, and the asynchronous job lifecycle around them.
package pipeline

import (
	"fmt"
	"strconv"
	"strings"
)

// MMPerPoint converts PDF points (1/72 inch) to millimeters.
const MMPerPoint = 0.352778

// RectMM is a placement rectangle in the renderer's millimeter space,
// expressed as top-left corner plus width and height.
type RectMM struct {
	X float64
	Y float64
	W float64
	H float64
}

// RectToMM converts a placement rectangle from PDF point space (origin
// top-left, y measured from the top) into the renderer's millimeter space.
// pageHeight is the page height in points.
func RectToMM(x1, y1, x2, y2, pageHeight float64) RectMM {
	return RectMM{
		X: x1 * MMPerPoint,
		Y: (pageHeight - y2) * MMPerPoint,
		W: (x2 - x1) * MMPerPoint,
		H: (y2 - y1) * MMPerPoint,
	}
}

// RectFromMM is the inverse of RectToMM.
func RectFromMM(r RectMM, pageHeight float64) (x1, y1, x2, y2 float64) {
	x1 = r.X / MMPerPoint
	x2 = x1 + r.W/MMPerPoint
	y2 = pageHeight - r.Y/MMPerPoint
	y1 = y2 - r.H/MMPerPoint
	return x1, y1, x2, y2
}

// Placement pages authored before numeric page references were enforced
// use written names.
var pageNames = map[string]int{
	"one":   1,
	"two":   2,
	"three": 3,
	"four":  4,
	"five":  5,
}

// PageNumber normalizes a page reference to an integer. Written names from
// the closed vocabulary are mapped directly; anything else is parsed as an
// integer.
func PageNumber(page string) (int, error) {
	p := strings.ToLower(strings.TrimSpace(page))
	if n, ok := pageNames[p]; ok {
		return n, nil
	}
	n, err := strconv.Atoi(p)
	if err != nil {
		return 0, fmt.Errorf("invalid page reference %q", page)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid page number %d", n)
	}
	return n, nil
}

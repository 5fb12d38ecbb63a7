package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	BodyColor = "#fd4"
	FaceColor = "#333"
)

type Circle struct {
	Center r2.Vec
	R      float64
}

// Face places two eyes and a mouth on a ring so they ride along with its
// deformation. Eyes sit a third of the way from the centroid to vertices 0
// and ⌊2N/3⌋; the mouth sits two fifths of the way toward vertex ⌊N/3⌋.
type Face struct {
	Eyes  [2]Circle
	Mouth Circle
}

func FaceFeatures(vertices []r2.Vec, centroid r2.Vec, radius float64) Face {
	n := len(vertices)
	if n == 0 {
		return Face{}
	}
	toward := func(i int, num, den float64) r2.Vec {
		return r2.Add(r2.Scale(num/den, vertices[i]), r2.Scale((den-num)/den, centroid))
	}
	return Face{
		Eyes: [2]Circle{
			{Center: toward(0, 1, 3), R: radius / 8},
			{Center: toward(2*n/3, 1, 3), R: radius / 8},
		},
		Mouth: Circle{Center: toward(n/3, 2, 5), R: radius / 4},
	}
}

// BlobSVG draws the body polygon and face in a width×height view centred on
// the origin, the same frame the simulation uses.
func BlobSVG(vertices []r2.Vec, centroid r2.Vec, radius float64, width, height int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="%d %d %d %d">
<rect x="%d" y="%d" width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, -width/2, -height/2, width, height, -width/2, -height/2))

	if len(vertices) > 0 {
		sb.WriteString(`<polygon stroke="transparent" fill="` + BodyColor + `" points="`)
		for i, v := range vertices {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(fmt.Sprintf("%.2f %.2f", v.X, v.Y))
		}
		sb.WriteString("\"/>\n")

		face := FaceFeatures(vertices, centroid, radius)
		for _, c := range []Circle{face.Eyes[0], face.Eyes[1], face.Mouth} {
			sb.WriteString(fmt.Sprintf(`<circle fill="%s" cx="%.2f" cy="%.2f" r="%.2f"/>
`, FaceColor, c.Center.X, c.Center.Y, c.R))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TraceSVG draws a trajectory as a polyline scaled to fit the view.
func TraceSVG(points []r2.Vec, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	for i, p := range points {
		// simulation y grows downward, as does SVG's
		x := (p.X - minX) / rangeX * float64(width)
		y := (p.Y - minY) / rangeY * float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

// WriteFile writes an SVG document to path, or to stdout when path is "-".
func WriteFile(path, svg string) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	_, err := io.WriteString(w, svg)
	return err
}

package layout

import (
	"math"

	"mindmap/internal/domain"
)

// snap rounds v to the nearest grid point.
func (e *Engine) snap(v float64) float64 {
	return math.Round(v/e.cfg.GridSize) * e.cfg.GridSize
}

// rect is a simple axis-aligned bounding box.
type rect struct {
	x, y, w, h float64
}

func (a rect) intersects(b rect) bool {
	return a.x < b.x+b.w && a.x+a.w > b.x &&
		a.y < b.y+b.h && a.y+a.h > b.y
}

func nodeRect(n domain.Node) rect {
	w, h := domain.DefaultSize(n.Type)
	return rect{n.Position.X, n.Position.Y, w, h}
}

// NextPosition finds the first grid slot where a node of size (newW, newH)
// does not overlap any existing node, scanning rows top-to-bottom.
func (e *Engine) NextPosition(existing []domain.Node, newW, newH float64) domain.Position {
	if len(existing) == 0 {
		return domain.Position{X: e.cfg.CenterX, Y: e.cfg.StartY}
	}

	occupied := make([]rect, len(existing))
	for i, n := range existing {
		r := nodeRect(n)
		occupied[i] = rect{r.x - e.cfg.Padding, r.y - e.cfg.Padding, r.w + e.cfg.Padding*2, r.h + e.cfg.Padding*2}
	}

	candidate := rect{w: newW, h: newH}
	for y := 0.0; y < 100000; y += e.cfg.GridSize {
		for x := 0.0; x < e.cfg.MaxRowW; x += e.cfg.GridSize {
			candidate.x = e.snap(x)
			candidate.y = e.snap(y)

			overlaps := false
			for _, occ := range occupied {
				if candidate.intersects(occ) {
					overlaps = true
					break
				}
			}
			if !overlaps {
				return domain.Position{X: candidate.x, Y: candidate.y}
			}
		}
	}

	// Fallback: place below everything
	maxY := 0.0
	for _, n := range existing {
		r := nodeRect(n)
		if r.y+r.h > maxY {
			maxY = r.y + r.h
		}
	}
	return domain.Position{X: 0, Y: e.snap(maxY + e.cfg.Padding)}
}

func NextPosition(existing []domain.Node, newW, newH float64) domain.Position {
	return defaultEngine.NextPosition(existing, newW, newH)
}

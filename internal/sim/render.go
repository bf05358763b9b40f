package sim

import (
	"strings"

	"github.com/luvdamuzik/MotionPlanningRobots/internal/core"
)

// Render draws a frame as text, one line per grid row starting at y = 0.
// Walls are '#', targets 'T', free cells '.', agents their index modulo 10
// and cells shared by several agents '*'.
func Render(g *core.Grid, f Frame) string {
	occupant := make(map[core.Cell]int, len(f.Positions))
	for i, c := range f.Positions {
		if _, ok := occupant[c]; ok {
			occupant[c] = -1
			continue
		}
		occupant[c] = i
	}

	var b strings.Builder
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := core.Cell{X: x, Y: y}
			if a, ok := occupant[c]; ok {
				if a < 0 {
					b.WriteByte('*')
				} else {
					b.WriteByte(byte('0' + a%10))
				}
				continue
			}
			switch {
			case g.IsTarget(c):
				b.WriteByte('T')
			case g.IsBlocked(c):
				b.WriteByte('#')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Package layout assigns 2-D coordinates to a visible node set.
//
// The solver is a synchronous force simulation: linked nodes attract
// toward a target link distance, all nodes repel each other, everything
// is pulled gently toward the origin, and overlapping nodes are pushed
// apart. Query entry points (depth 0) are pinned at the origin and not
// subject to forces.
//
// There is no animation loop. The simulation is advanced for a fixed
// tick count and the final positions are the answer, which makes layout
// a function from (visible nodes, visible edges, seed) to positions.
// Initial placement of non-anchored nodes is random; the seed is
// injectable so tests can pin the randomness down.
package layout

import (
	"math"
	"math/rand"

	"github.com/graphlens/graphlens/pkg/graph"
)

// Fixed force strengths.
const (
	linkStrength      = 0.7
	centerStrength    = 0.1
	collisionStrength = 0.8
)

// Tick count bounds. The simulation runs 3 ticks per visible node,
// clamped to this range.
const (
	minTicks = 100
	maxTicks = 300
)

// initialSpread is the half-extent of the square in which non-anchored
// nodes are randomly placed before the first tick.
const initialSpread = 400.0

// Params are the size-dependent simulation parameters.
// Larger graphs get longer link distances and stronger repulsion so
// clusters stay readable.
type Params struct {
	LinkDistance    float64
	ChargeStrength  float64
	CollisionRadius float64
}

// ParamsFor returns the simulation parameters for a visible node count.
func ParamsFor(n int) Params {
	switch {
	case n > 50:
		return Params{LinkDistance: 120, ChargeStrength: -300, CollisionRadius: 60}
	case n > 20:
		return Params{LinkDistance: 160, ChargeStrength: -500, CollisionRadius: 80}
	default:
		return Params{LinkDistance: 200, ChargeStrength: -700, CollisionRadius: 80}
	}
}

// Ticks returns the clamped tick count for a visible node count.
func Ticks(n int) int {
	return min(max(3*n, minTicks), maxTicks)
}

// Point is a 2-D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Options configures a layout run.
type Options struct {
	// Seed drives the random initial placement of non-anchored nodes.
	// The same seed, nodes, and edges produce identical positions.
	Seed int64
}

// Compute runs the simulation to completion and returns a position for
// every input node. Nodes are never omitted: non-finite coordinates
// produced by the simulation fall back to zero per axis.
//
// Edges referencing IDs outside the node set are ignored; callers are
// expected to pass the already-filtered visible subset.
func Compute(nodes []graph.Node, edges []graph.Edge, opts Options) map[string]Point {
	n := len(nodes)
	if n == 0 {
		return map[string]Point{}
	}

	params := ParamsFor(n)
	rng := rand.New(rand.NewSource(opts.Seed))

	index := make(map[string]int, n)
	for i := range nodes {
		index[nodes[i].ID] = i
	}

	px := make([]float64, n)
	py := make([]float64, n)
	vx := make([]float64, n)
	vy := make([]float64, n)
	pinned := make([]bool, n)
	degree := make([]int, n)

	for i := range nodes {
		if nodes[i].Depth == 0 {
			pinned[i] = true // anchored at the origin
			continue
		}
		px[i] = (rng.Float64()*2 - 1) * initialSpread
		py[i] = (rng.Float64()*2 - 1) * initialSpread
	}

	type link struct{ src, dst int }
	var links []link
	for _, e := range edges {
		s, okS := index[e.Source]
		d, okD := index[e.Target]
		if !okS || !okD || s == d {
			continue
		}
		links = append(links, link{s, d})
		degree[s]++
		degree[d]++
	}

	ticks := Ticks(n)
	alpha := 1.0
	alphaDecay := 1 - math.Pow(0.001, 1/float64(ticks))
	const velocityDecay = 0.6

	jiggle := func() float64 { return (rng.Float64() - 0.5) * 1e-6 }

	for tick := 0; tick < ticks; tick++ {
		alpha += (0 - alpha) * alphaDecay

		// Link force: springs toward the target distance, biased so the
		// lighter endpoint moves more.
		for _, l := range links {
			dx := px[l.dst] + vx[l.dst] - px[l.src] - vx[l.src]
			dy := py[l.dst] + vy[l.dst] - py[l.src] - vy[l.src]
			if dx == 0 {
				dx = jiggle()
			}
			if dy == 0 {
				dy = jiggle()
			}
			dist := math.Hypot(dx, dy)
			f := (dist - params.LinkDistance) / dist * alpha * linkStrength
			dx, dy = dx*f, dy*f
			bias := float64(degree[l.src]) / float64(degree[l.src]+degree[l.dst])
			vx[l.dst] -= dx * bias
			vy[l.dst] -= dy * bias
			vx[l.src] += dx * (1 - bias)
			vy[l.src] += dy * (1 - bias)
		}

		// Charge force: pairwise repulsion.
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx := px[j] - px[i]
				dy := py[j] - py[i]
				if dx == 0 {
					dx = jiggle()
				}
				if dy == 0 {
					dy = jiggle()
				}
				d2 := max(dx*dx+dy*dy, 1) // clamp so coincident nodes don't explode
				f := params.ChargeStrength * alpha / d2
				vx[i] += dx * f
				vy[i] += dy * f
				vx[j] -= dx * f
				vy[j] -= dy * f
			}
		}

		// Centering: gentle pull toward the origin.
		for i := 0; i < n; i++ {
			vx[i] -= px[i] * centerStrength * alpha
			vy[i] -= py[i] * centerStrength * alpha
		}

		// Collision: push overlapping nodes apart.
		r2 := params.CollisionRadius * 2
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				dx := px[j] - px[i]
				dy := py[j] - py[i]
				if dx == 0 {
					dx = jiggle()
				}
				if dy == 0 {
					dy = jiggle()
				}
				dist := math.Hypot(dx, dy)
				if dist >= r2 {
					continue
				}
				overlap := (r2 - dist) / dist * collisionStrength * 0.5
				vx[i] -= dx * overlap
				vy[i] -= dy * overlap
				vx[j] += dx * overlap
				vy[j] += dy * overlap
			}
		}

		// Integrate. Pinned nodes stay exactly at the origin.
		for i := 0; i < n; i++ {
			if pinned[i] {
				px[i], py[i] = 0, 0
				vx[i], vy[i] = 0, 0
				continue
			}
			vx[i] *= velocityDecay
			vy[i] *= velocityDecay
			px[i] += vx[i]
			py[i] += vy[i]
		}
	}

	out := make(map[string]Point, n)
	for i := range nodes {
		out[nodes[i].ID] = Point{X: finite(px[i]), Y: finite(py[i])}
	}
	return out
}

// finite guards against numerical blow-ups: a NaN or infinite
// coordinate falls back to zero so no node is ever lost.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

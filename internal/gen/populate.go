package gen

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"cosmos-server/internal/cosmos"
	"cosmos-server/internal/randx"
)

// Options tune the population engine.
type Options struct {
	// MaxChildren caps how many children one Populate call adds.
	MaxChildren int
	// PlacementRetries bounds the rejection sampling per child before
	// it is skipped.
	PlacementRetries int
	// Parallel generates children concurrently.
	Parallel bool
}

func DefaultOptions() Options {
	return Options{
		MaxChildren:      64,
		PlacementRetries: 12,
		Parallel:         true,
	}
}

// Engine fills regions with children according to their child
// definitions.
type Engine struct {
	opts   Options
	logger *slog.Logger
}

func NewEngine(opts Options, logger *slog.Logger) *Engine {
	defaults := DefaultOptions()
	if opts.MaxChildren <= 0 {
		opts.MaxChildren = defaults.MaxChildren
	}
	if opts.PlacementRetries <= 0 {
		opts.PlacementRetries = defaults.PlacementRetries
	}
	return &Engine{
		opts:   opts,
		logger: logger.With("component", "population_engine"),
	}
}

type placedChild struct {
	pos   cosmos.Vector3
	space float64
}

type spawnTask struct {
	def  ChildDefinition
	seed int64
	pos  cosmos.Vector3
}

// Populate runs one level of population on a region: sample how many of
// each child kind it should hold, scatter them through its shape
// without overlap, generate them, attach them, and put them in orbit
// around the region's anchor. Generation may run in parallel, but every
// random draw happens on the caller's stream in draw order and each
// child is built from its own pre-drawn seed, so the result is
// identical either way.
//
// Children of debris fields are attached to the node their anchor sits
// under rather than to the field itself, keeping every member of a
// system in the same frame.
func (e *Engine) Populate(parent *cosmos.Location, rng *randx.Source) ([]*cosmos.Location, error) {
	if parent == nil {
		return nil, fmt.Errorf("populate: nil parent: %w", cosmos.ErrInvalidConfiguration)
	}
	if !parent.Type.IsRegion() {
		return nil, fmt.Errorf("populate %q: type %q is not a region: %w", parent.Name, parent.Type, cosmos.ErrInvalidConfiguration)
	}
	defs := childDefinitionsFor(parent)
	if len(defs) == 0 {
		return nil, nil
	}

	anchor := orbitAnchor(parent)

	attachTo := parent
	var offset cosmos.Vector3
	if parent.Type == cosmos.StructureAsteroidField || parent.Type == cosmos.StructureOortCloud {
		if anchor != nil && anchor.Parent() != nil {
			attachTo = anchor.Parent()
			off, err := cosmos.PositionIn(parent, attachTo)
			if err != nil {
				return nil, err
			}
			offset = off
		}
	}

	counts := e.sampleCounts(parent, defs, rng)

	var placed []placedChild
	var tasks []spawnTask
	skipped := 0
	for i, def := range defs {
		for n := 0; n < counts[i]; n++ {
			pos, ok := e.placeChild(parent, def, placed, rng)
			if !ok {
				skipped++
				continue
			}
			placed = append(placed, placedChild{pos: pos, space: def.Space})
			tasks = append(tasks, spawnTask{def: def, seed: rng.Int64(), pos: pos})
		}
	}
	if skipped > 0 {
		e.logger.Warn("Placement retries exhausted, skipping children",
			"location", parent.Name,
			"type", parent.Type,
			"skipped", skipped)
	}

	children := make([]*cosmos.Location, len(tasks))
	spawnOne := func(i int) error {
		task := tasks[i]
		child, err := task.def.Spawn(task.seed, SpawnContext{
			Parent:   attachTo,
			Anchor:   anchor,
			Position: task.pos.Add(offset),
		})
		if err != nil {
			return fmt.Errorf("spawning %s in %q: %w", task.def.Type, parent.Name, err)
		}
		child.Position = task.pos.Add(offset)
		children[i] = child
		return nil
	}
	if e.opts.Parallel && len(tasks) > 1 {
		var group errgroup.Group
		group.SetLimit(runtime.GOMAXPROCS(0))
		for i := range tasks {
			group.Go(func() error { return spawnOne(i) })
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range tasks {
			if err := spawnOne(i); err != nil {
				return nil, err
			}
		}
	}

	// Attachment and orbit assignment stay serial so the rng stream is
	// consumed in task order.
	for i, child := range children {
		attachTo.AddChild(child)
		def := tasks[i].def
		if anchor == nil || !child.Type.CanOrbit() {
			continue
		}
		rel, err := cosmos.PositionIn(child, anchor)
		if err != nil {
			return nil, err
		}
		if rel.IsZero() {
			continue
		}
		ecc := rng.Float64Between(def.MinEccentricity, def.MaxEccentricity)
		orbit, err := cosmos.EccentricOrbit(rng, child.Mass(), anchor.Mass(), rel, ecc, def.MaxInclination)
		if err != nil {
			return nil, err
		}
		if err := cosmos.AssignOrbit(child, anchor, orbit); err != nil {
			return nil, err
		}
	}

	e.logger.Debug("Populated location",
		"location", parent.Name,
		"type", parent.Type,
		"children", len(children))
	return children, nil
}

// PopulateTree cascades population breadth-first from root. Every
// region reached is populated exactly once, including regions created
// along the way, so a bare universe fills in all the way down to
// individual rocks. Star systems are laid out by their own generator
// and pass through untouched. Returns how many children the engine
// attached.
//
// The caller's stream drives the root's own population; every deeper
// region draws from a stream seeded by its own Seed, so any region's
// recorded seed reproduces its subtree on its own.
func (e *Engine) PopulateTree(root *cosmos.Location, rng *randx.Source) (int, error) {
	if root == nil {
		return 0, fmt.Errorf("populate tree: nil root: %w", cosmos.ErrInvalidConfiguration)
	}
	total := 0
	queue := []*cosmos.Location{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node.Type.IsRegion() && node.Type != cosmos.StructureStarSystem {
			stream := rng
			if node != root {
				stream = randx.New(node.Seed)
			}
			children, err := e.Populate(node, stream)
			if err != nil {
				return total, err
			}
			total += len(children)
		}
		queue = append(queue, node.Children()...)
	}
	return total, nil
}

// sampleCounts draws a count for each definition from the region
// volume, then scales the whole mix down proportionally when it would
// blow the per-call cap, so abundance ratios survive capping.
func (e *Engine) sampleCounts(parent *cosmos.Location, defs []ChildDefinition, rng *randx.Source) []int {
	volume := parent.Volume()
	counts := make([]int, len(defs))
	total := 0
	for i, def := range defs {
		expected := volume * def.Density
		if expected <= 0 {
			continue
		}
		n := int(math.Round(rng.Normal(expected, math.Sqrt(expected))))
		if n < 0 {
			n = 0
		}
		counts[i] = n
		total += n
	}
	if total > e.opts.MaxChildren {
		scale := float64(e.opts.MaxChildren) / float64(total)
		for i := range counts {
			counts[i] = int(float64(counts[i]) * scale)
		}
	}
	return counts
}

func (e *Engine) placeChild(parent *cosmos.Location, def ChildDefinition, placed []placedChild, rng *randx.Source) (cosmos.Vector3, bool) {
	for try := 0; try < e.opts.PlacementRetries; try++ {
		pos := parent.Material.Shape.RandomPointWithin(rng)
		if !overlaps(pos, def.Space, placed) {
			return pos, true
		}
	}
	return cosmos.Vector3{}, false
}

func overlaps(pos cosmos.Vector3, space float64, placed []placedChild) bool {
	for _, p := range placed {
		if pos.DistanceTo(p.pos) < math.Max(space, p.space) {
			return true
		}
	}
	return false
}

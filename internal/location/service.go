package location

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"cosmos-server/internal/cosmos"
	"cosmos-server/internal/gen"
	"cosmos-server/internal/randx"
	"cosmos-server/internal/shared/config"
	apperrors "cosmos-server/internal/shared/errors"
)

// Service generates celestial hierarchies and serves them back out of
// the database, keeping the stored rows and the in-memory trees in
// step.
type Service struct {
	repo   *Repository
	cache  *Cache
	engine *gen.Engine
	logger *slog.Logger
}

func NewService(repo *Repository, cache *Cache, logger *slog.Logger) *Service {
	logger.Debug("Initializing location service")

	genConfig := config.GlobalConfig.Generation
	engine := gen.NewEngine(gen.Options{
		MaxChildren:      genConfig.MaxChildren,
		PlacementRetries: genConfig.PlacementRetries,
		Parallel:         genConfig.Parallel,
	}, logger)

	return &Service{
		repo:   repo,
		cache:  cache,
		engine: engine,
		logger: logger,
	}
}

// mapDomainError keeps generation and hierarchy failures that stem from
// bad input out of the 500 bucket.
func mapDomainError(message string, err error) error {
	switch {
	case errors.Is(err, cosmos.ErrInvalidConfiguration),
		errors.Is(err, cosmos.ErrMissingOrbitalContext),
		errors.Is(err, cosmos.ErrDisjointHierarchy):
		return apperrors.WrapValidation(message, err)
	default:
		return apperrors.WrapInternal(message, err)
	}
}

// GenerateRegion creates a new top-level region and persists it. With
// Cascade set the population engine fills the whole subtree before
// anything is stored. The same seed always yields the same tree, ids
// included.
func (s *Service) GenerateRegion(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	seed := rand.Int64()
	if req.Seed != nil {
		seed = *req.Seed
	}

	logger := s.logger.With(
		"component", "location_service",
		"operation", "generate_region",
		"structure_type", req.Type,
		"seed", seed,
	)

	root, err := s.newRegion(seed, req)
	if err != nil {
		return nil, mapDomainError("failed to generate region", err)
	}

	if req.Cascade {
		added, err := s.engine.PopulateTree(root, randx.New(seed))
		if err != nil {
			return nil, mapDomainError("failed to populate region", err)
		}
		logger.Debug("Cascade complete", "added", added)
	}

	rows := FlattenTree(root)
	if _, err := s.repo.CreateLocationsBatch(ctx, rows, nil); err != nil {
		if IsUniqueViolation(err) {
			return nil, apperrors.Conflictf("seed %d already generated these locations", seed)
		}
		return nil, apperrors.WrapInternal("failed to persist generated region", err)
	}

	logger.Info("Region generated",
		"root_id", root.ID,
		"name", root.Name,
		"node_count", len(rows))

	return &GenerateResult{
		Root:      &rows[0],
		NodeCount: len(rows),
		Seed:      seed,
	}, nil
}

func (s *Service) newRegion(seed int64, req GenerateRequest) (*cosmos.Location, error) {
	switch req.Type {
	case cosmos.StructureUniverse:
		name := req.Name
		if name == "" {
			name = config.GlobalConfig.Generation.UniverseName
		}
		return gen.NewUniverse(seed, gen.UniverseParams{
			Name:   name,
			Radius: config.GlobalConfig.Generation.UniverseRadius,
		})
	case cosmos.StructureGalaxy:
		return gen.NewGalaxy(seed, gen.GalaxyParams{Name: req.Name})
	case cosmos.StructureGlobularCluster:
		return gen.NewGlobularCluster(seed, gen.ClusterParams{Name: req.Name})
	case cosmos.StructureNebula:
		return gen.NewNebula(seed, gen.NebulaParams{Name: req.Name})
	case cosmos.StructureStarSystem:
		return gen.NewStarSystem(seed, gen.SystemParams{Name: req.Name})
	case cosmos.StructureAsteroidField:
		return gen.NewAsteroidField(seed, gen.FieldParams{Name: req.Name})
	case cosmos.StructureOortCloud:
		return gen.NewOortCloud(seed, gen.CloudParams{Name: req.Name})
	default:
		return nil, fmt.Errorf("structure type %q cannot be generated standalone: %w", req.Type, cosmos.ErrInvalidConfiguration)
	}
}

// Populate runs one population pass on an existing region, persisting
// whatever the engine adds. Reusing a seed that already populated the
// same region collides on the generated ids and reports a conflict.
func (s *Service) Populate(ctx context.Context, id uuid.UUID, reqSeed *int64) (*PopulateResult, error) {
	seed := rand.Int64()
	if reqSeed != nil {
		seed = *reqSeed
	}

	logger := s.logger.With(
		"component", "location_service",
		"operation", "populate",
		"location_id", id,
		"seed", seed,
	)

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.WrapInternal("failed to load location", err)
	}
	if row == nil {
		return nil, apperrors.NotFoundf("location %s not found", id)
	}

	rows, err := s.repo.GetTree(ctx, row.RootID)
	if err != nil {
		return nil, apperrors.WrapInternal("failed to load hierarchy", err)
	}
	root, err := BuildTree(rows)
	if err != nil {
		return nil, mapDomainError("failed to rebuild hierarchy", err)
	}
	node := cosmos.FindByID(root, id)
	if node == nil {
		return nil, apperrors.NotFoundf("location %s not found", id)
	}

	children, err := s.engine.Populate(node, randx.New(seed))
	if err != nil {
		return nil, mapDomainError("failed to populate location", err)
	}
	if len(children) == 0 {
		return &PopulateResult{Parent: row, Seed: seed}, nil
	}

	// Debris-field members may have been attached next to the field
	// rather than under it, so flatten each new child's subtree on its
	// own.
	var newRows []Location
	for _, child := range children {
		newRows = append(newRows, FlattenTree(child)...)
	}

	if _, err := s.repo.CreateLocationsBatch(ctx, newRows, nil); err != nil {
		if IsUniqueViolation(err) {
			return nil, apperrors.Conflictf("seed %d already populated location %s", seed, id)
		}
		return nil, apperrors.WrapInternal("failed to persist generated locations", err)
	}

	touched := map[uuid.UUID]struct{}{id: {}}
	for i := range newRows {
		if newRows[i].ParentID != nil {
			touched[*newRows[i].ParentID] = struct{}{}
		}
	}
	invalidate := make([]uuid.UUID, 0, len(touched))
	for tid := range touched {
		invalidate = append(invalidate, tid)
	}
	s.cache.Invalidate(ctx, invalidate...)

	parent := FromNode(node)
	parent.CreatedAt = row.CreatedAt
	parent.UpdatedAt = row.UpdatedAt

	logger.Info("Location populated", "added", len(children), "node_count", len(newRows))

	return &PopulateResult{
		Parent:    parent,
		Added:     len(children),
		NodeCount: len(newRows),
		Seed:      seed,
	}, nil
}

// Get returns one location with its root-frame position chain
// attached.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Location, error) {
	if cached := s.cache.Get(ctx, id); cached != nil {
		return cached, nil
	}

	path, err := s.repo.GetPath(ctx, id)
	if err != nil {
		return nil, apperrors.WrapInternal("failed to load location", err)
	}
	if len(path) == 0 {
		return nil, apperrors.NotFoundf("location %s not found", id)
	}

	root, err := BuildTree(path)
	if err != nil {
		return nil, mapDomainError("failed to rebuild ancestry", err)
	}
	node := cosmos.FindByID(root, id)
	if node == nil {
		return nil, apperrors.NotFoundf("location %s not found", id)
	}

	loc := path[len(path)-1]
	loc.AbsolutePositions = node.AbsolutePositionChain()

	s.cache.Set(ctx, &loc)
	return &loc, nil
}

func (s *Service) GetChildren(ctx context.Context, id uuid.UUID) ([]Location, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.WrapInternal("failed to load location", err)
	}
	if row == nil {
		return nil, apperrors.NotFoundf("location %s not found", id)
	}

	children, err := s.repo.GetChildren(ctx, id)
	if err != nil {
		return nil, apperrors.WrapInternal("failed to load children", err)
	}
	if children == nil {
		children = []Location{}
	}
	return children, nil
}

// GetSubtree returns a location and its descendants, parents before
// children. maxDepth bounds the walk; zero or negative means the whole
// subtree.
func (s *Service) GetSubtree(ctx context.Context, id uuid.UUID, maxDepth int) ([]Location, error) {
	rows, err := s.repo.GetSubtree(ctx, id, maxDepth)
	if err != nil {
		return nil, apperrors.WrapInternal("failed to load subtree", err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NotFoundf("location %s not found", id)
	}
	return rows, nil
}

// GetAncestors returns a location's ancestors, root first. Roots have
// none.
func (s *Service) GetAncestors(ctx context.Context, id uuid.UUID) ([]Location, error) {
	path, err := s.repo.GetPath(ctx, id)
	if err != nil {
		return nil, apperrors.WrapInternal("failed to load ancestors", err)
	}
	if len(path) == 0 {
		return nil, apperrors.NotFoundf("location %s not found", id)
	}
	return path[:len(path)-1], nil
}

func (s *Service) GetRoots(ctx context.Context) ([]Location, error) {
	roots, err := s.repo.GetRoots(ctx)
	if err != nil {
		return nil, apperrors.WrapInternal("failed to load roots", err)
	}
	if roots == nil {
		roots = []Location{}
	}
	return roots, nil
}

// Distance measures the separation between two location centers. Both
// must live in the same hierarchy.
func (s *Service) Distance(ctx context.Context, fromID, toID uuid.UUID) (*DistanceResult, error) {
	pathFrom, err := s.repo.GetPath(ctx, fromID)
	if err != nil {
		return nil, apperrors.WrapInternal("failed to load location", err)
	}
	if len(pathFrom) == 0 {
		return nil, apperrors.NotFoundf("location %s not found", fromID)
	}

	pathTo, err := s.repo.GetPath(ctx, toID)
	if err != nil {
		return nil, apperrors.WrapInternal("failed to load location", err)
	}
	if len(pathTo) == 0 {
		return nil, apperrors.NotFoundf("location %s not found", toID)
	}

	if pathFrom[0].ID != pathTo[0].ID {
		return nil, apperrors.Validationf("locations %s and %s belong to different hierarchies", fromID, toID)
	}

	// The two ancestor chains meet at the root, so together they form
	// one connected tree that is enough to measure through.
	seen := make(map[uuid.UUID]struct{}, len(pathFrom))
	merged := make([]Location, 0, len(pathFrom)+len(pathTo))
	for _, row := range pathFrom {
		seen[row.ID] = struct{}{}
		merged = append(merged, row)
	}
	for _, row := range pathTo {
		if _, ok := seen[row.ID]; !ok {
			merged = append(merged, row)
		}
	}

	root, err := BuildTree(merged)
	if err != nil {
		return nil, mapDomainError("failed to rebuild hierarchy", err)
	}

	meters, err := cosmos.DistanceBetween(cosmos.FindByID(root, fromID), cosmos.FindByID(root, toID))
	if err != nil {
		return nil, mapDomainError("failed to measure distance", err)
	}

	return &DistanceResult{
		FromID: fromID,
		ToID:   toID,
		Meters: meters,
	}, nil
}

// Advance propagates a location along its orbit by the elapsed seconds
// and persists the new state. Negative values move backwards in time.
func (s *Service) Advance(ctx context.Context, id uuid.UUID, seconds float64) (*Location, error) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return nil, apperrors.Validation("seconds must be a finite number")
	}

	logger := s.logger.With(
		"component", "location_service",
		"operation", "advance",
		"location_id", id,
		"seconds", seconds,
	)

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.WrapInternal("failed to load location", err)
	}
	if row == nil {
		return nil, apperrors.NotFoundf("location %s not found", id)
	}
	if row.Orbit == nil {
		return nil, apperrors.Validationf("location %q has no orbit to advance", row.Name)
	}

	// The orbited body can be a sibling rather than an ancestor, so the
	// whole tree comes along for the rebase.
	rows, err := s.repo.GetTree(ctx, row.RootID)
	if err != nil {
		return nil, apperrors.WrapInternal("failed to load hierarchy", err)
	}
	root, err := BuildTree(rows)
	if err != nil {
		return nil, mapDomainError("failed to rebuild hierarchy", err)
	}
	node := cosmos.FindByID(root, id)
	if node == nil {
		return nil, apperrors.NotFoundf("location %s not found", id)
	}

	if err := cosmos.AdvanceOrbit(node, seconds); err != nil {
		return nil, mapDomainError("failed to advance orbit", err)
	}

	updated := *row
	updated.Position = node.Position
	updated.Velocity = node.Velocity
	orbit := *node.Orbit
	updated.Orbit = &orbit

	if err := s.repo.UpdateState(ctx, &updated, nil); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("location %s not found", id)
		}
		return nil, apperrors.WrapInternal("failed to persist orbital state", err)
	}

	s.cache.Invalidate(ctx, id)
	logger.Debug("Orbit advanced", "true_anomaly", orbit.TrueAnomaly)

	return &updated, nil
}

// Delete removes a location and its whole subtree, returning how many
// nodes went away.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (int, error) {
	logger := s.logger.With(
		"component", "location_service",
		"operation", "delete",
		"location_id", id,
	)

	ids, err := s.repo.GetSubtreeIDs(ctx, id)
	if err != nil {
		return 0, apperrors.WrapInternal("failed to load subtree", err)
	}
	if len(ids) == 0 {
		return 0, apperrors.NotFoundf("location %s not found", id)
	}

	if err := s.repo.DeleteSubtree(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperrors.NotFoundf("location %s not found", id)
		}
		return 0, apperrors.WrapInternal("failed to delete location", err)
	}

	s.cache.Invalidate(ctx, ids...)
	logger.Info("Location deleted", "removed", len(ids))
	return len(ids), nil
}

package location

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"cosmos-server/internal/cosmos"
	"cosmos-server/internal/shared/database"
)

// IsUniqueViolation reports whether err is a Postgres duplicate-key
// error.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	logger.Debug("Initializing location repository")

	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) getExecutor(tx *database.Tx) database.Executor {
	if tx != nil {
		return tx
	}
	return r.db
}

// locationColumns is the read column list shared by every query; scans
// must match its order. child_count is computed, not stored.
const locationColumns = `
	l.id, l.parent_id, l.root_id, l.structure_type, l.name,
	l.pos_x, l.pos_y, l.pos_z, l.vel_x, l.vel_y, l.vel_z,
	l.mass, l.density, l.temperature, l.albedo,
	l.shape_kind, l.shape_a, l.shape_b, l.shape_c,
	l.composition, l.layers, l.rings,
	l.orbited_id, l.orbited_mass, l.semi_major_axis, l.eccentricity,
	l.inclination, l.ascending_node, l.arg_periapsis, l.true_anomaly,
	l.seed, l.child_index,
	(SELECT COUNT(*) FROM locations c WHERE c.parent_id = l.id) AS child_count,
	l.created_at, l.updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLocation(row rowScanner) (*Location, error) {
	var (
		loc           Location
		parentID      uuid.NullUUID
		temperature   sql.NullFloat64
		composition   []byte
		layers        []byte
		rings         []byte
		orbitedID     uuid.NullUUID
		orbitedMass   sql.NullFloat64
		semiMajorAxis sql.NullFloat64
		eccentricity  sql.NullFloat64
		inclination   sql.NullFloat64
		ascendingNode sql.NullFloat64
		argPeriapsis  sql.NullFloat64
		trueAnomaly   sql.NullFloat64
	)

	err := row.Scan(
		&loc.ID, &parentID, &loc.RootID, &loc.Type, &loc.Name,
		&loc.Position.X, &loc.Position.Y, &loc.Position.Z,
		&loc.Velocity.X, &loc.Velocity.Y, &loc.Velocity.Z,
		&loc.Mass, &loc.Density, &temperature, &loc.Albedo,
		&loc.Shape.Kind, &loc.Shape.A, &loc.Shape.B, &loc.Shape.C,
		&composition, &layers, &rings,
		&orbitedID, &orbitedMass, &semiMajorAxis, &eccentricity,
		&inclination, &ascendingNode, &argPeriapsis, &trueAnomaly,
		&loc.Seed, &loc.ChildIndex, &loc.ChildCount,
		&loc.CreatedAt, &loc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if parentID.Valid {
		id := parentID.UUID
		loc.ParentID = &id
	}
	if temperature.Valid {
		t := temperature.Float64
		loc.Temperature = &t
	}
	if len(composition) > 0 {
		if err := json.Unmarshal(composition, &loc.Composition); err != nil {
			return nil, fmt.Errorf("failed to decode composition: %w", err)
		}
	}
	if len(layers) > 0 {
		if err := json.Unmarshal(layers, &loc.Layers); err != nil {
			return nil, fmt.Errorf("failed to decode layers: %w", err)
		}
	}
	if len(rings) > 0 {
		if err := json.Unmarshal(rings, &loc.Rings); err != nil {
			return nil, fmt.Errorf("failed to decode rings: %w", err)
		}
	}
	if orbitedID.Valid {
		loc.Orbit = &cosmos.Orbit{
			OrbitedID:     orbitedID.UUID,
			OrbitedMass:   orbitedMass.Float64,
			SemiMajorAxis: semiMajorAxis.Float64,
			Eccentricity:  eccentricity.Float64,
			Inclination:   inclination.Float64,
			AscendingNode: ascendingNode.Float64,
			ArgPeriapsis:  argPeriapsis.Float64,
			TrueAnomaly:   trueAnomaly.Float64,
			GravParam:     cosmos.G * (orbitedMass.Float64 + loc.Mass),
		}
	}

	return &loc, nil
}

func (r *Repository) scanLocations(rows *sql.Rows) ([]Location, error) {
	var locations []Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, *loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}
	return locations, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Location, error) {
	logger := r.logger.With("component", "location_repository", "operation", "get_by_id", "location_id", id)

	query := `SELECT ` + locationColumns + ` FROM locations l WHERE l.id = $1`

	loc, err := scanLocation(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logger.Error("Failed to get location", "error", err)
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	return loc, nil
}

func (r *Repository) GetChildren(ctx context.Context, id uuid.UUID) ([]Location, error) {
	logger := r.logger.With("component", "location_repository", "operation", "get_children", "location_id", id)

	query := `SELECT ` + locationColumns + ` FROM locations l WHERE l.parent_id = $1 ORDER BY l.child_index, l.id`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		logger.Error("Failed to query children", "error", err)
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	return r.scanLocations(rows)
}

// GetPath returns a node together with all of its ancestors, root
// first.
func (r *Repository) GetPath(ctx context.Context, id uuid.UUID) ([]Location, error) {
	logger := r.logger.With("component", "location_repository", "operation", "get_path", "location_id", id)

	query := `
		WITH RECURSIVE path AS (
			SELECT id, parent_id, 0 AS height FROM locations WHERE id = $1
			UNION ALL
			SELECT l.id, l.parent_id, p.height + 1 FROM locations l
			JOIN path p ON l.id = p.parent_id
		)
		SELECT ` + locationColumns + `
		FROM locations l
		JOIN path p ON l.id = p.id
		ORDER BY p.height DESC`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		logger.Error("Failed to query path", "error", err)
		return nil, fmt.Errorf("failed to query path: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	return r.scanLocations(rows)
}

// GetSubtree returns a node and its descendants, parents before
// children. maxDepth limits how deep below the node the walk goes;
// zero or negative means unlimited.
func (r *Repository) GetSubtree(ctx context.Context, id uuid.UUID, maxDepth int) ([]Location, error) {
	logger := r.logger.With("component", "location_repository", "operation", "get_subtree", "location_id", id, "max_depth", maxDepth)

	query := `
		WITH RECURSIVE subtree AS (
			SELECT id, 0 AS depth FROM locations WHERE id = $1
			UNION ALL
			SELECT l.id, s.depth + 1 FROM locations l
			JOIN subtree s ON l.parent_id = s.id
			WHERE $2 <= 0 OR s.depth < $2
		)
		SELECT ` + locationColumns + `
		FROM locations l
		JOIN subtree s ON l.id = s.id
		ORDER BY s.depth, l.child_index, l.id`

	rows, err := r.db.QueryContext(ctx, query, id, maxDepth)
	if err != nil {
		logger.Error("Failed to query subtree", "error", err)
		return nil, fmt.Errorf("failed to query subtree: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	locations, err := r.scanLocations(rows)
	if err != nil {
		return nil, err
	}

	logger.Debug("Subtree retrieved", "count", len(locations))
	return locations, nil
}

// GetTree returns every node sharing a root, parents before children.
func (r *Repository) GetTree(ctx context.Context, rootID uuid.UUID) ([]Location, error) {
	return r.GetSubtree(ctx, rootID, 0)
}

// GetSubtreeIDs lists the ids of a node and all its descendants.
func (r *Repository) GetSubtreeIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	logger := r.logger.With("component", "location_repository", "operation", "get_subtree_ids", "location_id", id)

	query := `
		WITH RECURSIVE subtree AS (
			SELECT id FROM locations WHERE id = $1
			UNION ALL
			SELECT l.id FROM locations l JOIN subtree s ON l.parent_id = s.id
		)
		SELECT id FROM subtree`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		logger.Error("Failed to query subtree ids", "error", err)
		return nil, fmt.Errorf("failed to query subtree ids: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan location id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating location ids: %w", err)
	}
	return ids, nil
}

// GetRoots lists all top-level locations.
func (r *Repository) GetRoots(ctx context.Context) ([]Location, error) {
	logger := r.logger.With("component", "location_repository", "operation", "get_roots")

	query := `SELECT ` + locationColumns + ` FROM locations l WHERE l.parent_id IS NULL ORDER BY l.created_at, l.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("Failed to query roots", "error", err)
		return nil, fmt.Errorf("failed to query roots: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("Failed to close rows", "error", err)
		}
	}()

	return r.scanLocations(rows)
}

// insertRow mirrors the locations table for the JSON batch insert.
type insertRow struct {
	ID            string          `json:"id"`
	ParentID      *string         `json:"parent_id,omitempty"`
	RootID        string          `json:"root_id"`
	Type          string          `json:"structure_type"`
	Name          string          `json:"name"`
	PosX          float64         `json:"pos_x"`
	PosY          float64         `json:"pos_y"`
	PosZ          float64         `json:"pos_z"`
	VelX          float64         `json:"vel_x"`
	VelY          float64         `json:"vel_y"`
	VelZ          float64         `json:"vel_z"`
	Mass          float64         `json:"mass"`
	Density       float64         `json:"density"`
	Temperature   *float64        `json:"temperature,omitempty"`
	Albedo        float64         `json:"albedo"`
	ShapeKind     string          `json:"shape_kind"`
	ShapeA        float64         `json:"shape_a"`
	ShapeB        float64         `json:"shape_b"`
	ShapeC        float64         `json:"shape_c"`
	Composition   json.RawMessage `json:"composition,omitempty"`
	Layers        json.RawMessage `json:"layers,omitempty"`
	Rings         json.RawMessage `json:"rings,omitempty"`
	OrbitedID     *string         `json:"orbited_id,omitempty"`
	OrbitedMass   *float64        `json:"orbited_mass,omitempty"`
	SemiMajorAxis *float64        `json:"semi_major_axis,omitempty"`
	Eccentricity  *float64        `json:"eccentricity,omitempty"`
	Inclination   *float64        `json:"inclination,omitempty"`
	AscendingNode *float64        `json:"ascending_node,omitempty"`
	ArgPeriapsis  *float64        `json:"arg_periapsis,omitempty"`
	TrueAnomaly   *float64        `json:"true_anomaly,omitempty"`
	Seed          int64           `json:"seed"`
	ChildIndex    int             `json:"child_index"`
}

func toInsertRow(loc *Location) (insertRow, error) {
	row := insertRow{
		ID:          loc.ID.String(),
		RootID:      loc.RootID.String(),
		Type:        string(loc.Type),
		Name:        loc.Name,
		PosX:        loc.Position.X,
		PosY:        loc.Position.Y,
		PosZ:        loc.Position.Z,
		VelX:        loc.Velocity.X,
		VelY:        loc.Velocity.Y,
		VelZ:        loc.Velocity.Z,
		Mass:        loc.Mass,
		Density:     loc.Density,
		Temperature: loc.Temperature,
		Albedo:      loc.Albedo,
		ShapeKind:   string(loc.Shape.Kind),
		ShapeA:      loc.Shape.A,
		ShapeB:      loc.Shape.B,
		ShapeC:      loc.Shape.C,
		Seed:        loc.Seed,
		ChildIndex:  loc.ChildIndex,
	}
	if loc.ParentID != nil {
		s := loc.ParentID.String()
		row.ParentID = &s
	}
	if len(loc.Composition) > 0 {
		data, err := json.Marshal(loc.Composition)
		if err != nil {
			return row, fmt.Errorf("failed to encode composition: %w", err)
		}
		row.Composition = data
	}
	if len(loc.Layers) > 0 {
		data, err := json.Marshal(loc.Layers)
		if err != nil {
			return row, fmt.Errorf("failed to encode layers: %w", err)
		}
		row.Layers = data
	}
	if len(loc.Rings) > 0 {
		data, err := json.Marshal(loc.Rings)
		if err != nil {
			return row, fmt.Errorf("failed to encode rings: %w", err)
		}
		row.Rings = data
	}
	if o := loc.Orbit; o != nil {
		s := o.OrbitedID.String()
		row.OrbitedID = &s
		row.OrbitedMass = &o.OrbitedMass
		row.SemiMajorAxis = &o.SemiMajorAxis
		row.Eccentricity = &o.Eccentricity
		row.Inclination = &o.Inclination
		row.AscendingNode = &o.AscendingNode
		row.ArgPeriapsis = &o.ArgPeriapsis
		row.TrueAnomaly = &o.TrueAnomaly
	}
	return row, nil
}

// insertBatchSize bounds one JSON payload; parents must land before
// children, which preorder input and chunked sequential inserts keep.
const insertBatchSize = 500

// CreateLocationsBatch inserts locations in chunked JSON batches.
// Input must be ordered parents before children. Without a caller
// transaction it opens its own, so a failed chunk never leaves a
// partial tree behind.
func (r *Repository) CreateLocationsBatch(ctx context.Context, locations []Location, tx *database.Tx) (int, error) {
	if len(locations) == 0 {
		return 0, nil
	}

	logger := r.logger.With(
		"component", "location_repository",
		"operation", "create_locations_batch",
		"count", len(locations),
	)
	logger.Debug("Creating locations in batch")

	ownTx := tx == nil
	if ownTx {
		var err error
		tx, err = r.db.BeginTxContext(ctx)
		if err != nil {
			logger.Error("Failed to begin transaction", "error", err)
			return 0, fmt.Errorf("failed to begin transaction: %w", err)
		}
	}

	exec := r.getExecutor(tx)

	query := `
		INSERT INTO locations (
			id, parent_id, root_id, structure_type, name,
			pos_x, pos_y, pos_z, vel_x, vel_y, vel_z,
			mass, density, temperature, albedo,
			shape_kind, shape_a, shape_b, shape_c,
			composition, layers, rings,
			orbited_id, orbited_mass, semi_major_axis, eccentricity,
			inclination, ascending_node, arg_periapsis, true_anomaly,
			seed, child_index
		)
		SELECT
			(data->>'id')::uuid,
			(data->>'parent_id')::uuid,
			(data->>'root_id')::uuid,
			(data->>'structure_type')::structure_type,
			data->>'name',
			(data->>'pos_x')::double precision,
			(data->>'pos_y')::double precision,
			(data->>'pos_z')::double precision,
			(data->>'vel_x')::double precision,
			(data->>'vel_y')::double precision,
			(data->>'vel_z')::double precision,
			(data->>'mass')::double precision,
			(data->>'density')::double precision,
			(data->>'temperature')::double precision,
			(data->>'albedo')::double precision,
			data->>'shape_kind',
			(data->>'shape_a')::double precision,
			(data->>'shape_b')::double precision,
			(data->>'shape_c')::double precision,
			data->'composition',
			data->'layers',
			data->'rings',
			(data->>'orbited_id')::uuid,
			(data->>'orbited_mass')::double precision,
			(data->>'semi_major_axis')::double precision,
			(data->>'eccentricity')::double precision,
			(data->>'inclination')::double precision,
			(data->>'ascending_node')::double precision,
			(data->>'arg_periapsis')::double precision,
			(data->>'true_anomaly')::double precision,
			(data->>'seed')::bigint,
			(data->>'child_index')::integer
		FROM jsonb_array_elements($1::jsonb) AS data`

	rollback := func() {
		if !ownTx {
			return
		}
		if err := tx.Rollback(); err != nil {
			logger.Error("Failed to roll back batch insert", "error", err)
		}
	}

	inserted := 0
	for start := 0; start < len(locations); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(locations) {
			end = len(locations)
		}

		batch := make([]insertRow, 0, end-start)
		for i := start; i < end; i++ {
			row, err := toInsertRow(&locations[i])
			if err != nil {
				logger.Error("Failed to encode location", "error", err, "location_id", locations[i].ID)
				rollback()
				return 0, err
			}
			batch = append(batch, row)
		}

		payload, err := json.Marshal(batch)
		if err != nil {
			logger.Error("Failed to marshal batch", "error", err)
			rollback()
			return 0, fmt.Errorf("failed to marshal locations: %w", err)
		}

		result, err := exec.ExecContext(ctx, query, string(payload))
		if err != nil {
			logger.Error("Failed to batch create locations", "error", err)
			rollback()
			return 0, fmt.Errorf("failed to batch create locations: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil {
			inserted += int(n)
		} else {
			inserted += len(batch)
		}
	}

	if ownTx {
		if err := tx.Commit(); err != nil {
			logger.Error("Failed to commit batch insert", "error", err)
			return 0, fmt.Errorf("failed to commit batch insert: %w", err)
		}
	}

	logger.Info("Locations batch created", "count", inserted)
	return inserted, nil
}

// UpdateState persists the mutable orbital state of one location.
func (r *Repository) UpdateState(ctx context.Context, loc *Location, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	logger := r.logger.With(
		"component", "location_repository",
		"operation", "update_state",
		"location_id", loc.ID,
	)

	var trueAnomaly *float64
	if loc.Orbit != nil {
		trueAnomaly = &loc.Orbit.TrueAnomaly
	}

	query := `
		UPDATE locations
		SET pos_x = $2, pos_y = $3, pos_z = $4,
		    vel_x = $5, vel_y = $6, vel_z = $7,
		    true_anomaly = COALESCE($8, true_anomaly),
		    updated_at = NOW()
		WHERE id = $1`

	result, err := exec.ExecContext(ctx, query,
		loc.ID,
		loc.Position.X, loc.Position.Y, loc.Position.Z,
		loc.Velocity.X, loc.Velocity.Y, loc.Velocity.Z,
		trueAnomaly,
	)
	if err != nil {
		logger.Error("Failed to update location state", "error", err)
		return fmt.Errorf("failed to update location state: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteSubtree removes a location; descendants follow through the
// parent_id cascade. Returns sql.ErrNoRows when the location does not
// exist.
func (r *Repository) DeleteSubtree(ctx context.Context, id uuid.UUID) error {
	logger := r.logger.With("component", "location_repository", "operation", "delete_subtree", "location_id", id)

	result, err := r.db.ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		logger.Error("Failed to delete location subtree", "error", err)
		return fmt.Errorf("failed to delete location subtree: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}

	logger.Info("Location subtree deleted")
	return nil
}

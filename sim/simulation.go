// Package sim implements the population simulation: a bounded arena of
// loners, clans and food sources advanced in discrete ticks.
package sim

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pthm-cable/astras/components"
	"github.com/pthm-cable/astras/config"
	"github.com/pthm-cable/astras/systems"
	"github.com/pthm-cable/astras/telemetry"
)

// Simulation owns the world state and advances it one tick at a time.
// Create with New, then call Setup before the first Step. Setup may be
// called again at any point to restart from a fresh world. A Simulation
// is not safe for concurrent use; the caller serializes Setup and Step.
type Simulation struct {
	cfg     config.Config
	species []config.Species

	world *ecs.World

	lonerMapper *ecs.Map4[components.Position, components.Velocity, components.Agent, components.Vitals]
	lonerFilter *ecs.Filter4[components.Position, components.Velocity, components.Agent, components.Vitals]
	clanMapper  *ecs.Map3[components.Position, components.Velocity, components.ClanCore]
	clanFilter  *ecs.Filter3[components.Position, components.Velocity, components.ClanCore]
	foodMapper  *ecs.Map2[components.Position, components.Food]
	foodFilter  *ecs.Filter2[components.Position, components.Food]

	posMap    *ecs.Map1[components.Position]
	velMap    *ecs.Map1[components.Velocity]
	agentMap  *ecs.Map1[components.Agent]
	vitalsMap *ecs.Map1[components.Vitals]
	clanMap   *ecs.Map1[components.ClanCore]
	foodMap   *ecs.Map1[components.Food]

	grid *systems.SpatialGrid
	temp *systems.Temperature

	// One seedable stream drives every random draw.
	src *rand.PCG
	rng *rand.Rand

	collector *telemetry.Collector
	log       *slog.Logger

	hostile [components.NumSpecies][components.NumSpecies]bool
	caps    [components.NumSpecies]int

	disaster disasterState

	nextID    uint32
	tick      int32
	lastStats telemetry.TickStats

	// Scratch buffers reused across ticks.
	queryBuf []systems.Neighbor
}

// New creates an empty simulation. Setup must be called before Step.
func New(logger *slog.Logger) *Simulation {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulation{log: logger}
}

// Setup builds a fresh world from the given configuration and species
// dataset. Any previous world is discarded; a failed Setup leaves the
// simulation unusable until a later Setup succeeds.
func (s *Simulation) Setup(cfg *config.Config, species []config.Species) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.ValidateSpecies(species); err != nil {
		return err
	}

	s.cfg = *cfg
	s.species = species

	world := ecs.NewWorld()
	s.world = world

	s.lonerMapper = ecs.NewMap4[components.Position, components.Velocity, components.Agent, components.Vitals](world)
	s.lonerFilter = ecs.NewFilter4[components.Position, components.Velocity, components.Agent, components.Vitals](world)
	s.clanMapper = ecs.NewMap3[components.Position, components.Velocity, components.ClanCore](world)
	s.clanFilter = ecs.NewFilter3[components.Position, components.Velocity, components.ClanCore](world)
	s.foodMapper = ecs.NewMap2[components.Position, components.Food](world)
	s.foodFilter = ecs.NewFilter2[components.Position, components.Food](world)

	s.posMap = ecs.NewMap1[components.Position](world)
	s.velMap = ecs.NewMap1[components.Velocity](world)
	s.agentMap = ecs.NewMap1[components.Agent](world)
	s.vitalsMap = ecs.NewMap1[components.Vitals](world)
	s.clanMap = ecs.NewMap1[components.ClanCore](world)
	s.foodMap = ecs.NewMap1[components.Food](world)

	s.grid = systems.NewSpatialGrid(cfg.World.Width, cfg.World.Height, cfg.World.GridCellSize)

	s.src = rand.NewPCG(cfg.Seed, cfg.Seed)
	s.rng = rand.New(s.src)

	s.temp = systems.NewTemperature(
		cfg.Temperature.Start,
		cfg.Temperature.Drift,
		cfg.Temperature.Variance,
		cfg.Temperature.Min,
		cfg.Temperature.Max,
		s.src,
	)
	if cfg.Temperature.CycleTicks > 0 {
		s.temp.EnableCycle(cfg.Temperature.CycleTicks, cfg.Temperature.TransitionTicks, cfg.Temperature.NightDelta, true)
	}

	s.collector = telemetry.NewCollector(cfg.World.TickSeconds)
	s.disaster = disasterState{}
	s.nextID = 1
	s.tick = 0
	s.queryBuf = s.queryBuf[:0]

	for i, sp := range species {
		s.caps[i] = cfg.Cap(sp.Name)
	}
	s.buildHostility()

	s.placeFood()
	s.placeInitialLoners()

	s.log.Info("setup complete",
		"species", len(species),
		"initial_loners", cfg.Population.InitialLoners*len(species),
		"food_sources", cfg.Food.Places,
		"seed", cfg.Seed,
	)
	return nil
}

// buildHostility precomputes the species hostility matrix. A pair is
// hostile when either side declares the other a target of aggression;
// a species with no stance toward another defaults to hostile across
// species lines and never toward itself.
func (s *Simulation) buildHostility() {
	stance := func(a, b int) string {
		if st, ok := s.species[a].Interactions[s.species[b].Name]; ok {
			return st
		}
		if a == b {
			return config.StanceFriendly
		}
		return config.StanceAggressive
	}

	for a := 0; a < len(s.species); a++ {
		for b := 0; b < len(s.species); b++ {
			if a == b {
				s.hostile[a][b] = false
				continue
			}
			s.hostile[a][b] = stance(a, b) == config.StanceAggressive || stance(b, a) == config.StanceAggressive
		}
	}
}

func (s *Simulation) placeFood() {
	for i := 0; i < s.cfg.Food.Places; i++ {
		x := s.rng.Float64() * s.cfg.World.Width
		y := s.rng.Float64() * s.cfg.World.Height
		s.AddFoodSource(x, y, s.cfg.Food.Capacity)
	}
}

func (s *Simulation) placeInitialLoners() {
	for idx := range s.species {
		for i := 0; i < s.cfg.Population.InitialLoners; i++ {
			x := s.rng.Float64() * s.cfg.World.Width
			y := s.rng.Float64() * s.cfg.World.Height
			s.SpawnLoner(components.SpeciesID(idx), x, y, s.species[idx].BaseEnergy)
		}
	}
}

// SpawnLoner creates a free individual of the given species. Position
// is clamped into the arena. Returns the assigned ID.
func (s *Simulation) SpawnLoner(species components.SpeciesID, x, y, energy float64) uint32 {
	id := s.nextID
	s.nextID++
	s.spawnLonerWithID(id, species, x, y, energy, 0)
	return id
}

func (s *Simulation) spawnLonerWithID(id uint32, species components.SpeciesID, x, y, energy float64, age int32) {
	pos := components.Position{
		X: systems.Clamp(x, 0, s.cfg.World.Width),
		Y: systems.Clamp(y, 0, s.cfg.World.Height),
	}
	vel := s.randomHeading(s.cfg.Movement.LonerSpeed)
	agent := components.Agent{
		ID:         id,
		Species:    species,
		Aggression: s.species[species].Aggression,
		State:      components.StateFree,
	}
	vitals := components.Vitals{Energy: energy, Age: age, Alive: true}
	s.lonerMapper.NewEntity(&pos, &vel, &agent, &vitals)
}

// AddFoodSource creates a food source at the given position, starting
// full. Returns the assigned ID.
func (s *Simulation) AddFoodSource(x, y, capacity float64) uint32 {
	id := s.nextID
	s.nextID++
	pos := components.Position{
		X: systems.Clamp(x, 0, s.cfg.World.Width),
		Y: systems.Clamp(y, 0, s.cfg.World.Height),
	}
	food := components.Food{ID: id, Capacity: capacity, Remaining: capacity}
	s.foodMapper.NewEntity(&pos, &food)
	return id
}

func (s *Simulation) randomHeading(speed float64) components.Velocity {
	angle := distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: s.src}.Rand()
	return components.Velocity{X: speed * math.Cos(angle), Y: speed * math.Sin(angle)}
}

// Tick returns the number of completed steps since the last Setup.
func (s *Simulation) Tick() int32 {
	return s.tick
}

// Step advances the world one tick and returns the resulting snapshot.
func (s *Simulation) Step() telemetry.Snapshot {
	s.tick++

	s.stepMovement()
	s.rebuildGrid()
	s.temp.Step()
	s.stepDisaster()
	s.stepMetabolism()
	s.stepFood()
	s.stepCombat()
	s.stepFormation()
	s.stepSpawn()
	s.prune()

	return s.buildSnapshot()
}

// rebuildGrid reindexes every entity at its post-movement position.
func (s *Simulation) rebuildGrid() {
	s.grid.Clear()

	query := s.lonerFilter.Query()
	for query.Next() {
		pos, _, agent, _ := query.Get()
		s.grid.Insert(systems.Entry{E: query.Entity(), Kind: components.KindLoner, ID: agent.ID, X: pos.X, Y: pos.Y})
	}

	cq := s.clanFilter.Query()
	for cq.Next() {
		pos, _, core := cq.Get()
		s.grid.Insert(systems.Entry{E: cq.Entity(), Kind: components.KindClan, ID: core.ID, X: pos.X, Y: pos.Y})
	}

	fq := s.foodFilter.Query()
	for fq.Next() {
		pos, food := fq.Get()
		s.grid.Insert(systems.Entry{E: fq.Entity(), Kind: components.KindFood, ID: food.ID, X: pos.X, Y: pos.Y})
	}
}

// stepMetabolism ages every individual and applies the passive energy
// drain, scaled by temperature stress and any active disaster.
func (s *Simulation) stepMetabolism() {
	drain := s.cfg.Energy.DecayRate * s.temp.DecayMult()

	query := s.lonerFilter.Query()
	for query.Next() {
		pos, _, _, vitals := query.Get()
		vitals.Age++
		vitals.Energy -= drain + s.disasterDrainAt(pos.X, pos.Y)
	}

	cq := s.clanFilter.Query()
	for cq.Next() {
		pos, _, core := cq.Get()
		extra := s.disasterDrainAt(pos.X, pos.Y)
		for i := range core.Members {
			core.Members[i].Age++
			core.Members[i].Energy -= drain + extra
		}
	}
}

// lonerRef is a stable handle collected before a mutation phase.
type lonerRef struct {
	e  ecs.Entity
	id uint32
}

// clanRef is a stable handle collected before a mutation phase.
type clanRef struct {
	e  ecs.Entity
	id uint32
}

// collectLoners returns all loner entities sorted by ID. Phases that
// draw randomness or mutate structure iterate this instead of a live
// query so the processing order is reproducible.
func (s *Simulation) collectLoners() []lonerRef {
	var refs []lonerRef
	query := s.lonerFilter.Query()
	for query.Next() {
		_, _, agent, _ := query.Get()
		refs = append(refs, lonerRef{e: query.Entity(), id: agent.ID})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].id < refs[j].id })
	return refs
}

// collectClans returns all clan entities sorted by ID.
func (s *Simulation) collectClans() []clanRef {
	var refs []clanRef
	query := s.clanFilter.Query()
	for query.Next() {
		_, _, core := query.Get()
		refs = append(refs, clanRef{e: query.Entity(), id: core.ID})
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].id < refs[j].id })
	return refs
}

// prune removes individuals whose energy reached zero and dissolves
// clans that fell below two members. Death events carry the individual
// ID; a clan's sole survivor converts back to a loner keeping its
// identity.
func (s *Simulation) prune() {
	for _, ref := range s.collectLoners() {
		vitals := s.vitalsMap.Get(ref.e)
		if vitals.Energy <= 0 {
			vitals.Alive = false
			s.collector.Record(telemetry.NewDeathEvent(s.tick, ref.id))
			s.lonerMapper.Remove(ref.e)
		}
	}

	for _, ref := range s.collectClans() {
		core := s.clanMap.Get(ref.e)

		alive := core.Members[:0]
		for _, m := range core.Members {
			if m.Energy <= 0 {
				s.collector.Record(telemetry.NewDeathEvent(s.tick, m.ID))
				continue
			}
			alive = append(alive, m)
		}
		core.Members = alive

		if len(core.Members) < 2 {
			s.dissolveClan(ref.e, false)
		}
	}
}

// dissolveClan releases a clan's members as loners at the clan position
// and removes the clan entity. With scatter, members spread around the
// position; without, they are placed exactly on it.
func (s *Simulation) dissolveClan(e ecs.Entity, scatter bool) {
	core := s.clanMap.Get(e)
	pos := s.posMap.Get(e)

	id := core.ID
	species := core.Species
	members := make([]components.Member, len(core.Members))
	copy(members, core.Members)
	x, y := pos.X, pos.Y

	s.clanMapper.Remove(e)

	for _, m := range members {
		mx, my := x, y
		if scatter && s.cfg.Formation.ScatterSigma > 0 {
			offset := distuv.Normal{Mu: 0, Sigma: s.cfg.Formation.ScatterSigma, Src: s.src}
			mx += offset.Rand()
			my += offset.Rand()
		}
		s.spawnLonerWithID(m.ID, species, mx, my, m.Energy, m.Age)
	}

	if len(members) > 0 {
		s.collector.Record(telemetry.NewSplitEvent(s.tick, id, len(members)))
	}
}

// populationCounts returns per-species totals of loners plus clan
// members, and the loner/clan breakdown.
func (s *Simulation) populationCounts() (perSpecies [components.NumSpecies]int, loners, clans, members int) {
	query := s.lonerFilter.Query()
	for query.Next() {
		_, _, agent, _ := query.Get()
		perSpecies[agent.Species]++
		loners++
	}

	cq := s.clanFilter.Query()
	for cq.Next() {
		_, _, core := cq.Get()
		perSpecies[core.Species] += len(core.Members)
		members += len(core.Members)
		clans++
	}
	return perSpecies, loners, clans, members
}

// buildSnapshot assembles the observable world state for the finished
// tick and flushes the stats collector.
func (s *Simulation) buildSnapshot() telemetry.Snapshot {
	snap := telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		Tick:        s.tick,
		SimTimeSec:  float64(s.tick) * s.cfg.World.TickSeconds,
		Temperature: s.temp.Value(),
		IsDay:       s.temp.IsDay(),
		Population:  make(map[string]int, len(s.species)),
	}

	var energies []float64

	query := s.lonerFilter.Query()
	for query.Next() {
		pos, _, agent, vitals := query.Get()
		snap.Loners = append(snap.Loners, telemetry.LonerSummary{
			ID:      agent.ID,
			Species: s.species[agent.Species].Name,
			X:       pos.X,
			Y:       pos.Y,
			Energy:  vitals.Energy,
			Age:     vitals.Age,
		})
		energies = append(energies, vitals.Energy)
	}
	sort.Slice(snap.Loners, func(i, j int) bool { return snap.Loners[i].ID < snap.Loners[j].ID })

	cq := s.clanFilter.Query()
	for cq.Next() {
		pos, _, core := cq.Get()
		snap.Clans = append(snap.Clans, telemetry.ClanSummary{
			ID:          core.ID,
			Species:     s.species[core.Species].Name,
			MemberCount: len(core.Members),
			TotalEnergy: core.TotalEnergy(),
			AvgEnergy:   core.AvgEnergy(),
			X:           pos.X,
			Y:           pos.Y,
		})
		for _, m := range core.Members {
			energies = append(energies, m.Energy)
		}
	}
	sort.Slice(snap.Clans, func(i, j int) bool { return snap.Clans[i].ID < snap.Clans[j].ID })

	var foodRemaining float64
	fq := s.foodFilter.Query()
	for fq.Next() {
		pos, food := fq.Get()
		snap.Food = append(snap.Food, telemetry.FoodSummary{
			ID:        food.ID,
			X:         pos.X,
			Y:         pos.Y,
			Capacity:  food.Capacity,
			Remaining: food.Remaining,
		})
		foodRemaining += food.Remaining
	}
	sort.Slice(snap.Food, func(i, j int) bool { return snap.Food[i].ID < snap.Food[j].ID })

	// Every subspecies appears in the map, extinct ones at zero.
	for i := range s.species {
		snap.Population[s.speciesName(components.SpeciesID(i))] = 0
	}
	for _, l := range snap.Loners {
		snap.Population[l.Species]++
	}
	for _, c := range snap.Clans {
		snap.Population[c.Species] += c.MemberCount
	}

	snap.Events = append([]telemetry.Event(nil), s.collector.Events()...)

	loners := len(snap.Loners)
	clans := len(snap.Clans)
	clanMembers := 0
	for _, c := range snap.Clans {
		clanMembers += c.MemberCount
	}

	s.lastStats = s.collector.Flush(s.tick, s.temp.Value(), s.temp.IsDay(), loners, clans, clanMembers, foodRemaining, energies)
	s.log.Debug("tick", "stats", s.lastStats)

	return snap
}

// LastStats returns the aggregate row for the most recent tick.
func (s *Simulation) LastStats() telemetry.TickStats {
	return s.lastStats
}

func (s *Simulation) speciesName(id components.SpeciesID) string {
	if int(id) < len(s.species) {
		return s.species[id].Name
	}
	return fmt.Sprintf("species_%d", id)
}

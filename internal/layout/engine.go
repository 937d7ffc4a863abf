package layout

import (
	"math"

	"mindmap/internal/domain"
)

// Config holds the geometry used by the engine. Zero fields fall back to
// DefaultConfig values in New.
type Config struct {
	CenterX           float64 `yaml:"center_x"`
	StartY            float64 `yaml:"start_y"`
	LevelSpacing      float64 `yaml:"level_spacing"`
	HorizontalSpacing float64 `yaml:"horizontal_spacing"`

	DetailColumns      int `yaml:"detail_columns"`
	UnconnectedColumns int `yaml:"unconnected_columns"`

	// radial fallback
	CenterY        float64 `yaml:"center_y"`
	Radius         float64 `yaml:"radius"`
	ChapterSpacing float64 `yaml:"chapter_spacing"`
	TreeSpacingX   float64 `yaml:"tree_spacing_x"`
	TreeSpacingY   float64 `yaml:"tree_spacing_y"`
	TreePerRow     int     `yaml:"tree_per_row"`

	// free-slot placement for single nodes
	GridSize float64 `yaml:"grid_size"`
	Padding  float64 `yaml:"padding"`
	MaxRowW  float64 `yaml:"max_row_width"`
}

func DefaultConfig() Config {
	return Config{
		CenterX:            500,
		StartY:             100,
		LevelSpacing:       200,
		HorizontalSpacing:  250,
		DetailColumns:      2,
		UnconnectedColumns: 4,
		CenterY:            300,
		Radius:             300,
		ChapterSpacing:     300,
		TreeSpacingX:       300,
		TreeSpacingY:       150,
		TreePerRow:         5,
		GridSize:           30,
		Padding:            60,
		MaxRowW:            1800,
	}
}

// Engine positions mindmap nodes. It holds no state besides its
// configuration and is safe for concurrent use.
type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	d := DefaultConfig()
	fill := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	fillInt := func(v *int, def int) {
		if *v <= 0 {
			*v = def
		}
	}
	fill(&cfg.CenterX, d.CenterX)
	fill(&cfg.StartY, d.StartY)
	fill(&cfg.LevelSpacing, d.LevelSpacing)
	fill(&cfg.HorizontalSpacing, d.HorizontalSpacing)
	fillInt(&cfg.DetailColumns, d.DetailColumns)
	fillInt(&cfg.UnconnectedColumns, d.UnconnectedColumns)
	fill(&cfg.CenterY, d.CenterY)
	fill(&cfg.Radius, d.Radius)
	fill(&cfg.ChapterSpacing, d.ChapterSpacing)
	fill(&cfg.TreeSpacingX, d.TreeSpacingX)
	fill(&cfg.TreeSpacingY, d.TreeSpacingY)
	fillInt(&cfg.TreePerRow, d.TreePerRow)
	fill(&cfg.GridSize, d.GridSize)
	fill(&cfg.Padding, d.Padding)
	fill(&cfg.MaxRowW, d.MaxRowW)
	return &Engine{cfg: cfg}
}

func (e *Engine) Config() Config { return e.cfg }

var defaultEngine = New(DefaultConfig())

// Compute runs the default engine.
func Compute(nodes []domain.Node, edges []domain.Edge) Result {
	return defaultEngine.Compute(nodes, edges)
}

// Arrange runs the default engine and returns only the positioned nodes.
func Arrange(nodes []domain.Node, edges []domain.Edge) []domain.Node {
	return defaultEngine.Arrange(nodes, edges)
}

// HasHierarchy reports whether any edge runs from a main-topic node to a
// sub-topic node. It is the only input to the choice between the
// hierarchical layout and the radial fallback.
func HasHierarchy(nodes []domain.Node, edges []domain.Edge) bool {
	types := typeIndex(nodes)
	for _, e := range edges {
		if types[e.Source] == domain.NodeTypeMainTopic && types[e.Target] == domain.NodeTypeSubTopic {
			return true
		}
	}
	return false
}

// Compute positions every recognized node. The inputs are never modified.
func (e *Engine) Compute(nodes []domain.Node, edges []domain.Edge) Result {
	g := partition(nodes)
	if !HasHierarchy(nodes, edges) && len(nodes) > 0 {
		return e.radial(g)
	}
	return e.hierarchical(g, edges)
}

func (e *Engine) Arrange(nodes []domain.Node, edges []domain.Edge) []domain.Node {
	return e.Compute(nodes, edges).Nodes()
}

// groups holds copies of the input nodes split by tier, in input order.
type groups struct {
	chapters   []domain.Node
	mainTopics []domain.Node
	subTopics  []domain.Node
	dropped    []string
}

func partition(nodes []domain.Node) groups {
	var g groups
	for _, n := range nodes {
		switch n.Type {
		case domain.NodeTypeChapter:
			g.chapters = append(g.chapters, n.Clone())
		case domain.NodeTypeMainTopic:
			g.mainTopics = append(g.mainTopics, n.Clone())
		case domain.NodeTypeSubTopic:
			g.subTopics = append(g.subTopics, n.Clone())
		default:
			g.dropped = append(g.dropped, n.ID)
		}
	}
	return g
}

func (g groups) flatten() []domain.Node {
	out := make([]domain.Node, 0, len(g.chapters)+len(g.mainTopics)+len(g.subTopics))
	out = append(out, g.chapters...)
	out = append(out, g.mainTopics...)
	return append(out, g.subTopics...)
}

func typeIndex(nodes []domain.Node) map[string]domain.NodeType {
	m := make(map[string]domain.NodeType, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n.Type
	}
	return m
}

// ── Hierarchical ────────────────────────────────────────────

func (e *Engine) hierarchical(g groups, edges []domain.Edge) *HierarchicalResult {
	c := e.cfg
	H, L := c.HorizontalSpacing, c.LevelSpacing

	for i := range g.chapters {
		g.chapters[i].Position = domain.Position{
			X: c.CenterX - float64(len(g.chapters)-1)*H/2 + float64(i)*H,
			Y: c.StartY,
		}
	}

	mainStart := c.CenterX - float64(len(g.mainTopics))*H/2 + H/2
	mainPos := make(map[string]domain.Position, len(g.mainTopics))
	for i := range g.mainTopics {
		p := domain.Position{X: mainStart + float64(i)*H, Y: c.StartY + L}
		g.mainTopics[i].Position = p
		mainPos[g.mainTopics[i].ID] = p
	}

	// Later edges overwrite earlier ones for the same sub-topic.
	subIDs := make(map[string]bool, len(g.subTopics))
	for _, n := range g.subTopics {
		subIDs[n.ID] = true
	}
	parent := make(map[string]string)
	for _, ed := range edges {
		if _, ok := mainPos[ed.Source]; ok && subIDs[ed.Target] {
			parent[ed.Target] = ed.Source
		}
	}

	byParent := make(map[string][]int)
	var unconnected []int
	for i, n := range g.subTopics {
		if p, ok := parent[n.ID]; ok {
			byParent[p] = append(byParent[p], i)
		} else {
			unconnected = append(unconnected, i)
		}
	}

	groupsOut := make([]SubTopicGroup, 0, len(byParent))
	for _, m := range g.mainTopics {
		idx, ok := byParent[m.ID]
		if !ok {
			continue
		}
		pp := mainPos[m.ID]
		ids := make([]string, len(idx))
		for k, i := range idx {
			row := k / c.DetailColumns
			col := k % c.DetailColumns
			g.subTopics[i].Position = domain.Position{
				X: pp.X + columnOffset(col, c.DetailColumns, H),
				Y: pp.Y + L + float64(row)*L/1.5,
			}
			ids[k] = g.subTopics[i].ID
		}
		groupsOut = append(groupsOut, SubTopicGroup{ParentID: m.ID, NodeIDs: ids})
	}

	var loose []string
	if len(unconnected) > 0 {
		cols := min(len(unconnected), c.UnconnectedColumns)
		startX := c.CenterX - float64(cols-1)/2*H
		for k, i := range unconnected {
			row := k / c.UnconnectedColumns
			col := k % c.UnconnectedColumns
			g.subTopics[i].Position = domain.Position{
				X: startX + float64(col)*H,
				Y: c.StartY + 3*L + float64(row)*L,
			}
			loose = append(loose, g.subTopics[i].ID)
		}
	}

	return &HierarchicalResult{
		nodes:       g.flatten(),
		dropped:     g.dropped,
		Groups:      groupsOut,
		Unconnected: loose,
	}
}

// columnOffset spreads cols columns symmetrically around a parent, H apart.
// With two columns this is -H/2 and +H/2.
func columnOffset(col, cols int, H float64) float64 {
	return (float64(col) - float64(cols-1)/2) * H
}

// ── Radial fallback ─────────────────────────────────────────

func (e *Engine) radial(g groups) *RadialResult {
	c := e.cfg

	for i := range g.chapters {
		g.chapters[i].Position = domain.Position{
			X: c.CenterX + float64(i)*c.ChapterSpacing,
			Y: c.CenterY,
		}
	}

	n := len(g.mainTopics)
	for i := range g.mainTopics {
		angle := 2 * math.Pi * float64(i) / float64(n)
		g.mainTopics[i].Position = domain.Position{
			X: c.CenterX + c.Radius*math.Cos(angle),
			Y: c.CenterY + c.Radius*math.Sin(angle),
		}
	}

	// The tree starts two columns left of center, just below the circle.
	origin := domain.Position{X: c.CenterX - 2*c.TreeSpacingX, Y: c.CenterY + c.Radius}
	for i := range g.subTopics {
		row := i / c.TreePerRow
		col := i % c.TreePerRow
		stagger := 0.0
		if row%2 == 1 {
			stagger = c.TreeSpacingX / 2
		}
		g.subTopics[i].Position = domain.Position{
			X: origin.X + float64(col)*c.TreeSpacingX + stagger,
			Y: origin.Y + float64(row)*c.TreeSpacingY,
		}
	}

	return &RadialResult{
		nodes:   g.flatten(),
		dropped: g.dropped,
		Center:  domain.Position{X: c.CenterX, Y: c.CenterY},
		Origin:  origin,
	}
}

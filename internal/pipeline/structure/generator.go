package structure

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inkdex/inkdex/internal/domain"
	"github.com/inkdex/inkdex/internal/textutil"
)

// rankPriority breaks score ties so equally scored structures always come
// back in the same order.
var rankPriority = map[domain.StructureType]int{
	domain.StructureOutline: 0,
	domain.StructureMindmap: 1,
	domain.StructureTimeline: 2,
	domain.StructureProcess: 3,
}

// Generator builds every candidate organization of a note and ranks them.
type Generator struct {
	cfg Config
}

func NewGenerator(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg}, nil
}

// Generate produces all four structure candidates, scores each by
// confidence times completeness and returns them best first. Ids are
// assigned after ranking.
func (g *Generator) Generate(elements []domain.NoteElement, relationships []domain.Relationship, concepts []domain.Concept, clusters []domain.ConceptCluster) []domain.GeneratedStructure {
	if len(concepts) == 0 || len(clusters) == 0 {
		return nil
	}

	ctx := newGenContext(elements, relationships, concepts, clusters)

	out := []domain.GeneratedStructure{
		g.outline(ctx),
		g.mindmap(ctx),
		g.timeline(ctx),
		g.processFlow(ctx),
	}
	for i := range out {
		out[i].Completeness = completeness(out[i].Root, len(concepts))
	}
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := out[i].Score(), out[j].Score()
		if si != sj {
			return si > sj
		}
		return rankPriority[out[i].Type] < rankPriority[out[j].Type]
	})
	for i := range out {
		out[i].ID = fmt.Sprintf("structure-%d", i+1)
	}
	return out
}

// genContext carries the per-note lookups every generator needs.
type genContext struct {
	elements      []domain.NoteElement
	concepts      []domain.Concept
	clusters      []domain.ConceptCluster
	elemByID      map[string]domain.NoteElement
	orderOf       map[string]int // element id -> reading order position
	conceptByID   map[string]domain.Concept
	hierarchyRels []domain.Relationship
	connectorRels int
}

func newGenContext(elements []domain.NoteElement, relationships []domain.Relationship, concepts []domain.Concept, clusters []domain.ConceptCluster) *genContext {
	ordered := append([]domain.NoteElement(nil), elements...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.PageIndex != b.PageIndex {
			return a.PageIndex < b.PageIndex
		}
		if a.Box.Y != b.Box.Y {
			return a.Box.Y < b.Box.Y
		}
		if a.Box.X != b.Box.X {
			return a.Box.X < b.Box.X
		}
		return a.ID < b.ID
	})

	ctx := &genContext{
		elements:    ordered,
		concepts:    concepts,
		clusters:    clusters,
		elemByID:    make(map[string]domain.NoteElement, len(ordered)),
		orderOf:     make(map[string]int, len(ordered)),
		conceptByID: make(map[string]domain.Concept, len(concepts)),
	}
	for i, el := range ordered {
		ctx.elemByID[el.ID] = el
		ctx.orderOf[el.ID] = i
	}
	for _, con := range concepts {
		ctx.conceptByID[con.ID] = con
	}
	for _, rel := range relationships {
		switch rel.Type {
		case domain.RelHierarchyIndent, domain.RelHierarchyNumber:
			ctx.hierarchyRels = append(ctx.hierarchyRels, rel)
		case domain.RelVisualConnector:
			ctx.connectorRels++
		}
	}
	return ctx
}

// anchorOrder is the reading order position of a concept's earliest source
// element; concepts with no resolvable element sort last.
func (ctx *genContext) anchorOrder(con domain.Concept) int {
	best := len(ctx.elements)
	for _, id := range con.ElementIDs {
		if pos, ok := ctx.orderOf[id]; ok && pos < best {
			best = pos
		}
	}
	return best
}

func (ctx *genContext) conceptsInReadingOrder() []domain.Concept {
	ordered := append([]domain.Concept(nil), ctx.concepts...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ctx.anchorOrder(ordered[i]) < ctx.anchorOrder(ordered[j])
	})
	return ordered
}

func conceptLabel(con domain.Concept) string {
	if len(con.Keywords) == 0 {
		return con.ID
	}
	return strings.Join(con.Keywords, " ")
}

// outline builds a hierarchical outline: clusters as sections ordered by
// importance, member concepts under each section, source elements as items.
// Cluster importance is its member count plus one per hierarchy
// relationship landing on a member element.
func (g *Generator) outline(ctx *genContext) domain.GeneratedStructure {
	type rankedCluster struct {
		cluster    domain.ConceptCluster
		importance int
		pos        int
	}
	ranked := make([]rankedCluster, 0, len(ctx.clusters))
	for i, cl := range ctx.clusters {
		ranked = append(ranked, rankedCluster{cl, g.clusterImportance(ctx, cl), i})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].importance != ranked[j].importance {
			return ranked[i].importance > ranked[j].importance
		}
		return ranked[i].pos < ranked[j].pos
	})

	title := "untitled"
	if len(ranked) > 0 {
		title = ranked[0].cluster.Theme
	}
	root := &domain.StructureNode{ID: "root", Content: title, Kind: "root"}

	var confSum float64
	for _, rc := range ranked {
		section := &domain.StructureNode{
			ID:         rc.cluster.ID,
			Content:    rc.cluster.Theme,
			Kind:       "section",
			Level:      1,
			Confidence: rc.cluster.Confidence,
			ClusterID:  rc.cluster.ID,
		}
		for _, cid := range rc.cluster.ConceptIDs {
			con, ok := ctx.conceptByID[cid]
			if !ok {
				continue
			}
			node := &domain.StructureNode{
				ID:         rc.cluster.ID + "/" + con.ID,
				Content:    conceptLabel(con),
				Kind:       "concept",
				Level:      2,
				Confidence: con.Confidence,
				ClusterID:  rc.cluster.ID,
				ConceptID:  con.ID,
			}
			for _, item := range ctx.conceptItems(con) {
				node.Children = append(node.Children, item)
			}
			section.Children = append(section.Children, node)
		}
		root.Children = append(root.Children, section)
		confSum += rc.cluster.Confidence
	}

	conf := 0.0
	if len(ranked) > 0 {
		conf = confSum / float64(len(ranked))
	}
	if len(ctx.hierarchyRels) > 0 {
		conf = clamp01(conf + 0.1)
	}
	return domain.GeneratedStructure{
		Type:       domain.StructureOutline,
		Title:      title,
		Confidence: conf,
		Root:       root,
	}
}

// conceptItems lists a concept's source elements as leaf items, indent
// depth derived from how many hierarchy edges point at the element.
func (ctx *genContext) conceptItems(con domain.Concept) []*domain.StructureNode {
	ids := append([]string(nil), con.ElementIDs...)
	sort.SliceStable(ids, func(i, j int) bool {
		return ctx.orderOf[ids[i]] < ctx.orderOf[ids[j]]
	})
	items := make([]*domain.StructureNode, 0, len(ids))
	for _, id := range ids {
		el, ok := ctx.elemByID[id]
		if !ok {
			continue
		}
		text := strings.TrimSpace(el.Text)
		if m := textutil.ParseMarker(text); m.Style != textutil.MarkerNone {
			text = m.Rest
		}
		items = append(items, &domain.StructureNode{
			ID:         con.ID + "/" + el.ID,
			Content:    text,
			Kind:       "item",
			Level:      3 + ctx.hierarchyDepth(el.ID),
			Confidence: el.Confidence,
			ConceptID:  con.ID,
			ElementID:  el.ID,
		})
	}
	return items
}

func (ctx *genContext) hierarchyDepth(elementID string) int {
	depth := 0
	for _, rel := range ctx.hierarchyRels {
		if rel.TargetID == elementID && rel.Type == domain.RelHierarchyIndent {
			depth++
		}
	}
	return depth
}

func (g *Generator) clusterImportance(ctx *genContext, cl domain.ConceptCluster) int {
	members := make(map[string]bool)
	for _, cid := range cl.ConceptIDs {
		if con, ok := ctx.conceptByID[cid]; ok {
			for _, eid := range con.ElementIDs {
				members[eid] = true
			}
		}
	}
	importance := len(cl.ConceptIDs)
	for _, rel := range ctx.hierarchyRels {
		if members[rel.TargetID] {
			importance++
		}
	}
	return importance
}

// mindmap puts the weightiest cluster in the center and fans the rest out
// as branches, concepts as leaves.
func (g *Generator) mindmap(ctx *genContext) domain.GeneratedStructure {
	centerIdx := 0
	bestWeight := -1.0
	for i, cl := range ctx.clusters {
		w := float64(len(cl.ConceptIDs)) * cl.Confidence
		if w > bestWeight {
			centerIdx, bestWeight = i, w
		}
	}

	center := ctx.clusters[centerIdx]
	root := &domain.StructureNode{
		ID:         "center",
		Content:    center.Theme,
		Kind:       "center",
		Confidence: center.Confidence,
		ClusterID:  center.ID,
	}
	for _, cid := range center.ConceptIDs {
		if con, ok := ctx.conceptByID[cid]; ok {
			root.Children = append(root.Children, mindmapLeaf(center.ID, con, 1))
		}
	}

	var confSum float64
	for i, cl := range ctx.clusters {
		confSum += cl.Confidence
		if i == centerIdx {
			continue
		}
		branch := &domain.StructureNode{
			ID:         cl.ID,
			Content:    cl.Theme,
			Kind:       "branch",
			Level:      1,
			Confidence: cl.Confidence,
			ClusterID:  cl.ID,
		}
		for _, cid := range cl.ConceptIDs {
			if con, ok := ctx.conceptByID[cid]; ok {
				branch.Children = append(branch.Children, mindmapLeaf(cl.ID, con, 2))
			}
		}
		root.Children = append(root.Children, branch)
	}

	return domain.GeneratedStructure{
		Type:       domain.StructureMindmap,
		Title:      center.Theme,
		Confidence: confSum / float64(len(ctx.clusters)),
		Root:       root,
	}
}

func mindmapLeaf(clusterID string, con domain.Concept, level int) *domain.StructureNode {
	return &domain.StructureNode{
		ID:         clusterID + "/" + con.ID,
		Content:    conceptLabel(con),
		Kind:       "leaf",
		Level:      level,
		Confidence: con.Confidence,
		ClusterID:  clusterID,
		ConceptID:  con.ID,
	}
}

// timeline orders concepts by the numbering of their anchor element when
// one exists, otherwise by reading order. Without any numbering signal the
// note gives no real evidence of sequence, so confidence is capped.
func (g *Generator) timeline(ctx *genContext) domain.GeneratedStructure {
	ordered := ctx.conceptsInReadingOrder()
	numbered := false
	sort.SliceStable(ordered, func(i, j int) bool {
		ni, oki := ctx.anchorMarkerIndex(ordered[i])
		nj, okj := ctx.anchorMarkerIndex(ordered[j])
		if oki && okj && ni != nj {
			return ni < nj
		}
		if oki != okj {
			return oki
		}
		return ctx.anchorOrder(ordered[i]) < ctx.anchorOrder(ordered[j])
	})
	for _, con := range ordered {
		if _, ok := ctx.anchorMarkerIndex(con); ok {
			numbered = true
			break
		}
	}

	root := &domain.StructureNode{ID: "root", Content: "timeline", Kind: "root"}
	var confSum float64
	for i, con := range ordered {
		root.Children = append(root.Children, &domain.StructureNode{
			ID:         fmt.Sprintf("event-%d", i+1),
			Content:    conceptLabel(con),
			Kind:       "event",
			Level:      1,
			Confidence: con.Confidence,
			ConceptID:  con.ID,
			ElementID:  ctx.anchorElementID(con),
		})
		confSum += con.Confidence
	}

	conf := confSum / float64(len(ordered))
	if !numbered && conf > g.cfg.TimelineConfidenceCap {
		conf = g.cfg.TimelineConfidenceCap
	}
	return domain.GeneratedStructure{
		Type:       domain.StructureTimeline,
		Title:      "timeline",
		Confidence: conf,
		Root:       root,
	}
}

func (ctx *genContext) anchorElementID(c domain.Concept) string {
	bestID := ""
	best := len(ctx.elements)
	for _, id := range c.ElementIDs {
		if pos, ok := ctx.orderOf[id]; ok && pos < best {
			best, bestID = pos, id
		}
	}
	return bestID
}

func (ctx *genContext) anchorMarkerIndex(c domain.Concept) (int, bool) {
	id := ctx.anchorElementID(c)
	if id == "" {
		return 0, false
	}
	m := textutil.ParseMarker(ctx.elemByID[id].Text)
	if m.Style == textutil.MarkerNone || m.Style == textutil.MarkerBullet {
		return 0, false
	}
	return m.Index, true
}

// processFlow chains every concept as a step in reading order. Steps not
// backed by an action concept are weaker evidence of a procedure and are
// discounted.
func (g *Generator) processFlow(ctx *genContext) domain.GeneratedStructure {
	ordered := ctx.conceptsInReadingOrder()

	root := &domain.StructureNode{ID: "root", Content: "process", Kind: "root"}
	var confSum float64
	for i, con := range ordered {
		nodeConf := con.Confidence
		if con.Type != domain.ConceptAction {
			nodeConf *= 0.6
		}
		root.Children = append(root.Children, &domain.StructureNode{
			ID:         fmt.Sprintf("step-%d", i+1),
			Content:    conceptLabel(con),
			Kind:       "step",
			Level:      1,
			Confidence: nodeConf,
			ConceptID:  con.ID,
			ElementID:  ctx.anchorElementID(con),
		})
		confSum += nodeConf
	}

	conf := confSum / float64(len(ordered))
	if ctx.connectorRels > 0 {
		conf = clamp01(conf + 0.1)
	}
	return domain.GeneratedStructure{
		Type:       domain.StructureProcess,
		Title:      "process",
		Confidence: conf,
		Root:       root,
	}
}

// completeness is the share of extracted concepts a structure actually
// places somewhere in its tree.
func completeness(root *domain.StructureNode, totalConcepts int) float64 {
	if root == nil || totalConcepts == 0 {
		return 0
	}
	seen := make(map[string]bool)
	var walk func(n *domain.StructureNode)
	walk = func(n *domain.StructureNode) {
		if n.ConceptID != "" {
			seen[n.ConceptID] = true
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return float64(len(seen)) / float64(totalConcepts)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

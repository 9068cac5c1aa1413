// plan.go --  This file is part of goFT project.
// Mirzaeva Irina, 2023
//
//	goFT is distributed in the hope that it will be useful,
//	but WITHOUT ANY WARRANTY; without even the implied warranty
//	of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
//	See the GNU General Public License for more details.
//
//	You should have received a copy of the GNU General Public License
//	along with this program.  If not, see http://www.gnu.org/licenses/
//
// ------------------------------------------------
package chem

import (
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// PropagatorID names direction Dir of block Block. Direction 0 runs from
// Vertices[0] to Vertices[1], direction 1 the other way.
type PropagatorID struct {
	Block, Dir int
}

// Index returns the position of the propagator in per-polymer arrays.
func (p PropagatorID) Index() int { return 2*p.Block + p.Dir }

// Partner returns the propagator of the same block in the other direction.
func (p PropagatorID) Partner() PropagatorID { return PropagatorID{p.Block, 1 - p.Dir} }

func propagatorFromIndex(i int64) PropagatorID {
	return PropagatorID{Block: int(i / 2), Dir: int(i % 2)}
}

// Plan is the solution order of all propagators of one polymer. A
// propagator's head is the product of the tails of its sources, so every
// source appears before it in Order and in an earlier level.
type Plan struct {
	NVertex int

	// Sources is indexed by PropagatorID.Index.
	Sources [][]PropagatorID

	// Order is a topological order of all propagators.
	Order []PropagatorID

	// Levels groups propagators whose sources all lie in earlier levels;
	// members of one level are independent of each other.
	Levels [][]PropagatorID
}

// NewPlan checks that blocks form a tree and derives the propagator
// dependency order.
func NewPlan(blocks []Edge) (*Plan, error) {
	nBlock := len(blocks)
	nVertex := 0
	for _, b := range blocks {
		for _, v := range b.Vertices {
			if v < 0 {
				return nil, errors.Wrapf(ErrTopology, "block %d: negative vertex id %d", b.ID, v)
			}
			if v+1 > nVertex {
				nVertex = v + 1
			}
		}
		if b.Vertices[0] == b.Vertices[1] {
			return nil, errors.Wrapf(ErrTopology, "block %d joins vertex %d to itself", b.ID, b.Vertices[0])
		}
	}
	if nVertex != nBlock+1 {
		return nil, errors.Wrapf(ErrTopology, "%d blocks need %d vertices, found %d", nBlock, nBlock+1, nVertex)
	}

	tree := simple.NewUndirectedGraph()
	for v := 0; v < nVertex; v++ {
		tree.AddNode(simple.Node(v))
	}
	for _, b := range blocks {
		u, v := int64(b.Vertices[0]), int64(b.Vertices[1])
		if tree.HasEdgeBetween(u, v) {
			return nil, errors.Wrapf(ErrTopology, "vertices %d and %d joined twice", u, v)
		}
		tree.SetEdge(tree.NewEdge(simple.Node(u), simple.Node(v)))
	}
	if cc := topo.ConnectedComponents(tree); len(cc) != 1 {
		return nil, errors.Wrapf(ErrTopology, "block graph has %d disconnected parts", len(cc))
	}

	// Propagators ending at each vertex.
	ending := make([][]PropagatorID, nVertex)
	for _, b := range blocks {
		for d := 0; d < 2; d++ {
			v := b.Vertices[1-d]
			ending[v] = append(ending[v], PropagatorID{b.ID, d})
		}
	}

	plan := &Plan{NVertex: nVertex, Sources: make([][]PropagatorID, 2*nBlock)}
	deps := simple.NewDirectedGraph()
	for i := 0; i < 2*nBlock; i++ {
		deps.AddNode(simple.Node(i))
	}
	for _, b := range blocks {
		for d := 0; d < 2; d++ {
			p := PropagatorID{b.ID, d}
			for _, s := range ending[b.Vertices[d]] {
				if s.Block == b.ID {
					continue
				}
				plan.Sources[p.Index()] = append(plan.Sources[p.Index()], s)
				deps.SetEdge(deps.NewEdge(simple.Node(s.Index()), simple.Node(p.Index())))
			}
		}
	}

	sorted, err := topo.SortStabilized(deps, func(nodes []graph.Node) {
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	})
	if err != nil {
		return nil, errors.Wrapf(ErrTopology, "propagator dependencies: %v", err)
	}

	level := make([]int, 2*nBlock)
	for _, n := range sorted {
		p := propagatorFromIndex(n.ID())
		l := 0
		for _, s := range plan.Sources[p.Index()] {
			if level[s.Index()]+1 > l {
				l = level[s.Index()] + 1
			}
		}
		level[p.Index()] = l
		for len(plan.Levels) <= l {
			plan.Levels = append(plan.Levels, nil)
		}
		plan.Levels[l] = append(plan.Levels[l], p)
		plan.Order = append(plan.Order, p)
	}
	return plan, nil
}

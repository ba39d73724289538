package dme

import (
	"fmt"
	"io"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/pkg/errors"
)

// GraphvizFormats lists the supported rendering formats.
var GraphvizFormats = map[string]graphviz.Format{
	"png": graphviz.PNG,
	"svg": graphviz.SVG,
	"jpg": graphviz.JPG,
}

// graphBuilder is the part of a graphviz graph the tree drawing needs.
type graphBuilder interface {
	CreateNode(name string) (*cgraph.Node, error)
	CreateEdge(name string, start, end *cgraph.Node) (*cgraph.Edge, error)
}

// closeAll closes the graph objects in order and returns the first error.
func closeAll(closers ...io.Closer) error {
	var first error
	for _, closer := range closers {
		if err := closer.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// DrawGraph builds a graphviz graph of the tree. Leaves are boxes labelled with their value,
// population weight and sample count. The caller closes the graph and then graphViz.
func (f *TreeFeature) DrawGraph() (*graphviz.Graphviz, *cgraph.Graph, error) {
	graphViz := graphviz.New()
	graph, err := graphViz.Graph()
	if err != nil {
		_ = closeAll(graphViz)
		return nil, nil, errors.Wrap(err, "can't create a graph")
	}
	if err := f.buildGraph(graph); err != nil {
		_ = closeAll(graph, graphViz)
		return nil, nil, err
	}
	return graphViz, graph, nil
}

// buildGraph adds the nodes of the tree in breadth-first order, named by their position in that order.
func (f *TreeFeature) buildGraph(graph graphBuilder) error {
	type pending struct {
		node   *Node
		parent *cgraph.Node
	}
	queue := []pending{{node: f.root}}
	for id := 0; len(queue) > 0; id++ {
		current := queue[0]
		queue = queue[1:]

		graphNode, err := graph.CreateNode(fmt.Sprint(id))
		if err != nil {
			return errors.Wrapf(err, "can't create graph node %d", id)
		}
		if current.parent != nil {
			if _, err := graph.CreateEdge("", current.parent, graphNode); err != nil {
				return errors.Wrapf(err, "can't create graph edge to node %d", id)
			}
		}
		graphNode.Set("label", current.node.GraphDescription())
		if current.node.IsLeaf() {
			graphNode.Set("shape", "box")
			continue
		}
		queue = append(queue, pending{current.node.left, graphNode}, pending{current.node.right, graphNode})
	}
	return nil
}

// RenderTree writes a picture of the tree to the file in one of GraphvizFormats.
func RenderTree(feature *TreeFeature, format, filename string) error {
	graphvizFormat, ok := GraphvizFormats[format]
	if !ok {
		return errors.Errorf("unknown tree picture format %q", format)
	}
	graphViz, graph, err := feature.DrawGraph()
	if err != nil {
		return err
	}
	defer func() { _ = closeAll(graph, graphViz) }()
	return errors.Wrapf(graphViz.RenderFilename(graph, graphvizFormat, filename), "can't render tree to %s", filename)
}

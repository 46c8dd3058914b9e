package trace

import "sort"

// Stats summarizes a tree.
type Stats struct {
	Nodes     int
	MaxDepth  int
	RootValue float64
}

// TreeStats walks the tree rooted at root. A nil root has zero stats.
func TreeStats(root *VisualNode) Stats {
	if root == nil {
		return Stats{}
	}
	ret := Stats{RootValue: root.Value}
	var walk func(n *VisualNode, depth int)
	walk = func(n *VisualNode, depth int) {
		ret.Nodes++
		if depth > ret.MaxDepth {
			ret.MaxDepth = depth
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(root, 1)
	return ret
}

// FunctionTime is the total self time spent in a function.
type FunctionTime struct {
	Name  string
	Self  float64
	Calls int
}

// SelfTimes returns the self time of every function in the tree, largest
// first. Self time is a node's value minus the sum of its children's values,
// never less than zero. Ties are ordered by name.
func SelfTimes(root *VisualNode) []FunctionTime {
	byName := map[string]*FunctionTime{}
	var walk func(n *VisualNode)
	walk = func(n *VisualNode) {
		self := n.Value
		for _, c := range n.Children {
			self -= c.Value
			walk(c)
		}
		if self < 0 {
			self = 0
		}
		ft, ok := byName[n.Name]
		if !ok {
			ft = &FunctionTime{Name: n.Name}
			byName[n.Name] = ft
		}
		ft.Self += self
		ft.Calls++
	}
	if root != nil {
		walk(root)
	}

	ret := make([]FunctionTime, 0, len(byName))
	for _, ft := range byName {
		ret = append(ret, *ft)
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].Self != ret[j].Self {
			return ret[i].Self > ret[j].Self
		}
		return ret[i].Name < ret[j].Name
	})
	return ret
}

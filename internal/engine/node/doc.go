// Package node provides the document tree model: a hierarchy of element
// nodes containing children and leaf nodes containing text, addressed by
// index paths.
//
// A document is a single root element. Elements hold an ordered list of
// children; leaves hold a text run. Both carry an open property map for
// formatting and application metadata (heading level, bold, comment
// thread ids, and so on) that the structural algebra never interprets.
//
// Navigation is path-based and read-only in this package:
//
//	root := node.NewElement("doc",
//	    node.NewElement("paragraph", node.NewText("hello")),
//	)
//
//	n, err := node.Get(root, path.Path{0, 0})  // the "hello" leaf
//
// Mutation happens only through the engine facade, which applies
// operations to the tree; keeping this package free of edit logic is what
// keeps the rebasing algebra testable against a model that cannot change
// underneath it.
//
// Nodes marshal to and from a stable JSON form (and YAML, for scenario
// files): elements as {"type": ..., "children": [...]}, leaves as
// {"text": ...}, extra keys folding into the property map.
package node

// Package replay runs recorded operation scenarios against a fresh
// document and traces what happens to a set of tracked locations.
//
// A scenario file names a starting tree, the locations to watch (paths,
// points, or ranges, each with an optional affinity), and a list of
// operations in their wire form. Running it applies the operations in
// order and records, for every tracked location, where it stood after
// each step: unmoved, moved, or invalidated.
//
// Scenario files are YAML by default; files that parse as JSON are
// accepted as-is, so captured wire traffic can be replayed without
// rewriting it:
//
//	name: split shuffle
//	document:
//	  type: doc
//	  children:
//	    - type: paragraph
//	      children:
//	        - text: alpha
//	track:
//	  - name: caret
//	    point: {path: [0, 0], offset: 3}
//	    affinity: backward
//	operations:
//	  - {type: split_node, path: [0, 0], position: 2}
//
// The package also provides a terminal reporter and a file watcher so
// a scenario can be re-run on every save while it is being written.
package replay

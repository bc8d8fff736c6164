package path

import "fmt"

// Levels returns every prefix of p from the root down to p itself,
// inclusive, so the result always has len(p)+1 entries. The order is
// shallowest first unless reverse is set.
func Levels(p Path, reverse bool) []Path {
	list := make([]Path, 0, len(p)+1)
	for i := 0; i <= len(p); i++ {
		list = append(list, p[:i].Clone())
	}
	if reverse {
		for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
			list[i], list[j] = list[j], list[i]
		}
	}
	return list
}

// Ancestors returns every proper prefix of p: Levels with p itself
// removed. The order is shallowest first unless reverse is set.
func Ancestors(p Path, reverse bool) []Path {
	list := Levels(p, reverse)
	if reverse {
		return list[1:]
	}
	return list[:len(list)-1]
}

// Common returns the longest shared prefix of a and b. The result is a
// fresh path; it is empty when the paths diverge at the root.
func Common(a, b Path) Path {
	c := Path{}
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			break
		}
		c = append(c, a[i])
	}
	return c
}

// Next returns the path of the sibling immediately after p. The root has
// no siblings, so Next of the root fails with ErrRoot.
func Next(p Path) (Path, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("next of %v: %w", p, ErrRoot)
	}
	n := p.Clone()
	n[len(n)-1]++
	return n, nil
}

// Previous returns the path of the sibling immediately before p. It fails
// with ErrRoot for the root path and with ErrNoPrevious when the last
// index is already zero, since indices cannot go negative.
func Previous(p Path) (Path, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("previous of %v: %w", p, ErrRoot)
	}
	if p[len(p)-1] <= 0 {
		return nil, fmt.Errorf("previous of %v: %w", p, ErrNoPrevious)
	}
	n := p.Clone()
	n[len(n)-1]--
	return n, nil
}

// Parent returns p with its final element dropped. It fails with ErrRoot
// for the root path.
func Parent(p Path) (Path, error) {
	if len(p) == 0 {
		return nil, fmt.Errorf("parent of %v: %w", p, ErrRoot)
	}
	return p[:len(p)-1].Clone(), nil
}

// Relative returns the suffix of p below ancestor. It fails with
// ErrNotAncestor unless ancestor is an ancestor of, or equal to, p.
// Relative(p, p) is the empty path; Relative(p, Root) is p itself.
func Relative(p, ancestor Path) (Path, error) {
	if !IsAncestor(ancestor, p) && !Equals(ancestor, p) {
		return nil, fmt.Errorf("relative of %v to %v: %w", p, ancestor, ErrNotAncestor)
	}
	return p[len(ancestor):].Clone(), nil
}

// internal/expr/simplify.go
package expr

// Iteration cap for Simplify; guards against a folding rule that
// oscillates. A single pass usually converges.
const maxSimplifyIterations = 100

// Simplify folds constant sub-expressions until the tree reaches a fixed
// point:
//
//	And(True, x)  -> x       Or(False, x) -> x
//	And(False, x) -> False   Or(True, x)  -> True
//	And()         -> True    Or()         -> False
//	Not(True)     -> False   Not(Not(x))  -> x
//
// The input is not modified.
func Simplify(e Expression) Expression {
	current := e
	for i := 0; i < maxSimplifyIterations; i++ {
		next := simplifyOnce(current)
		if Equal(next, current) {
			return next
		}
		current = next
	}
	return current
}

func simplifyOnce(e Expression) Expression {
	switch node := e.(type) {
	case And:
		children := make([]Expression, 0, len(node.Children))
		for _, child := range node.Children {
			simplified := simplifyOnce(child)
			if Equal(simplified, False) {
				return False
			}
			if Equal(simplified, True) {
				continue
			}
			children = append(children, simplified)
		}
		if len(children) == 0 {
			return True
		}
		if len(children) == 1 {
			return children[0]
		}
		return And{Children: children}
	case Or:
		children := make([]Expression, 0, len(node.Children))
		for _, child := range node.Children {
			simplified := simplifyOnce(child)
			if Equal(simplified, True) {
				return True
			}
			if Equal(simplified, False) {
				continue
			}
			children = append(children, simplified)
		}
		if len(children) == 0 {
			return False
		}
		if len(children) == 1 {
			return children[0]
		}
		return Or{Children: children}
	case Not:
		child := simplifyOnce(node.Child)
		if Equal(child, True) {
			return False
		}
		if Equal(child, False) {
			return True
		}
		if inner, ok := child.(Not); ok {
			return inner.Child
		}
		return Not{Child: child}
	default:
		return e
	}
}

// Replace returns a copy of e in which every sub-expression matched by test
// is substituted with replacement. The replacement subtree is not descended
// into.
func Replace(e Expression, test func(Expression) bool, replacement Expression) Expression {
	if test(e) {
		return replacement
	}
	switch node := e.(type) {
	case And:
		children := make([]Expression, len(node.Children))
		for i, child := range node.Children {
			children[i] = Replace(child, test, replacement)
		}
		return And{Children: children}
	case Or:
		children := make([]Expression, len(node.Children))
		for i, child := range node.Children {
			children[i] = Replace(child, test, replacement)
		}
		return Or{Children: children}
	case Not:
		return Not{Child: Replace(node.Child, test, replacement)}
	default:
		return e
	}
}

// Contains reports whether test matches e or any sub-expression of e.
func Contains(e Expression, test func(Expression) bool) bool {
	if test(e) {
		return true
	}
	switch node := e.(type) {
	case And:
		for _, child := range node.Children {
			if Contains(child, test) {
				return true
			}
		}
	case Or:
		for _, child := range node.Children {
			if Contains(child, test) {
				return true
			}
		}
	case Not:
		return Contains(node.Child, test)
	}
	return false
}

// Equal reports structural equality of two expressions. Child order is
// significant; MatchAny value lists compare element-wise.
func Equal(a, b Expression) bool {
	switch nodeA := a.(type) {
	case constant:
		nodeB, ok := b.(constant)
		return ok && nodeA == nodeB
	case And:
		nodeB, ok := b.(And)
		return ok && equalChildren(nodeA.Children, nodeB.Children)
	case Or:
		nodeB, ok := b.(Or)
		return ok && equalChildren(nodeA.Children, nodeB.Children)
	case Not:
		nodeB, ok := b.(Not)
		return ok && Equal(nodeA.Child, nodeB.Child)
	case MatchField:
		nodeB, ok := b.(MatchField)
		return ok && nodeA == nodeB
	case MatchAny:
		nodeB, ok := b.(MatchAny)
		if !ok || nodeA.Field != nodeB.Field || nodeA.MatchWhenMissing != nodeB.MatchWhenMissing {
			return false
		}
		if len(nodeA.Values) != len(nodeB.Values) {
			return false
		}
		for i := range nodeA.Values {
			if nodeA.Values[i] != nodeB.Values[i] {
				return false
			}
		}
		return true
	case MatchType:
		nodeB, ok := b.(MatchType)
		return ok && nodeA == nodeB
	default:
		return false
	}
}

func equalChildren(a, b []Expression) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

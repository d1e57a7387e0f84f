package uia

// maxAncestorDepth bounds the parent walk; defective providers can expose
// cycles or pathologically deep trees.
const maxAncestorDepth = 10

// releaser is implemented by elements that hold native tree references.
// Elements created during a walk are released once the walk moves past them;
// the walked element itself stays owned by the caller.
type releaser interface{ Release() }

func release(el Element) {
	if r, ok := el.(releaser); ok {
		r.Release()
	}
}

// AncestorPath walks parents through the raw tree view and returns, for each
// ancestor, its name when non-empty and its control type otherwise, ordered
// root-most first. The walk ends at the root or at maxAncestorDepth entries.
// Any failed read mid-walk ends the walk with the prefix collected so far;
// a parentless element yields an empty, non-nil slice.
func AncestorPath(el Element) []string {
	chain := make([]string, 0, maxAncestorDepth)
	if el == nil {
		return chain
	}

	current, owned := el, false
	for len(chain) < maxAncestorDepth {
		parent, err := current.Parent()
		if owned {
			release(current)
			owned = false
		}
		if err != nil || parent == nil {
			break
		}
		current, owned = parent, true

		label, err := parent.Name()
		if err != nil {
			break
		}
		if label == "" {
			label, err = parent.ControlType()
			if err != nil {
				break
			}
		}
		chain = append(chain, label)
	}
	if owned {
		release(current)
	}

	// Collected leaf-outward; flip to root-most first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

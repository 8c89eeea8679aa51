package tinymod

type color int

const (
	white color = iota
	gray
	black
)

// validateGraph looks for a dependency cycle among bindings.
// It is purely structural: nothing is built and no type argument is inspected.
func validateGraph(module string, bindings []*binding) error {
	colors := make(map[*binding]color, len(bindings))
	path := make([]*binding, 0, len(bindings))

	var visit func(b *binding) []*binding
	visit = func(b *binding) []*binding {
		colors[b] = gray
		path = append(path, b)

		for _, dep := range b.deps {
			if dep == nil {
				continue
			}

			switch colors[dep] {
			case gray:
				for i := len(path) - 1; i >= 0; i-- {
					if path[i] == dep {
						return path[i:]
					}
				}
			case white:
				if cycle := visit(dep); cycle != nil {
					return cycle
				}
			}
		}

		path = path[:len(path)-1]
		colors[b] = black

		return nil
	}

	for _, b := range bindings {
		if colors[b] != white {
			continue
		}

		if cycle := visit(b); cycle != nil {
			ids := make([]InterfaceID, len(cycle))
			for i, c := range cycle {
				ids[i] = c.desc.iface
			}

			return newCyclicDependencyError(module, ids)
		}
	}

	return nil
}

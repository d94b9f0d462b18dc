package frameworks

import (
	"fmt"
	"sort"
)

// loadedNode is a requirement definition resolved into forest position.
type loadedNode struct {
	RequirementDefinition
	Level int
}

// resolveDefinition validates a Definition's requirement forest and assigns
// hierarchy levels. It enforces code uniqueness, parent resolution, and
// acyclicity, and returns nodes ordered so parents precede children.
func resolveDefinition(def *Definition) ([]loadedNode, int, error) {
	if def.Code == "" || def.Name == "" || def.Version == "" {
		return nil, 0, fmt.Errorf("%w: code, name, and version are required", ErrInvalidDefinition)
	}
	if len(def.Requirements) == 0 {
		return nil, 0, fmt.Errorf("%w: no requirements", ErrInvalidDefinition)
	}

	byCode := make(map[string]RequirementDefinition, len(def.Requirements))
	for _, rd := range def.Requirements {
		if rd.Code == "" {
			return nil, 0, fmt.Errorf("%w: requirement with empty code", ErrInvalidDefinition)
		}
		if _, exists := byCode[rd.Code]; exists {
			return nil, 0, fmt.Errorf("%w: duplicate code %q", ErrInvalidDefinition, rd.Code)
		}
		byCode[rd.Code] = rd
	}

	levels := make(map[string]int, len(byCode))
	var resolve func(code string, trail map[string]bool) (int, error)
	resolve = func(code string, trail map[string]bool) (int, error) {
		if lvl, ok := levels[code]; ok {
			return lvl, nil
		}
		if trail[code] {
			return 0, fmt.Errorf("%w: cycle through %q", ErrInvalidDefinition, code)
		}

		rd := byCode[code]
		if rd.ParentCode == "" {
			levels[code] = 0
			return 0, nil
		}
		if _, ok := byCode[rd.ParentCode]; !ok {
			return 0, fmt.Errorf("%w: %q references unknown parent %q", ErrInvalidDefinition, code, rd.ParentCode)
		}

		trail[code] = true
		parentLevel, err := resolve(rd.ParentCode, trail)
		if err != nil {
			return 0, err
		}
		delete(trail, code)

		levels[code] = parentLevel + 1
		return parentLevel + 1, nil
	}

	maxLevel := 0
	nodes := make([]loadedNode, 0, len(def.Requirements))
	for _, rd := range def.Requirements {
		lvl, err := resolve(rd.Code, map[string]bool{})
		if err != nil {
			return nil, 0, err
		}
		if lvl > maxLevel {
			maxLevel = lvl
		}
		nodes = append(nodes, loadedNode{RequirementDefinition: rd, Level: lvl})
	}

	// Parents before children so inserts can resolve parent ids in one pass.
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].Level != nodes[j].Level {
			return nodes[i].Level < nodes[j].Level
		}
		return nodes[i].DisplayOrder < nodes[j].DisplayOrder
	})

	return nodes, maxLevel + 1, nil
}

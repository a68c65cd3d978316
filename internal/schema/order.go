package schema

import (
	"log/slog"
	"strings"
)

// SortTablesByDependencies orders tables so that every table follows the
// tables it depends on. Dependencies on unknown tables are ignored. Cycles
// are broken by picking the table with the fewest unmet dependencies,
// preferring tables that take part in a two-way cycle.
func SortTablesByDependencies(tables []*Table, logger *slog.Logger) []*Table {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	byName := make(map[string]*Table, len(tables))
	for _, t := range tables {
		byName[strings.ToUpper(t.Name)] = t
	}
	deps := make(map[*Table][]*Table, len(tables))
	for _, t := range tables {
		for _, name := range t.DependsOn {
			if dep, ok := byName[strings.ToUpper(name)]; ok && dep != t {
				deps[t] = append(deps[t], dep)
			}
		}
	}

	sorted := make([]*Table, 0, len(tables))
	processed := make(map[*Table]bool, len(tables))

	for len(sorted) < len(tables) {
		added := false
		for _, t := range tables {
			if processed[t] {
				continue
			}
			ready := true
			for _, dep := range deps[t] {
				if !processed[dep] {
					ready = false
					break
				}
			}
			if ready {
				sorted = append(sorted, t)
				processed[t] = true
				added = true
			}
		}
		if added {
			continue
		}

		// cycle: every remaining table waits on another one
		var best *Table
		bestScore := 0
		for _, t := range tables {
			if processed[t] {
				continue
			}
			score := 0
			for _, dep := range deps[t] {
				if processed[dep] {
					continue
				}
				score -= 100
				for _, back := range deps[dep] {
					if back == t {
						score += 500
						break
					}
				}
			}
			if best == nil || score > bestScore || (score == bestScore && t.Name < best.Name) {
				best, bestScore = t, score
			}
		}
		logger.Warn("breaking circular dependency", slog.String("table", best.Name), slog.Int("score", bestScore))
		sorted = append(sorted, best)
		processed[best] = true
	}

	return sorted
}

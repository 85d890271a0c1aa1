package rewrite

import (
	"fmt"
	"sort"
	"strings"
)

// Policy picks one candidate when a basename resolves to several headers.
type Policy interface {
	Name() string
	// Choose returns one element of candidates, which is never empty.
	Choose(candidates []string) string
}

type policyFunc struct {
	name   string
	choose func([]string) string
}

func (p policyFunc) Name() string                      { return p.name }
func (p policyFunc) Choose(candidates []string) string { return p.choose(candidates) }

// FirstDiscovered keeps the candidate found first while building the index.
var FirstDiscovered Policy = policyFunc{
	name: "first",
	choose: func(candidates []string) string {
		return candidates[0]
	},
}

// ShortestPath prefers the candidate with the fewest characters, falling back to discovery order.
var ShortestPath Policy = policyFunc{
	name: "shortest",
	choose: func(candidates []string) string {
		best := candidates[0]
		for _, c := range candidates[1:] {
			if len(c) < len(best) {
				best = c
			}
		}
		return best
	},
}

// Lexical prefers the lexicographically smallest candidate.
var Lexical Policy = policyFunc{
	name: "lexical",
	choose: func(candidates []string) string {
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c < best {
				best = c
			}
		}
		return best
	},
}

var policies = map[string]Policy{
	FirstDiscovered.Name(): FirstDiscovered,
	ShortestPath.Name():    ShortestPath,
	Lexical.Name():         Lexical,
}

// PolicyNames returns the names accepted by ParsePolicy, sorted.
func PolicyNames() []string {
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParsePolicy resolves a policy by name. An empty name selects FirstDiscovered.
func ParsePolicy(name string) (Policy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return FirstDiscovered, nil
	}
	p, ok := policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown tie-break policy %q (valid: %s)", name, strings.Join(PolicyNames(), ", "))
	}
	return p, nil
}

// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package graph turns depends_on edges into a deterministic start plan.
//
// The plan is a list of stages: stage n holds every service whose
// dependencies all live in earlier stages, so one stage can start and be
// health-checked as a unit while cross-stage order stays strict.
package graph

import (
	"sort"
	"strings"

	"go.chromium.org/luci/common/errors"
)

// Deps maps a node to the nodes it depends on. Every node must appear as
// a key, with an empty slice when it has no dependencies.
type Deps map[string][]string

// Plan computes the staged start order for the requested nodes plus their
// transitive dependencies. An empty request plans the whole graph.
func Plan(deps Deps, requested []string) ([][]string, error) {
	if len(requested) == 0 {
		return Stages(deps)
	}
	closure, err := Closure(deps, requested)
	if err != nil {
		return nil, err
	}
	induced := Deps{}
	for _, node := range closure {
		induced[node] = deps[node]
	}
	return Stages(induced)
}

// Stages layers the whole graph with Kahn's algorithm. Node names are
// sorted within each stage so plans are stable run to run. A cycle is an
// error naming one witness path.
func Stages(deps Deps) ([][]string, error) {
	indeg := map[string]int{}
	dependents := map[string][]string{}
	for node := range deps {
		indeg[node] = 0
	}
	for node, ds := range deps {
		for _, d := range ds {
			if _, ok := deps[d]; !ok {
				return nil, errors.Reason("%s depends on unknown service %s", node, d).Err()
			}
			indeg[node]++
			dependents[d] = append(dependents[d], node)
		}
	}

	var stages [][]string
	for len(indeg) > 0 {
		var stage []string
		for node, d := range indeg {
			if d == 0 {
				stage = append(stage, node)
			}
		}
		if len(stage) == 0 {
			witness := cycleWitness(deps, indeg)
			return nil, errors.Reason("dependency cycle: %s", strings.Join(witness, " -> ")).Err()
		}
		sort.Strings(stage)
		for _, node := range stage {
			for _, m := range dependents[node] {
				if _, live := indeg[m]; live {
					indeg[m]--
				}
			}
			delete(indeg, node)
		}
		stages = append(stages, stage)
	}
	return stages, nil
}

// Closure returns requested plus every transitive dependency, sorted.
// Requesting an unknown node is an error.
func Closure(deps Deps, requested []string) ([]string, error) {
	seen := map[string]bool{}
	queue := append([]string{}, requested...)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if seen[node] {
			continue
		}
		ds, ok := deps[node]
		if !ok {
			return nil, errors.Reason("unknown service %q", node).Err()
		}
		seen[node] = true
		queue = append(queue, ds...)
	}
	out := make([]string, 0, len(seen))
	for node := range seen {
		out = append(out, node)
	}
	sort.Strings(out)
	return out, nil
}

// Reverse returns the stages in stop order: last stage first, names still
// sorted within each stage.
func Reverse(stages [][]string) [][]string {
	out := make([][]string, 0, len(stages))
	for i := len(stages) - 1; i >= 0; i-- {
		out = append(out, stages[i])
	}
	return out
}

// Flatten concatenates the stages into one ordered slice.
func Flatten(stages [][]string) []string {
	var out []string
	for _, stage := range stages {
		out = append(out, stage...)
	}
	return out
}

// cycleWitness extracts one deterministic cycle path from the nodes still
// unplaced after Kahn's algorithm stalls.
func cycleWitness(deps Deps, remaining map[string]int) []string {
	nodes := make([]string, 0, len(remaining))
	for node := range remaining {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)

	const (
		white = iota
		gray
		black
	)
	color := map[string]int{}
	var path []string
	var cycle []string

	var dfs func(string) bool
	dfs = func(u string) bool {
		color[u] = gray
		path = append(path, u)
		ds := append([]string{}, deps[u]...)
		sort.Strings(ds)
		for _, v := range ds {
			if _, live := remaining[v]; !live {
				continue
			}
			if color[v] == gray {
				for i, p := range path {
					if p == v {
						cycle = append(append([]string{}, path[i:]...), v)
						return true
					}
				}
			}
			if color[v] == white && dfs(v) {
				return true
			}
		}
		path = path[:len(path)-1]
		color[u] = black
		return false
	}

	for _, node := range nodes {
		if color[node] == white && dfs(node) {
			return cycle
		}
	}
	return nil
}

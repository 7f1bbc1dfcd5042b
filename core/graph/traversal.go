package graph

import (
	"context"

	"github.com/sarda-devesh/unsupervised-kg/model"
)

// RelationLookup returns the relations an entity takes part in.
// It is implemented by KnowledgeGraph and by the relations table.
type RelationLookup interface {
	RelationsOf(ctx context.Context, entity string, relationTypes []string) ([]*model.Relation, error)
}

// TraversalResult contains an entity and its distance from the source
type TraversalResult struct {
	Entity   string
	Distance int
	Path     []string        // Path from source to this entity
	Via      *model.Relation // Relation used to reach the entity, nil for the source
}

// BFS performs breadth-first search from a source entity. Relations are
// followed from head to tail, and also from tail to head when followReverse is set.
func BFS(ctx context.Context, store RelationLookup, source string, maxHops int, relationTypes []string, followReverse bool) ([]*TraversalResult, error) {
	if _, err := store.RelationsOf(ctx, source, relationTypes); err != nil {
		return nil, err
	}

	visited := map[string]bool{source: true}
	queue := []TraversalResult{{
		Entity:   source,
		Distance: 0,
		Path:     []string{source},
	}}

	var results []*TraversalResult
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		results = append(results, &current)

		// Stop if we've reached max hops
		if current.Distance >= maxHops {
			continue
		}

		relations, err := store.RelationsOf(ctx, current.Entity, relationTypes)
		if err != nil {
			return nil, err
		}

		for _, relation := range relations {
			target, ok := neighbor(relation, current.Entity, followReverse)
			if !ok || visited[target] {
				continue
			}
			visited[target] = true

			newPath := make([]string, len(current.Path), len(current.Path)+1)
			copy(newPath, current.Path)
			newPath = append(newPath, target)

			queue = append(queue, TraversalResult{
				Entity:   target,
				Distance: current.Distance + 1,
				Path:     newPath,
				Via:      relation,
			})
		}
	}

	return results, nil
}

// DFS performs depth-first search from a source entity
func DFS(ctx context.Context, store RelationLookup, source string, maxHops int, relationTypes []string, followReverse bool) ([]*TraversalResult, error) {
	if _, err := store.RelationsOf(ctx, source, relationTypes); err != nil {
		return nil, err
	}

	visited := make(map[string]bool)
	var results []*TraversalResult
	dfsRecursive(ctx, store, source, nil, 0, maxHops, []string{source}, relationTypes, followReverse, visited, &results)

	return results, nil
}

func dfsRecursive(
	ctx context.Context,
	store RelationLookup,
	current string,
	via *model.Relation,
	distance int,
	maxHops int,
	path []string,
	relationTypes []string,
	followReverse bool,
	visited map[string]bool,
	results *[]*TraversalResult,
) {
	visited[current] = true

	pathCopy := make([]string, len(path))
	copy(pathCopy, path)
	*results = append(*results, &TraversalResult{
		Entity:   current,
		Distance: distance,
		Path:     pathCopy,
		Via:      via,
	})

	if distance >= maxHops {
		return
	}

	relations, err := store.RelationsOf(ctx, current, relationTypes)
	if err != nil {
		return
	}

	for _, relation := range relations {
		target, ok := neighbor(relation, current, followReverse)
		if !ok || visited[target] {
			continue
		}

		newPath := make([]string, len(path), len(path)+1)
		copy(newPath, path)
		newPath = append(newPath, target)

		dfsRecursive(ctx, store, target, relation, distance+1, maxHops, newPath, relationTypes, followReverse, visited, results)
	}
}

// GetNeighbors retrieves the entities one relation away
func GetNeighbors(ctx context.Context, store RelationLookup, entity string, relationTypes []string, followReverse bool) ([]string, error) {
	results, err := BFS(ctx, store, entity, 1, relationTypes, followReverse)
	if err != nil {
		return nil, err
	}

	// Skip the source entity itself (first result)
	neighbors := make([]string, 0, len(results)-1)
	for i := 1; i < len(results); i++ {
		neighbors = append(neighbors, results[i].Entity)
	}

	return neighbors, nil
}

func neighbor(relation *model.Relation, current string, followReverse bool) (string, bool) {
	switch {
	case relation.Head == current:
		return relation.Tail, true
	case followReverse && relation.Tail == current:
		return relation.Head, true
	default:
		return "", false
	}
}

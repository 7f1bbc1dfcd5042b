package tree

import (
	"strings"

	"github.com/sarda-devesh/unsupervised-kg/model"
)

// Flatten walks the forest and lists every parent to child edge plus the
// strat terms that have no children.
func Flatten(ex *model.Extraction, forest []model.TermID, hierarchy *Hierarchy, text model.Paragraph) (model.ParagraphResult, error) {
	result := model.ParagraphResult{
		Text:          text,
		Relationships: []model.Relationship{},
		JustEntities:  []model.JustEntity{},
	}

	var walk func(parent model.TermID) error
	walk = func(parent model.TermID) error {
		term := ex.Terms.Get(parent)
		level, err := hierarchy.Level(term.Type)
		if err != nil {
			return err
		}
		relType, emits := hierarchy.RelationType(level)

		for _, child := range term.Children {
			if emits {
				result.Relationships = append(result.Relationships, model.Relationship{
					Src:              ex.Text(parent),
					RelationshipType: relType,
					Dst:              ex.Text(child.ID),
				})
			}
			if err := walk(child.ID); err != nil {
				return err
			}
		}
		return nil
	}

	stratPrefix := hierarchy.Label(0)
	for _, root := range forest {
		term := ex.Terms.Get(root)
		if len(term.Children) == 0 && strings.HasPrefix(term.Type, stratPrefix) {
			result.JustEntities = append(result.JustEntities, model.JustEntity{
				Entity:     ex.Text(root),
				EntityType: term.Type,
			})
		}
		if err := walk(root); err != nil {
			return result, err
		}
	}

	return result, nil
}

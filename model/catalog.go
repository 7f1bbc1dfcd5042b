package model

// Relation types produced by the term tree
const (
	RelationStratToLith = "strat_to_lith"
	RelationAttOfLith   = "att_of_lith"
)

// RelationDetails describes a relation type for people and for typed graph stores
type RelationDetails struct {
	HumanType string `json:"human_type" yaml:"human_type"`
	SrcType   string `json:"src_type" yaml:"src_type"`
	DstType   string `json:"dst_type" yaml:"dst_type"`
}

// RelationCatalog maps relation types to their details
type RelationCatalog map[string]RelationDetails

// DefaultRelationCatalog covers the tree relations and the relations
// emitted by the fine-tuned REBEL model.
func DefaultRelationCatalog() RelationCatalog {
	return RelationCatalog{
		RelationStratToLith:  {HumanType: "strat has lithology", SrcType: "strat_name", DstType: "lith"},
		RelationAttOfLith:    {HumanType: "lithology has attribute", SrcType: "lith", DstType: "lith_att"},
		"att_lithology":      {HumanType: "has lithology of", SrcType: "lithology", DstType: "lith attribute lithology"},
		"att_sed_structure":  {HumanType: "has sedimentary structure", SrcType: "lithology", DstType: "lith attribute sedimentary structure"},
		"strat_name_to_lith": {HumanType: "strat has lithology", SrcType: "strat_name", DstType: "lithology"},
		"lith_to_lith_group": {HumanType: "lithology is part of group", SrcType: "lithology", DstType: "lithology group"},
		"lith_to_lith_type":  {HumanType: "lithology has type of", SrcType: "lithology", DstType: "lithology type"},
		"att_grains":         {HumanType: "has grains of", SrcType: "lithology", DstType: "lith attribute grains"},
		"att_color":          {HumanType: "has color of", SrcType: "lithology", DstType: "lith attribute color"},
		"att_bedform":        {HumanType: "has bedform of", SrcType: "lithology", DstType: "lith attribute bedform"},
		"att_structure":      {HumanType: "has structure of", SrcType: "lithology", DstType: "lith attribute structure"},
	}
}

// Lookup returns the details for relType and whether it is known
func (c RelationCatalog) Lookup(relType string) (RelationDetails, bool) {
	details, ok := c[relType]
	return details, ok
}

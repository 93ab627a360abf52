package model

import (
	"gorm.io/datatypes"
)

// GraphEdge is the relational row of a graph edge. Rows are never deduplicated.
type GraphEdge struct {
	Model
	Kind       string            `json:"kind" gorm:"column:kind;type:varchar(32);not null;index:idx_kind_from;index:idx_kind_to"`
	FromLabel  string            `json:"from_label" gorm:"column:from_label;type:varchar(32);not null;index:idx_kind_from"`
	FromKey    string            `json:"from_key" gorm:"column:from_key;type:varchar(255);not null;index:idx_kind_from"`
	ToLabel    string            `json:"to_label" gorm:"column:to_label;type:varchar(32);not null;index:idx_kind_to"`
	ToKey      string            `json:"to_key" gorm:"column:to_key;type:varchar(255);not null;index:idx_kind_to"`
	Attributes datatypes.JSONMap `json:"attributes" gorm:"column:attributes"`
}

func (e *GraphEdge) TableName() string {
	return "graph_edges"
}

package model

import (
	"gorm.io/datatypes"
)

// GraphNode is the relational row of a graph node.
type GraphNode struct {
	Model
	Label      string            `json:"label" gorm:"column:label;type:varchar(32);not null;uniqueIndex:idx_label_identity"`
	Identity   string            `json:"identity" gorm:"column:identity;type:varchar(255);not null;uniqueIndex:idx_label_identity"`
	Attributes datatypes.JSONMap `json:"attributes" gorm:"column:attributes"`
}

func (n *GraphNode) TableName() string {
	return "graph_nodes"
}

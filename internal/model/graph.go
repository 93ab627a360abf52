package model

import "fmt"

// Label names a node type in the crawled graph.
type Label string

const (
	LabelRepo   Label = "Repo"
	LabelPerson Label = "Person"
)

// IdentityKey is the property holding the node's identity.
func (l Label) IdentityKey() string {
	switch l {
	case LabelRepo:
		return "name"
	case LabelPerson:
		return "username"
	default:
		return ""
	}
}

func (l Label) Validate() error {
	if l.IdentityKey() == "" {
		return fmt.Errorf("unknown node label %q", string(l))
	}
	return nil
}

// EdgeKind names a relationship type.
type EdgeKind string

const (
	EdgeStarred  EdgeKind = "STARRED"
	EdgeCreated  EdgeKind = "CREATED"
	EdgeFollowed EdgeKind = "FOLLOWED"
)

// Endpoints returns the labels an edge of this kind connects, from -> to.
func (k EdgeKind) Endpoints() (Label, Label) {
	switch k {
	case EdgeStarred, EdgeCreated:
		return LabelPerson, LabelRepo
	case EdgeFollowed:
		return LabelPerson, LabelPerson
	default:
		return "", ""
	}
}

func (k EdgeKind) Validate() error {
	if from, _ := k.Endpoints(); from == "" {
		return fmt.Errorf("unknown edge kind %q", string(k))
	}
	return nil
}

// CountsOutgoing reports whether ranking nodes of label by this edge kind
// counts edges leaving the node. Otherwise incoming edges are counted.
func (k EdgeKind) CountsOutgoing(label Label) bool {
	from, _ := k.Endpoints()
	return from == label
}

// Layer is the provenance tag of a repo: how many hops from the seed set.
type Layer string

const (
	LayerSeed    Layer = "0"
	LayerCreator Layer = "1"
)

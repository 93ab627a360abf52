package model

// Repo is a repository sighted during the crawl.
type Repo struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
	Layer Layer  `json:"layer"`
}

func NewRepo(owner, name string, layer Layer) Repo {
	return Repo{
		Owner: owner,
		Name:  NormalizeRepoName(name),
		Layer: layer,
	}
}

func (r Repo) Key() string {
	return r.Name
}

func (r Repo) Attributes() map[string]any {
	return map[string]any{
		"owner": r.Owner,
		"layer": string(r.Layer),
	}
}

package model

// Person is a platform account. Attributes are a snapshot taken the first time
// the account is seen and are never re-synced.
type Person struct {
	Username         string `json:"username"`
	Location         string `json:"location"`
	StarredRepoCount int    `json:"starred_repo_count"`
}

func NewPerson(login string, location *string, starredRepoCount int) Person {
	return Person{
		Username:         login,
		Location:         NormalizeLocation(location),
		StarredRepoCount: starredRepoCount,
	}
}

func (p Person) Key() string {
	return p.Username
}

func (p Person) Attributes() map[string]any {
	return map[string]any{
		"location":           p.Location,
		"starred_repo_count": p.StarredRepoCount,
	}
}

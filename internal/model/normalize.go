package model

import "strings"

// NormalizeRepoName lowercases a repository name. Repo nodes are unique by the
// normalized name.
func NormalizeRepoName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeLocation maps an absent location to the empty string.
func NormalizeLocation(location *string) string {
	if location == nil {
		return ""
	}
	return *location
}

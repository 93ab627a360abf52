package githubapi

import (
	"encoding/json"
	"fmt"
)

// PageSize is fixed for every connection regardless of the unit's cap.
const PageSize = 100

const stargazersQuery = `
query {
    repository(owner: %s, name: %s) {
        stargazers(first: %d %s) {
            pageInfo {
                endCursor
                hasNextPage
            }
            edges {
                starredAt
                node {
                    login
                    location
                    starredRepositories {
                        totalCount
                    }
                }
            }
        }
    }
}`

const repositoriesQuery = `
query {
    user(login: %s) {
        repositories(first: %d %s) {
            pageInfo {
                endCursor
                hasNextPage
            }
            edges {
                node {
                    name
                }
            }
        }
    }
}`

const followersQuery = `
query {
    user(login: %s) {
        followers(first: %d %s) {
            pageInfo {
                endCursor
                hasNextPage
            }
            edges {
                node {
                    login
                    location
                    starredRepositories {
                        totalCount
                    }
                }
            }
        }
    }
}`

// AfterFragment renders the optional pagination argument.
func AfterFragment(cursor string) string {
	if cursor == "" {
		return ""
	}
	return ", after: " + quote(cursor)
}

func StargazersQuery(owner, name, cursor string) string {
	return fmt.Sprintf(stargazersQuery, quote(owner), quote(name), PageSize, AfterFragment(cursor))
}

func RepositoriesQuery(login, cursor string) string {
	return fmt.Sprintf(repositoriesQuery, quote(login), PageSize, AfterFragment(cursor))
}

func FollowersQuery(login, cursor string) string {
	return fmt.Sprintf(followersQuery, quote(login), PageSize, AfterFragment(cursor))
}

// JSON string literals are valid GraphQL string literals.
func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

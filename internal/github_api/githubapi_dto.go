// Các đối tượng truyền dữ liệu cho GraphQL connection mà crawler đọc

package githubapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedResponse = errors.New("malformed graphql response")

type PageInfo struct {
	EndCursor   *string `json:"endCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

func (p PageInfo) Cursor() string {
	if p.EndCursor == nil {
		return ""
	}
	return *p.EndCursor
}

type Edge[T any] struct {
	StarredAt string `json:"starredAt"`
	Node      *T     `json:"node"`
}

type Connection[T any] struct {
	PageInfo *PageInfo `json:"pageInfo"`
	Edges    []Edge[T] `json:"edges"`
}

type totalCount struct {
	TotalCount int `json:"totalCount"`
}

// UserNode is a stargazer or follower.
type UserNode struct {
	Login               string      `json:"login"`
	Location            *string     `json:"location"`
	StarredRepositories *totalCount `json:"starredRepositories"`
}

func (u *UserNode) StarredCount() int {
	return u.StarredRepositories.TotalCount
}

type RepositoryNode struct {
	Name string `json:"name"`
}

type graphqlError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type envelope[T any] struct {
	Data   *T             `json:"data"`
	Errors []graphqlError `json:"errors"`
}

type repositoryData struct {
	Repository *struct {
		Stargazers *Connection[UserNode] `json:"stargazers"`
	} `json:"repository"`
}

type userData struct {
	User *struct {
		Repositories *Connection[RepositoryNode] `json:"repositories"`
		Followers    *Connection[UserNode]       `json:"followers"`
	} `json:"user"`
}

func decode[T any](doc []byte) (*T, error) {
	env := envelope[T]{}
	if err := json.Unmarshal(doc, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(env.Errors) > 0 {
		msgs := make([]string, 0, len(env.Errors))
		for _, e := range env.Errors {
			if e.Type == "RATE_LIMITED" {
				return nil, fmt.Errorf("%w: %s", ErrRateLimited, e.Message)
			}
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("graphql errors: %s", strings.Join(msgs, "; "))
	}
	if env.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedResponse)
	}
	return env.Data, nil
}

func checkConnection[T any](conn *Connection[T], path string) error {
	if conn == nil {
		return fmt.Errorf("%w: missing %s", ErrMalformedResponse, path)
	}
	if conn.PageInfo == nil {
		return fmt.Errorf("%w: missing %s.pageInfo", ErrMalformedResponse, path)
	}
	for i, e := range conn.Edges {
		if e.Node == nil {
			return fmt.Errorf("%w: %s.edges[%d].node is null", ErrMalformedResponse, path, i)
		}
	}
	return nil
}

func checkUsers(conn *Connection[UserNode], path string) error {
	for i, e := range conn.Edges {
		if e.Node.Login == "" {
			return fmt.Errorf("%w: %s.edges[%d].node.login is empty", ErrMalformedResponse, path, i)
		}
		if e.Node.StarredRepositories == nil {
			return fmt.Errorf("%w: %s.edges[%d].node.starredRepositories is null", ErrMalformedResponse, path, i)
		}
	}
	return nil
}

func DecodeStargazers(doc []byte) (*Connection[UserNode], error) {
	data, err := decode[repositoryData](doc)
	if err != nil {
		return nil, err
	}
	if data.Repository == nil {
		return nil, fmt.Errorf("%w: repository not found", ErrMalformedResponse)
	}
	conn := data.Repository.Stargazers
	if err := checkConnection(conn, "repository.stargazers"); err != nil {
		return nil, err
	}
	if err := checkUsers(conn, "repository.stargazers"); err != nil {
		return nil, err
	}
	return conn, nil
}

func DecodeRepositories(doc []byte) (*Connection[RepositoryNode], error) {
	data, err := decode[userData](doc)
	if err != nil {
		return nil, err
	}
	if data.User == nil {
		return nil, fmt.Errorf("%w: user not found", ErrMalformedResponse)
	}
	conn := data.User.Repositories
	if err := checkConnection(conn, "user.repositories"); err != nil {
		return nil, err
	}
	for i, e := range conn.Edges {
		if e.Node.Name == "" {
			return nil, fmt.Errorf("%w: user.repositories.edges[%d].node.name is empty", ErrMalformedResponse, i)
		}
	}
	return conn, nil
}

func DecodeFollowers(doc []byte) (*Connection[UserNode], error) {
	data, err := decode[userData](doc)
	if err != nil {
		return nil, err
	}
	if data.User == nil {
		return nil, fmt.Errorf("%w: user not found", ErrMalformedResponse)
	}
	conn := data.User.Followers
	if err := checkConnection(conn, "user.followers"); err != nil {
		return nil, err
	}
	if err := checkUsers(conn, "user.followers"); err != nil {
		return nil, err
	}
	return conn, nil
}

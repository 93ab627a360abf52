package githubapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStargazers(t *testing.T) {
	doc := []byte(`{"data":{"repository":{"stargazers":{
		"pageInfo":{"endCursor":"c1","hasNextPage":true},
		"edges":[{"starredAt":"2020-01-01T00:00:00Z","node":{"login":"alice","location":null,"starredRepositories":{"totalCount":3}}}]
	}}}}`)

	conn, err := DecodeStargazers(doc)
	require.NoError(t, err)
	assert.Equal(t, "c1", conn.PageInfo.Cursor())
	assert.True(t, conn.PageInfo.HasNextPage)
	require.Len(t, conn.Edges, 1)
	assert.Equal(t, "alice", conn.Edges[0].Node.Login)
	assert.Nil(t, conn.Edges[0].Node.Location)
	assert.Equal(t, 3, conn.Edges[0].Node.StarredCount())
	assert.Equal(t, "2020-01-01T00:00:00Z", conn.Edges[0].StarredAt)
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":          `<html>`,
		"no data":           `{}`,
		"null repository":   `{"data":{"repository":null}}`,
		"missing pageInfo":  `{"data":{"repository":{"stargazers":{"edges":[]}}}}`,
		"null node":         `{"data":{"repository":{"stargazers":{"pageInfo":{"hasNextPage":false},"edges":[{"node":null}]}}}}`,
		"null starredRepos": `{"data":{"repository":{"stargazers":{"pageInfo":{"hasNextPage":false},"edges":[{"node":{"login":"a"}}]}}}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeStargazers([]byte(doc))
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestDecodeGraphQLErrors(t *testing.T) {
	_, err := DecodeRepositories([]byte(`{"data":null,"errors":[{"type":"NOT_FOUND","message":"Could not resolve to a User"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Could not resolve to a User")

	_, err = DecodeFollowers([]byte(`{"errors":[{"type":"RATE_LIMITED","message":"API rate limit exceeded"}]}`))
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestDecodeRepositoriesAndFollowers(t *testing.T) {
	repos, err := DecodeRepositories([]byte(`{"data":{"user":{"repositories":{
		"pageInfo":{"endCursor":null,"hasNextPage":false},
		"edges":[{"node":{"name":"Tool"}},{"node":{"name":"lib"}}]}}}}`))
	require.NoError(t, err)
	assert.Equal(t, "", repos.PageInfo.Cursor())
	assert.Len(t, repos.Edges, 2)

	followers, err := DecodeFollowers([]byte(`{"data":{"user":{"followers":{
		"pageInfo":{"endCursor":"x","hasNextPage":false},
		"edges":[{"node":{"login":"bob","location":"Paris","starredRepositories":{"totalCount":1}}}]}}}}`))
	require.NoError(t, err)
	assert.Equal(t, "bob", followers.Edges[0].Node.Login)
}

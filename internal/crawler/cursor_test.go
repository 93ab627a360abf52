package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	githubapi "github.com/thep200/git2neo/internal/github_api"
)

func pageInfo(cursor string, hasNext bool) githubapi.PageInfo {
	info := githubapi.PageInfo{HasNextPage: hasNext}
	if cursor != "" {
		info.EndCursor = &cursor
	}
	return info
}

func TestInitialCursor(t *testing.T) {
	c := InitialCursor()
	assert.Equal(t, "", c.Token)
	assert.True(t, c.HasNextPage)
	assert.Equal(t, 0, c.ItemsSeen)
	assert.Equal(t, "", c.After())
}

func TestAdvanceStopsWhenConnectionEnds(t *testing.T) {
	c := InitialCursor()
	assert.False(t, c.Advance(pageInfo("c1", false), 100, 50))
	assert.Equal(t, 100, c.ItemsSeen)
	assert.False(t, c.HasNextPage)
}

func TestAdvanceChecksLimitAfterPage(t *testing.T) {
	c := InitialCursor()
	assert.True(t, c.Advance(pageInfo("c1", true), 100, 150))
	assert.Equal(t, `, after: "c1"`, c.After())
	assert.False(t, c.Advance(pageInfo("c2", true), 100, 150))
	assert.Equal(t, 200, c.ItemsSeen)
	assert.Equal(t, "c2", c.Token)
}

func TestAdvanceWithZeroLimit(t *testing.T) {
	c := InitialCursor()
	assert.False(t, c.Advance(pageInfo("c1", true), 3, 0))
	assert.Equal(t, 3, c.ItemsSeen)
}

func TestAdvanceWithoutEndCursor(t *testing.T) {
	c := InitialCursor()
	assert.False(t, c.Advance(pageInfo("", true), 100, 1000))
	assert.False(t, c.HasNextPage)
}

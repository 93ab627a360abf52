package crawler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	githubapi "github.com/thep200/git2neo/internal/github_api"
	"github.com/thep200/git2neo/internal/model"
	"github.com/thep200/git2neo/internal/store"
)

func unitDeps(client GraphClient, st store.Store) Deps {
	return Deps{
		Logger:  testLogger(),
		Client:  client,
		Store:   st,
		Headers: githubapi.AuthHeaders("test-token"),
	}
}

func TestStargazerUnitStoresPage(t *testing.T) {
	client := newScriptedClient().on("stargazers:vendor1/Lib-CVE-1",
		stargazersPage("", false, gazer{Login: "alice", Starred: 3}, gazer{Login: "bob", Location: strPtr("  Hanoi "), Starred: 7}))
	st := store.NewMemoryStore()

	res := NewStargazerUnit(unitDeps(client, st), "vendor1", "Lib-CVE-1", model.LayerSeed, 50).Run(context.Background())

	require.False(t, res.Failed())
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, 2, res.Items)
	assert.Equal(t, 3, res.NodesCreated)
	assert.Equal(t, 2, res.EdgesCreated)

	repoAttrs, ok := st.Attributes(model.LabelRepo, "lib-cve-1")
	require.True(t, ok)
	assert.Equal(t, "0", repoAttrs["layer"])
	assert.Equal(t, "vendor1", repoAttrs["owner"])

	alice, ok := st.Attributes(model.LabelPerson, "alice")
	require.True(t, ok)
	assert.Equal(t, "", alice["location"])
	assert.Equal(t, 3, alice["starred_repo_count"])

	edges := st.Edges(model.EdgeStarred)
	require.Len(t, edges, 2)
	assert.Equal(t, "alice", edges[0].From.Key)
	assert.Equal(t, "lib-cve-1", edges[0].To.Key)
	assert.Equal(t, "2021-06-01T00:00:00Z", edges[0].Attrs["starred_at"])
}

func TestStargazerUnitOnePageWhenConnectionEndsPastCap(t *testing.T) {
	client := newScriptedClient().on("stargazers:o/r", stargazersPage("c1", false, manyGazers("u", 100)...))
	st := store.NewMemoryStore()

	res := NewStargazerUnit(unitDeps(client, st), "o", "r", model.LayerSeed, 50).Run(context.Background())

	require.False(t, res.Failed())
	assert.Len(t, client.callsFor("stargazers:o/r"), 1)
	assert.Equal(t, 100, res.Items)
	assert.Equal(t, 100, st.CountNodes(model.LabelPerson))
}

func TestStargazerUnitStopsAtCapBetweenPages(t *testing.T) {
	client := newScriptedClient().on("stargazers:o/r",
		stargazersPage("c1", true, manyGazers("a", 100)...),
		stargazersPage("c2", true, manyGazers("b", 100)...),
	)
	st := store.NewMemoryStore()

	res := NewStargazerUnit(unitDeps(client, st), "o", "r", model.LayerSeed, 150).Run(context.Background())

	require.False(t, res.Failed())
	calls := client.callsFor("stargazers:o/r")
	require.Len(t, calls, 2)
	assert.Equal(t, "", calls[0].Cursor)
	assert.Equal(t, "c1", calls[1].Cursor)
	assert.Equal(t, 200, res.Items)
}

func TestStargazerUnitFetchesOnePageWithZeroCap(t *testing.T) {
	client := newScriptedClient().on("stargazers:o/r", stargazersPage("c1", true, gazer{Login: "alice"}))

	res := NewStargazerUnit(unitDeps(client, store.NewMemoryStore()), "o", "r", model.LayerSeed, 0).Run(context.Background())

	require.False(t, res.Failed())
	assert.Equal(t, 1, client.totalCalls())
	assert.Equal(t, 1, res.Pages)
}

func TestStargazerUnitRerunDuplicatesEdges(t *testing.T) {
	client := newScriptedClient().on("stargazers:o/r",
		stargazersPage("", false, gazer{Login: "alice", Starred: 3}),
		stargazersPage("", false, gazer{Login: "alice", Location: strPtr("Paris"), Starred: 9}),
	)
	st := store.NewMemoryStore()
	deps := unitDeps(client, st)

	first := NewStargazerUnit(deps, "o", "r", model.LayerSeed, 50).Run(context.Background())
	second := NewStargazerUnit(deps, "o", "r", model.LayerCreator, 50).Run(context.Background())

	require.False(t, first.Failed())
	require.False(t, second.Failed())
	assert.Equal(t, 0, second.NodesCreated)
	assert.Len(t, st.Edges(model.EdgeStarred), 2)
	assert.Equal(t, 1, st.CountNodes(model.LabelPerson))

	alice, _ := st.Attributes(model.LabelPerson, "alice")
	assert.Equal(t, "", alice["location"])
	assert.Equal(t, 3, alice["starred_repo_count"])
	repo, _ := st.Attributes(model.LabelRepo, "r")
	assert.Equal(t, "0", repo["layer"])
}

func TestStargazerUnitKeepsEarlierPagesOnFailure(t *testing.T) {
	boom := errors.New("connection reset")
	client := newScriptedClient().on("stargazers:o/r",
		stargazersPage("c1", true, manyGazers("a", 100)...),
		failingPage(boom),
	)
	st := store.NewMemoryStore()

	res := NewStargazerUnit(unitDeps(client, st), "o", "r", model.LayerSeed, 1000).Run(context.Background())

	require.True(t, res.Failed())
	assert.ErrorIs(t, res.Failure, boom)
	assert.Equal(t, 1, res.Failure.Pages)
	assert.Equal(t, 1, res.Pages)
	assert.Len(t, st.Edges(model.EdgeStarred), 100)
}

func TestStargazerUnitMalformedResponse(t *testing.T) {
	client := newScriptedClient().on("stargazers:o/r", scriptedPage{doc: []byte(`{"data":{"repository":null}}`)})

	res := NewStargazerUnit(unitDeps(client, store.NewMemoryStore()), "o", "r", model.LayerSeed, 50).Run(context.Background())

	require.True(t, res.Failed())
	assert.ErrorIs(t, res.Failure, githubapi.ErrMalformedResponse)
}

func TestStargazerUnitStopsBetweenPagesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	st := store.NewMemoryStore()
	client := &cancellingClient{
		scriptedClient: newScriptedClient().on("stargazers:o/r",
			stargazersPage("c1", true, manyGazers("a", 100)...),
			stargazersPage("c2", true, manyGazers("b", 100)...),
		),
		cancel: cancel,
	}

	res := NewStargazerUnit(unitDeps(client, st), "o", "r", model.LayerSeed, 1000).Run(ctx)

	require.True(t, res.Failed())
	assert.ErrorIs(t, res.Failure, context.Canceled)
	assert.Equal(t, 1, client.totalCalls())
	assert.Len(t, st.Edges(model.EdgeStarred), 100)
}

// cancellingClient cancels the run while its first page is in flight.
type cancellingClient struct {
	*scriptedClient
	cancel context.CancelFunc
}

func (c *cancellingClient) Execute(ctx context.Context, query string, headers map[string]string) ([]byte, error) {
	doc, err := c.scriptedClient.Execute(ctx, query, headers)
	c.cancel()
	return doc, err
}

func TestUserReposUnit(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	_, _, _ = st.UpsertNode(ctx, model.LabelPerson, "alice", nil)
	_, _, _ = st.UpsertNode(ctx, model.LabelRepo, "lib", map[string]any{"owner": "vendor", "layer": "0"})
	client := newScriptedClient().on("repositories:alice",
		reposPage("c1", true, "Tool", "lib"),
		reposPage("", false, "Dots"),
	)

	res := NewUserReposUnit(unitDeps(client, st), "alice", 5).Run(ctx)

	require.False(t, res.Failed())
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, []model.Repo{
		{Owner: "alice", Name: "tool", Layer: model.LayerCreator},
		{Owner: "alice", Name: "lib", Layer: model.LayerCreator},
		{Owner: "alice", Name: "dots", Layer: model.LayerCreator},
	}, res.Discovered)
	assert.Len(t, st.Edges(model.EdgeCreated), 3)

	tool, ok := st.Attributes(model.LabelRepo, "tool")
	require.True(t, ok)
	assert.Equal(t, "1", tool["layer"])
	lib, _ := st.Attributes(model.LabelRepo, "lib")
	assert.Equal(t, "0", lib["layer"])
}

func TestUserReposUnitSkipsUnknownUser(t *testing.T) {
	client := newScriptedClient()

	res := NewUserReposUnit(unitDeps(client, store.NewMemoryStore()), "ghost", 5).Run(context.Background())

	assert.True(t, res.Skipped)
	assert.False(t, res.Failed())
	assert.Equal(t, 0, client.totalCalls())
}

func TestUserReposUnitReportsPartialDiscoveries(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	_, _, _ = st.UpsertNode(ctx, model.LabelPerson, "alice", nil)
	client := newScriptedClient().on("repositories:alice",
		reposPage("c1", true, "one"),
		failingPage(errors.New("502 bad gateway")),
	)

	res := NewUserReposUnit(unitDeps(client, st), "alice", 500).Run(ctx)

	require.True(t, res.Failed())
	assert.Equal(t, []model.Repo{{Owner: "alice", Name: "one", Layer: model.LayerCreator}}, res.Discovered)
}

func TestUserFollowersUnitOnlyLinksKnownPeople(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	_, _, _ = st.UpsertNode(ctx, model.LabelPerson, "alice", nil)
	_, _, _ = st.UpsertNode(ctx, model.LabelPerson, "bob", nil)
	known := map[string]struct{}{"alice": {}, "bob": {}, "carol": {}}
	client := newScriptedClient().on("followers:alice",
		followersPage("c1", true, gazer{Login: "bob"}, gazer{Login: "mallory"}),
		followersPage("c2", true, gazer{Login: "carol"}),
		followersPage("", false),
	)

	res := NewUserFollowersUnit(unitDeps(client, st), "alice", known).Run(ctx)

	require.False(t, res.Failed())
	assert.Equal(t, 3, res.Pages)
	edges := st.Edges(model.EdgeFollowed)
	require.Len(t, edges, 1)
	assert.Equal(t, "bob", edges[0].From.Key)
	assert.Equal(t, "alice", edges[0].To.Key)
	assert.Equal(t, 0, st.CountNodes(model.LabelRepo))
	assert.Equal(t, 2, st.CountNodes(model.LabelPerson))
}

func TestUserFollowersUnitSkipsUnknownUser(t *testing.T) {
	client := newScriptedClient()

	res := NewUserFollowersUnit(unitDeps(client, store.NewMemoryStore()), "ghost", map[string]struct{}{}).Run(context.Background())

	assert.True(t, res.Skipped)
	assert.Equal(t, 0, client.totalCalls())
}

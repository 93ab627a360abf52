package cfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMode(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mode.yaml"), []byte(body), 0o644))
	return dir
}

func TestViperLoaderAppliesDefaults(t *testing.T) {
	dir := writeMode(t, "crawl:\n  numseedrepos: 10\n")
	loader, err := NewViperLoader(dir)
	require.NoError(t, err)
	loader.SetWatchChange(false)

	config, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, 10, config.Crawl.NumSeedRepos)
	assert.Equal(t, 50, config.Crawl.LimitStargazersPerRepo)
	assert.Equal(t, 5, config.Crawl.LimitUsers)
	assert.Equal(t, "owner_repo.csv", config.Crawl.SeedFile)
	assert.Equal(t, "neo4j", config.Store.Driver)
	assert.Equal(t, "https://api.github.com/graphql", config.GithubApi.GraphqlUrl)
	assert.True(t, config.Crawl.FreshRun)
}

func TestViperLoaderReadsTokenFromEnv(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("GIT2NEO_CRAWL_LIMITUSERS", "100")

	dir := writeMode(t, "store:\n  driver: memory\n")
	loader, err := NewViperLoader(dir)
	require.NoError(t, err)
	loader.SetWatchChange(false)

	config, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "ghp_test", config.GithubApi.AccessToken)
	assert.Equal(t, 100, config.Crawl.LimitUsers)
	assert.Equal(t, "memory", config.Store.Driver)
}

func TestViperLoaderMissingFile(t *testing.T) {
	loader, err := NewViperLoader(t.TempDir())
	require.NoError(t, err)
	loader.SetWatchChange(false)

	_, err = loader.Load()
	assert.Error(t, err)
}

func TestMockLoader(t *testing.T) {
	loader, _ := NewMockLoader()
	config, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", config.Store.Driver)
	assert.Equal(t, 1, config.Crawl.Workers)
}

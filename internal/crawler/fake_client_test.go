package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thep200/git2neo/cfg"
	"github.com/thep200/git2neo/pkg/log"
)

var (
	repoArgs   = regexp.MustCompile(`repository\(owner: "([^"]*)", name: "([^"]*)"\)`)
	userArgs   = regexp.MustCompile(`user\(login: "([^"]*)"\)`)
	afterArg   = regexp.MustCompile(`after: "([^"]*)"`)
	reposField = regexp.MustCompile(`repositories\(first`)
)

type scriptedPage struct {
	doc []byte
	err error
}

type call struct {
	Key    string
	Cursor string
}

// scriptedClient answers GraphQL queries from per-subject page scripts.
type scriptedClient struct {
	mu     sync.Mutex
	script map[string][]scriptedPage
	served map[string]int
	calls  []call
}

func newScriptedClient() *scriptedClient {
	return &scriptedClient{script: map[string][]scriptedPage{}, served: map[string]int{}}
}

func (c *scriptedClient) on(key string, pages ...scriptedPage) *scriptedClient {
	c.script[key] = append(c.script[key], pages...)
	return c
}

func queryKey(query string) string {
	if m := repoArgs.FindStringSubmatch(query); m != nil {
		return "stargazers:" + m[1] + "/" + m[2]
	}
	if m := userArgs.FindStringSubmatch(query); m != nil {
		if reposField.MatchString(query) {
			return "repositories:" + m[1]
		}
		return "followers:" + m[1]
	}
	return "unknown"
}

func (c *scriptedClient) Execute(ctx context.Context, query string, headers map[string]string) ([]byte, error) {
	key := queryKey(query)
	cursor := ""
	if m := afterArg.FindStringSubmatch(query); m != nil {
		cursor = m[1]
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call{Key: key, Cursor: cursor})
	i := c.served[key]
	if i >= len(c.script[key]) {
		return nil, fmt.Errorf("unexpected call %d for %s", i+1, key)
	}
	c.served[key] = i + 1
	p := c.script[key][i]
	return p.doc, p.err
}

func (c *scriptedClient) callsFor(key string) []call {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []call
	for _, cl := range c.calls {
		if cl.Key == key {
			out = append(out, cl)
		}
	}
	return out
}

func (c *scriptedClient) totalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

type gazer struct {
	Login    string
	Location *string
	Starred  int
}

func strPtr(s string) *string { return &s }

func manyGazers(prefix string, n int) []gazer {
	out := make([]gazer, n)
	for i := range out {
		out[i] = gazer{Login: fmt.Sprintf("%s%03d", prefix, i), Starred: i}
	}
	return out
}

func connection(edges []map[string]any, endCursor string, hasNext bool) map[string]any {
	var cursor any
	if endCursor != "" {
		cursor = endCursor
	}
	return map[string]any{
		"pageInfo": map[string]any{"endCursor": cursor, "hasNextPage": hasNext},
		"edges":    edges,
	}
}

func userEdges(users []gazer) []map[string]any {
	edges := make([]map[string]any, 0, len(users))
	for _, u := range users {
		edges = append(edges, map[string]any{
			"starredAt": "2021-06-01T00:00:00Z",
			"node": map[string]any{
				"login":               u.Login,
				"location":            u.Location,
				"starredRepositories": map[string]any{"totalCount": u.Starred},
			},
		})
	}
	return edges
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func stargazersPage(endCursor string, hasNext bool, users ...gazer) scriptedPage {
	return scriptedPage{doc: mustJSON(map[string]any{
		"data": map[string]any{"repository": map[string]any{"stargazers": connection(userEdges(users), endCursor, hasNext)}},
	})}
}

func followersPage(endCursor string, hasNext bool, users ...gazer) scriptedPage {
	return scriptedPage{doc: mustJSON(map[string]any{
		"data": map[string]any{"user": map[string]any{"followers": connection(userEdges(users), endCursor, hasNext)}},
	})}
}

func reposPage(endCursor string, hasNext bool, names ...string) scriptedPage {
	edges := make([]map[string]any, 0, len(names))
	for _, n := range names {
		edges = append(edges, map[string]any{"node": map[string]any{"name": n}})
	}
	return scriptedPage{doc: mustJSON(map[string]any{
		"data": map[string]any{"user": map[string]any{"repositories": connection(edges, endCursor, hasNext)}},
	})}
}

func failingPage(err error) scriptedPage {
	return scriptedPage{err: err}
}

func testLogger() log.Logger {
	logger, _ := log.NewCslLoggerWithWriter(io.Discard, false)
	return logger
}

func testConfig(t *testing.T) *cfg.Config {
	t.Helper()
	loader, _ := cfg.NewMockLoader()
	config, err := loader.Load()
	require.NoError(t, err)
	config.Crawl.ErrorDir = t.TempDir()
	config.GithubApi.AccessToken = "test-token"
	return config
}

package ledger

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestOpenWritesHeader(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "error")
	l, err := Open(dir, "stargazers_layer0", OwnerRepoError)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "stargazers_layer0.csv"), l.Path())
	assert.Equal(t, [][]string{{"Owner", "Repo", "Error"}}, readCSV(t, l.Path()))
}

func TestAppendFlushesEveryRow(t *testing.T) {
	l, err := Open(t.TempDir(), "followers", UserError)
	require.NoError(t, err)

	require.NoError(t, l.Append("alice", "boom"))
	assert.Equal(t, [][]string{{"User", "Error"}, {"alice", "boom"}}, readCSV(t, l.Path()))

	require.NoError(t, l.Append("bob", "line\nbreak, comma"))
	records := readCSV(t, l.Path())
	require.Len(t, records, 3)
	assert.Equal(t, []string{"bob", "line\nbreak, comma"}, records[2])
	assert.Equal(t, 2, l.Len())
}

func TestAppendRejectsWrongArity(t *testing.T) {
	l, err := Open(t.TempDir(), "repos", UserError)
	require.NoError(t, err)

	assert.Error(t, l.Append("alice"))
	assert.Equal(t, 0, l.Len())
}

func TestOpenOverwritesPreviousRun(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir, "followers", UserError)
	require.NoError(t, err)
	require.NoError(t, l.Append("alice", "boom"))

	again, err := Open(dir, "followers", UserError)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"User", "Error"}}, readCSV(t, again.Path()))
}

func TestConcurrentAppend(t *testing.T) {
	l, err := Open(t.TempDir(), "stargazers", OwnerRepoError)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Append("owner", "repo", "err"))
		}()
	}
	wg.Wait()

	assert.Len(t, readCSV(t, l.Path()), 21)
	assert.Len(t, l.Rows(), 20)
}

package crawler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "owner_repo.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSeedsReadsPrefix(t *testing.T) {
	path := writeSeedFile(t, "CVE,Owner,Repo\nCVE-1,vendor1,lib-cve-1\nCVE-2, vendor2 ,lib-cve-2\nCVE-3,vendor3,lib-cve-3\n")

	seeds, err := LoadSeeds(path, 2)
	require.NoError(t, err)
	assert.Equal(t, []Seed{{Owner: "vendor1", Repo: "lib-cve-1"}, {Owner: "vendor2", Repo: "lib-cve-2"}}, seeds)

	all, err := LoadSeeds(path, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := LoadSeeds(path, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLoadSeedsErrors(t *testing.T) {
	_, err := LoadSeeds(filepath.Join(t.TempDir(), "missing.csv"), 5)
	assert.Error(t, err)

	_, err = LoadSeeds(writeSeedFile(t, "Name,Project\na,b\n"), 5)
	assert.Error(t, err)

	_, err = readSeeds(strings.NewReader(""), 5)
	assert.Error(t, err)
}

func TestLoadSeedsHandlesByteOrderMark(t *testing.T) {
	seeds, err := readSeeds(strings.NewReader("\ufeffOwner,Repo\nvendor1,lib\n"), 5)
	require.NoError(t, err)
	assert.Equal(t, []Seed{{Owner: "vendor1", Repo: "lib"}}, seeds)
}

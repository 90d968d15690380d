package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rolesJSON = `{
  "Backend Developer": {
    "skills": {"Go": 5, "SQL": 4},
    "prerequisites": ["Go", "SQL"],
    "assessments": ["API Project"],
    "career_paths": ["Staff Engineer"]
  },
  "Data Analyst": {
    "skills": {"SQL": 5, "Python": 4},
    "prerequisites": ["SQL", "Python"],
    "assessments": ["Dashboard"]
  }
}`

const resourcesJSON = `{
  "go_tour": {
    "title": "A Tour of Go",
    "url": "https://example.com/go",
    "type": "tutorial",
    "skills": ["Go"],
    "difficulty": 2,
    "estimated_hours": 10
  },
  "sql_course": {
    "title": "SQL Course",
    "url": "https://example.com/sql",
    "type": "video",
    "skills": ["SQL", "Python"],
    "difficulty": 3,
    "estimated_hours": 25
  }
}`

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "roles.json"), []byte(rolesJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resources.json"), []byte(resourcesJSON), 0o644))
	c, err := Load(dir)
	require.NoError(t, err)
	return c
}

func TestLoadMissingFiles(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
}

func TestLoadBadJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "roles.json"), []byte("{not json"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resources.json"), []byte(resourcesJSON), 0o644))
	_, err := Load(dir)
	require.Error(t, err)
}

func TestRoleLookup(t *testing.T) {
	c := loadTestCatalog(t)

	role, err := c.Role("Backend Developer")
	require.NoError(t, err)
	assert.Equal(t, 5, role.Skills["Go"])
	assert.Equal(t, []string{"Go", "SQL"}, role.Prerequisites)
	assert.Equal(t, []string{"Staff Engineer"}, role.CareerPaths)

	_, err = c.Role("Astronaut")
	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "role", lookupErr.Kind)
	assert.Equal(t, "Astronaut", lookupErr.Name)
}

func TestResourceLookup(t *testing.T) {
	c := loadTestCatalog(t)

	res, err := c.Resource("go_tour")
	require.NoError(t, err)
	assert.Equal(t, "A Tour of Go", res.Title)
	assert.Equal(t, 10, res.EstimatedHours)

	assert.True(t, c.HasResource("sql_course"))
	assert.False(t, c.HasResource("nope"))

	_, err = c.Resource("nope")
	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "resource", lookupErr.Kind)
}

func TestSearch(t *testing.T) {
	c := loadTestCatalog(t)

	assert.Equal(t, []string{"go_tour"}, c.Search("Go"))
	assert.Equal(t, []string{"sql_course"}, c.Search("sql"), "search is case-insensitive")
	assert.Empty(t, c.Search("Rust"))
}

func TestSortedListings(t *testing.T) {
	c := loadTestCatalog(t)

	assert.Equal(t, []string{"go_tour", "sql_course"}, c.ResourceIDs())
	assert.Equal(t, []string{"Backend Developer", "Data Analyst"}, c.RoleNames())
	assert.Equal(t, []string{"Go", "Python", "SQL"}, c.SkillNames())
}

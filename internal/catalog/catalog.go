// Package catalog loads the curated role and resource definitions the
// pipeline is allowed to reference. Both catalogs are plain JSON files on
// disk, loaded once and read-only afterwards.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Role describes the skill bar for a target role.
type Role struct {
	Skills        map[string]int `json:"skills"`
	Prerequisites []string       `json:"prerequisites"`
	Assessments   []string       `json:"assessments"`
	CareerPaths   []string       `json:"career_paths,omitempty"`
}

// Resource is a whitelisted learning resource. Plans may only reference
// resources by the ids in this catalog, never free-text links.
type Resource struct {
	Title          string   `json:"title"`
	URL            string   `json:"url"`
	Type           string   `json:"type"`
	Skills         []string `json:"skills"`
	Difficulty     int      `json:"difficulty"`
	EstimatedHours int      `json:"estimated_hours"`
}

// LookupError reports a role or resource id that is missing from the catalog.
type LookupError struct {
	Kind string // "role" or "resource"
	Name string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s %q not found in catalog", e.Kind, e.Name)
}

// Catalog holds both lookup tables.
type Catalog struct {
	roles     map[string]Role
	resources map[string]Resource
}

// Load reads roles.json and resources.json from dataDir.
func Load(dataDir string) (*Catalog, error) {
	var roles map[string]Role
	if err := readJSON(filepath.Join(dataDir, "roles.json"), &roles); err != nil {
		return nil, fmt.Errorf("loading role catalog: %w", err)
	}
	var resources map[string]Resource
	if err := readJSON(filepath.Join(dataDir, "resources.json"), &resources); err != nil {
		return nil, fmt.Errorf("loading resource catalog: %w", err)
	}
	return &Catalog{roles: roles, resources: resources}, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// Role returns the definition for a role name.
func (c *Catalog) Role(name string) (Role, error) {
	role, ok := c.roles[name]
	if !ok {
		return Role{}, &LookupError{Kind: "role", Name: name}
	}
	return role, nil
}

// Resource returns a whitelisted resource by id.
func (c *Catalog) Resource(id string) (Resource, error) {
	res, ok := c.resources[id]
	if !ok {
		return Resource{}, &LookupError{Kind: "resource", Name: id}
	}
	return res, nil
}

// HasResource reports whether id is in the whitelist.
func (c *Catalog) HasResource(id string) bool {
	_, ok := c.resources[id]
	return ok
}

// Search returns the ids of resources tagged with the given skill,
// sorted so results are stable across runs.
func (c *Catalog) Search(skill string) []string {
	var ids []string
	for id, res := range c.resources {
		for _, tag := range res.Skills {
			if strings.EqualFold(tag, skill) {
				ids = append(ids, id)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids
}

// ResourceIDs returns every whitelisted id, sorted.
func (c *Catalog) ResourceIDs() []string {
	ids := make([]string, 0, len(c.resources))
	for id := range c.resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RoleNames returns every known role name, sorted.
func (c *Catalog) RoleNames() []string {
	names := make([]string, 0, len(c.roles))
	for name := range c.roles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SkillNames returns the union of all skills referenced by roles and
// resource tags, sorted. The profile extractor uses this as its keyword
// dictionary when generation fails.
func (c *Catalog) SkillNames() []string {
	seen := map[string]bool{}
	for _, role := range c.roles {
		for skill := range role.Skills {
			seen[skill] = true
		}
	}
	for _, res := range c.resources {
		for _, skill := range res.Skills {
			seen[skill] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

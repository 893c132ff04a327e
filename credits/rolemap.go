package credits

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// RoleLabel names one credit role to pull out of a [Record] when formatting.
// Label is the text to look up on the scraped page, Display is what to put
// in the tag (defaults to Label).
type RoleLabel struct {
	Label   string `yaml:"label"`
	Display string `yaml:"display"`
}

// DefaultRoles covers the labels tower.jp uses for lyricist, composer and
// arranger. Everything else a page lists is ignored unless a role map file
// says otherwise.
func DefaultRoles() []RoleLabel {
	return []RoleLabel{
		{Label: "作詞"},
		{Label: "作曲"},
		{Label: "編曲"},
	}
}

// LoadRoleMap reads a YAML role map file. The source site's label text
// isn't contractually stable, so users can swap the lookup set without a
// rebuild.
func LoadRoleMap(path string) ([]RoleLabel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open role map: %w", err)
	}
	defer f.Close()

	var res struct {
		Roles []RoleLabel `yaml:"roles"`
	}
	if err := yaml.NewDecoder(f).Decode(&res); err != nil {
		return nil, fmt.Errorf("parse role map: %w", err)
	}
	if len(res.Roles) == 0 {
		return nil, fmt.Errorf("role map has no roles")
	}
	return res.Roles, nil
}

// Format renders the roles of rec as a single composer-style value, eg
// "作詞: 秋元康/作曲: 内山栞". Roles the record doesn't carry are skipped;
// a record with none of the requested roles formats to "".
func Format(rec Record, roles []RoleLabel) string {
	var parts []string
	for _, role := range roles {
		names := rec.Role(role.Label)
		if names == "" {
			continue
		}
		display := role.Display
		if display == "" {
			display = role.Label
		}
		parts = append(parts, fmt.Sprintf("%s: %s", display, names))
	}
	return strings.Join(parts, "/")
}

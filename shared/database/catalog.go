package database

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

const (
	RoleScopeOrganization = "organization"
	RoleScopeBootstrap    = "bootstrap"

	wildcardPermission = "*"
)

// CatalogPermission is one entry of the permission registry.
type CatalogPermission struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Reserved    bool   `yaml:"reserved"`
}

// CatalogRole is a predefined role and the permissions it is seeded with.
type CatalogRole struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Scope       string   `yaml:"scope"`
	Permissions []string `yaml:"permissions"`
}

// Catalog is the embedded permission registry and predefined role set.
type Catalog struct {
	Permissions []CatalogPermission `yaml:"permissions"`
	Roles       []CatalogRole       `yaml:"roles"`
}

// LoadCatalog parses the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog decodes and validates a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	known := make(map[string]bool, len(c.Permissions))
	for _, p := range c.Permissions {
		if p.Name == "" {
			return nil, fmt.Errorf("catalog permission without name")
		}
		if known[p.Name] {
			return nil, fmt.Errorf("duplicate catalog permission %q", p.Name)
		}
		known[p.Name] = true
	}

	roles := make(map[string]bool, len(c.Roles))
	for _, r := range c.Roles {
		if roles[r.Name] {
			return nil, fmt.Errorf("duplicate catalog role %q", r.Name)
		}
		roles[r.Name] = true
		if r.Scope != RoleScopeOrganization && r.Scope != RoleScopeBootstrap {
			return nil, fmt.Errorf("role %q: unknown scope %q", r.Name, r.Scope)
		}
		for _, name := range r.Permissions {
			if name != wildcardPermission && !known[name] {
				return nil, fmt.Errorf("role %q references unknown permission %q", r.Name, name)
			}
		}
	}
	return &c, nil
}

// PermissionsFor expands a role's permission list, replacing "*" with every non-reserved permission.
func (c *Catalog) PermissionsFor(role CatalogRole) []string {
	var names []string
	seen := make(map[string]bool)
	for _, name := range role.Permissions {
		if name == wildcardPermission {
			for _, p := range c.Permissions {
				if !p.Reserved && !seen[p.Name] {
					seen[p.Name] = true
					names = append(names, p.Name)
				}
			}
			continue
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// RolesForScope returns the roles seeded into an organization. The default
// organization also receives bootstrap roles.
func (c *Catalog) RolesForScope(includeBootstrap bool) []CatalogRole {
	var out []CatalogRole
	for _, r := range c.Roles {
		if r.Scope == RoleScopeOrganization || includeBootstrap {
			out = append(out, r)
		}
	}
	return out
}

package config

import (
	"fmt"
	"os"

	"github.com/nholik/devops-course/internal/inventory"
	"gopkg.in/yaml.v3"
)

// reservedGroups cannot be produced by a group rule.
var reservedGroups = map[string]bool{
	"all":   true,
	"_meta": true,
}

// LoadRulesFile parses a YAML rules file from the given path:
// ssh_user, ssh_private_key_file, groups: [{name, label, value}].
// Returns the default rules if path is empty. Missing keys keep their defaults.
func LoadRulesFile(path string) (inventory.Rules, error) {
	if path == "" {
		return inventory.DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return inventory.Rules{}, fmt.Errorf("read rules file: %w", err)
	}

	var rules inventory.Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return inventory.Rules{}, fmt.Errorf("parse rules file: %w", err)
	}

	defaults := inventory.DefaultRules()
	if rules.SSHUser == "" {
		rules.SSHUser = defaults.SSHUser
	}
	if rules.SSHPrivateKeyFile == "" {
		rules.SSHPrivateKeyFile = defaults.SSHPrivateKeyFile
	}
	if rules.Groups == nil {
		rules.Groups = defaults.Groups
	}

	if err := validateGroups(rules.Groups); err != nil {
		return inventory.Rules{}, err
	}

	return rules, nil
}

// validateGroups ensures all group rules are usable.
func validateGroups(groups []inventory.GroupRule) error {
	if len(groups) == 0 {
		return fmt.Errorf("rules file contains no groups")
	}

	seen := make(map[string]bool)

	for i, g := range groups {
		if g.Name == "" {
			return fmt.Errorf("group %d: name is required", i)
		}

		if reservedGroups[g.Name] {
			return fmt.Errorf("group %q: name is reserved", g.Name)
		}

		if g.Label == "" {
			return fmt.Errorf("group %q: label is required", g.Name)
		}

		if seen[g.Name] {
			return fmt.Errorf("group %q: duplicate name", g.Name)
		}
		seen[g.Name] = true
	}

	return nil
}

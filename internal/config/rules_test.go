package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nholik/devops-course/internal/inventory"
)

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

func TestLoadRulesFile_Valid(t *testing.T) {
	path := writeRules(t, `ssh_user: admin
ssh_private_key_file: /keys/ci
groups:
  - name: webservers
    label: project
    value: devops-course
  - name: databases
    label: role
    value: db
`)

	rules, err := LoadRulesFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rules.SSHUser != "admin" || rules.SSHPrivateKeyFile != "/keys/ci" {
		t.Fatalf("unexpected ssh settings: %+v", rules)
	}
	want := []inventory.GroupRule{
		{Name: "webservers", Label: "project", Value: "devops-course"},
		{Name: "databases", Label: "role", Value: "db"},
	}
	if !reflect.DeepEqual(rules.Groups, want) {
		t.Fatalf("unexpected groups: %+v", rules.Groups)
	}
}

func TestLoadRulesFile_EmptyPath(t *testing.T) {
	rules, err := LoadRulesFile("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(rules, inventory.DefaultRules()) {
		t.Fatalf("expected default rules, got %+v", rules)
	}
}

func TestLoadRulesFile_PartialKeepsDefaults(t *testing.T) {
	path := writeRules(t, "ssh_user: centos\n")

	rules, err := LoadRulesFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defaults := inventory.DefaultRules()
	if rules.SSHUser != "centos" {
		t.Fatalf("unexpected ssh user: %s", rules.SSHUser)
	}
	if rules.SSHPrivateKeyFile != defaults.SSHPrivateKeyFile {
		t.Fatalf("unexpected key file: %s", rules.SSHPrivateKeyFile)
	}
	if !reflect.DeepEqual(rules.Groups, defaults.Groups) {
		t.Fatalf("unexpected groups: %+v", rules.Groups)
	}
}

func TestLoadRulesFile_FileNotFound(t *testing.T) {
	_, err := LoadRulesFile("/nonexistent/path/rules.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRulesFile_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{name: "invalid yaml", content: "groups: ["},
		{name: "empty groups", content: "groups: []\n"},
		{name: "missing name", content: "groups:\n  - label: project\n    value: x\n"},
		{name: "missing label", content: "groups:\n  - name: web\n    value: x\n"},
		{name: "reserved all", content: "groups:\n  - name: all\n    label: project\n"},
		{name: "reserved meta", content: "groups:\n  - name: _meta\n    label: project\n"},
		{
			name:    "duplicate name",
			content: "groups:\n  - name: web\n    label: a\n  - name: web\n    label: b\n",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			path := writeRules(t, tc.content)
			if _, err := LoadRulesFile(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

package inventory

const (
	DefaultSSHUser           = "ubuntu"
	DefaultSSHPrivateKeyFile = "~/.ssh/id_ed25519"
	DefaultGroupName         = "webservers"
	DefaultGroupLabel        = "project"
	DefaultGroupValue        = "devops-course"
)

// GroupRule places a host into Name when its label Label equals Value.
type GroupRule struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

// Rules holds the fixed connection settings and grouping rules.
// Nothing in Rules is derived from instance records.
type Rules struct {
	SSHUser           string      `yaml:"ssh_user"`
	SSHPrivateKeyFile string      `yaml:"ssh_private_key_file"`
	Groups            []GroupRule `yaml:"groups"`
}

// DefaultRules returns the course defaults: ubuntu over ~/.ssh/id_ed25519 and a
// webservers group for project=devops-course.
func DefaultRules() Rules {
	return Rules{
		SSHUser:           DefaultSSHUser,
		SSHPrivateKeyFile: DefaultSSHPrivateKeyFile,
		Groups: []GroupRule{
			{Name: DefaultGroupName, Label: DefaultGroupLabel, Value: DefaultGroupValue},
		},
	}
}

// SkipReason explains why an instance was left out of the inventory.
type SkipReason string

const (
	SkipNotRunning      SkipReason = "not running"
	SkipNoPublicAddress SkipReason = "no public address"
	SkipMissingName     SkipReason = "missing name"
)

// Builder turns instance lists into inventory documents.
type Builder struct {
	rules  Rules
	onSkip func(Instance, SkipReason)
}

// Option customizes a Builder.
type Option func(*Builder)

// WithSkipHook registers a callback invoked for every skipped instance.
func WithSkipHook(fn func(Instance, SkipReason)) Option {
	return func(b *Builder) {
		b.onSkip = fn
	}
}

// NewBuilder constructs a Builder for the given rules.
func NewBuilder(rules Rules, opts ...Option) *Builder {
	b := &Builder{rules: rules}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build groups instances using DefaultRules.
func Build(instances []Instance) Document {
	return NewBuilder(DefaultRules()).Build(instances)
}

// Build produces a fresh document in a single pass over instances, preserving
// input order in every host list. It never fails; ineligible instances are skipped.
func (b *Builder) Build(instances []Instance) Document {
	doc := Document{
		Meta: Meta{HostVars: map[string]HostVars{}},
		All: Group{
			Hosts:    []string{},
			Children: make([]string, 0, len(b.rules.Groups)),
		},
		Groups: make(map[string]*Group, len(b.rules.Groups)),
	}
	for _, rule := range b.rules.Groups {
		doc.All.Children = append(doc.All.Children, rule.Name)
		doc.Groups[rule.Name] = &Group{Hosts: []string{}}
	}

	for _, instance := range instances {
		if instance.Status != StatusRunning {
			b.skip(instance, SkipNotRunning)
			continue
		}

		address, ok := instance.PublicAddress()
		if !ok {
			b.skip(instance, SkipNoPublicAddress)
			continue
		}

		if instance.Name == "" {
			b.skip(instance, SkipMissingName)
			continue
		}

		doc.All.Hosts = append(doc.All.Hosts, instance.Name)

		for _, rule := range b.rules.Groups {
			if value, ok := instance.Labels[rule.Label]; ok && value == rule.Value {
				group := doc.Groups[rule.Name]
				group.Hosts = append(group.Hosts, instance.Name)
			}
		}

		doc.Meta.HostVars[instance.Name] = HostVars{
			AnsibleHost:              address,
			AnsibleUser:              b.rules.SSHUser,
			AnsibleSSHPrivateKeyFile: b.rules.SSHPrivateKeyFile,
		}
	}

	return doc
}

func (b *Builder) skip(instance Instance, reason SkipReason) {
	if b.onSkip != nil {
		b.onSkip(instance, reason)
	}
}

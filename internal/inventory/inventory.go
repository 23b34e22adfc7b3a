package inventory

import (
	"encoding/json"
	"io"
)

// StatusRunning is the only instance status eligible for the inventory.
const StatusRunning = "RUNNING"

// Instance is a compute instance as printed by `yc compute instance list --format json`.
// Fields not needed for grouping are ignored when decoding.
type Instance struct {
	ID                string             `json:"id,omitempty"`
	Name              string             `json:"name"`
	Status            string             `json:"status"`
	NetworkInterfaces []NetworkInterface `json:"network_interfaces,omitempty"`
	Labels            map[string]string  `json:"labels,omitempty"`
}

// NetworkInterface describes one attached interface.
type NetworkInterface struct {
	PrimaryV4Address *V4Address `json:"primary_v4_address,omitempty"`
}

// V4Address holds the internal address and the optional one-to-one NAT mapping.
type V4Address struct {
	Address     string       `json:"address,omitempty"`
	OneToOneNat *OneToOneNat `json:"one_to_one_nat,omitempty"`
}

// OneToOneNat is the public side of a NAT mapping.
type OneToOneNat struct {
	Address   string `json:"address,omitempty"`
	IPVersion string `json:"ip_version,omitempty"`
}

// PublicAddress returns the first non-empty NAT address across interfaces in order.
func (i Instance) PublicAddress() (string, bool) {
	for _, iface := range i.NetworkInterfaces {
		if iface.PrimaryV4Address == nil || iface.PrimaryV4Address.OneToOneNat == nil {
			continue
		}
		if addr := iface.PrimaryV4Address.OneToOneNat.Address; addr != "" {
			return addr, true
		}
	}
	return "", false
}

// HostVars are the per-host variables delivered through _meta.
type HostVars struct {
	AnsibleHost              string `json:"ansible_host"`
	AnsibleUser              string `json:"ansible_user"`
	AnsibleSSHPrivateKeyFile string `json:"ansible_ssh_private_key_file"`
}

// Meta carries host variables so Ansible never needs to call --host.
type Meta struct {
	HostVars map[string]HostVars `json:"hostvars"`
}

// Group is an Ansible inventory group.
type Group struct {
	Hosts    []string `json:"hosts"`
	Children []string `json:"children,omitempty"`
}

// Document is the JSON shape Ansible expects from a dynamic inventory --list call.
type Document struct {
	Meta   Meta
	All    Group
	Groups map[string]*Group
}

// MarshalJSON flattens named groups next to _meta and all.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Groups)+2)
	for name, group := range d.Groups {
		out[name] = group
	}
	out["_meta"] = d.Meta
	out["all"] = d.All
	return json.Marshal(out)
}

// Stub is the document printed for invocations other than --list.
type Stub struct {
	Meta Meta `json:"_meta"`
}

// EmptyStub returns a document with an empty _meta.hostvars.
func EmptyStub() Stub {
	return Stub{Meta: Meta{HostVars: map[string]HostVars{}}}
}

// HostDocument is the --host response; variables are always served via _meta.
func HostDocument() map[string]any {
	return map[string]any{}
}

// Encode writes v as indented JSON followed by a newline.
func Encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}

package inventory

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"
)

func natInterface(address string) NetworkInterface {
	return NetworkInterface{
		PrimaryV4Address: &V4Address{
			Address:     "10.0.1.5",
			OneToOneNat: &OneToOneNat{Address: address, IPVersion: "IPV4"},
		},
	}
}

func runningInstance(name, address string, labels map[string]string) Instance {
	return Instance{
		Name:              name,
		Status:            StatusRunning,
		NetworkInterfaces: []NetworkInterface{natInterface(address)},
		Labels:            labels,
	}
}

func decodeJSON(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode json: %v (%s)", err, data)
	}
	return out
}

func TestBuild_EmptyInput(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, Build(nil)); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got := decodeJSON(t, buf.Bytes())
	want := decodeJSON(t, []byte(`{"_meta": {"hostvars": {}}, "all": {"hosts": [], "children": ["webservers"]}, "webservers": {"hosts": []}}`))

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected empty document:\n got: %v\nwant: %v", got, want)
	}
}

func TestBuild_SingleLabelledHost(t *testing.T) {
	doc := Build([]Instance{
		runningInstance("vm1", "1.2.3.4", map[string]string{"project": "devops-course"}),
	})

	if !reflect.DeepEqual(doc.All.Hosts, []string{"vm1"}) {
		t.Fatalf("unexpected all hosts: %v", doc.All.Hosts)
	}
	if !reflect.DeepEqual(doc.Groups["webservers"].Hosts, []string{"vm1"}) {
		t.Fatalf("unexpected webservers hosts: %v", doc.Groups["webservers"].Hosts)
	}

	vars, ok := doc.Meta.HostVars["vm1"]
	if !ok {
		t.Fatalf("expected hostvars for vm1")
	}
	want := HostVars{
		AnsibleHost:              "1.2.3.4",
		AnsibleUser:              "ubuntu",
		AnsibleSSHPrivateKeyFile: "~/.ssh/id_ed25519",
	}
	if vars != want {
		t.Fatalf("unexpected hostvars: %+v", vars)
	}
}

func TestBuild_UnlabelledHostOnlyInAll(t *testing.T) {
	doc := Build([]Instance{runningInstance("vm1", "1.2.3.4", map[string]string{})})

	if !reflect.DeepEqual(doc.All.Hosts, []string{"vm1"}) {
		t.Fatalf("unexpected all hosts: %v", doc.All.Hosts)
	}
	if len(doc.Groups["webservers"].Hosts) != 0 {
		t.Fatalf("expected no webservers, got %v", doc.Groups["webservers"].Hosts)
	}
}

func TestBuild_SkipsIneligibleInstances(t *testing.T) {
	cases := []struct {
		name     string
		instance Instance
		reason   SkipReason
	}{
		{
			name: "stopped",
			instance: Instance{
				Name:              "vm-stopped",
				Status:            "STOPPED",
				NetworkInterfaces: []NetworkInterface{natInterface("1.1.1.1")},
				Labels:            map[string]string{"project": "devops-course"},
			},
			reason: SkipNotRunning,
		},
		{
			name: "lowercase running",
			instance: Instance{
				Name:              "vm-lower",
				Status:            "running",
				NetworkInterfaces: []NetworkInterface{natInterface("1.1.1.1")},
			},
			reason: SkipNotRunning,
		},
		{
			name:     "no interfaces",
			instance: Instance{Name: "vm-bare", Status: StatusRunning},
			reason:   SkipNoPublicAddress,
		},
		{
			name: "internal address only",
			instance: Instance{
				Name:   "vm-private",
				Status: StatusRunning,
				NetworkInterfaces: []NetworkInterface{
					{PrimaryV4Address: &V4Address{Address: "10.0.1.9"}},
				},
			},
			reason: SkipNoPublicAddress,
		},
		{
			name: "empty nat address",
			instance: Instance{
				Name:              "vm-empty-nat",
				Status:            StatusRunning,
				NetworkInterfaces: []NetworkInterface{natInterface("")},
			},
			reason: SkipNoPublicAddress,
		},
		{
			name:     "missing name",
			instance: runningInstance("", "2.2.2.2", nil),
			reason:   SkipMissingName,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var reasons []SkipReason
			builder := NewBuilder(DefaultRules(), WithSkipHook(func(_ Instance, reason SkipReason) {
				reasons = append(reasons, reason)
			}))

			doc := builder.Build([]Instance{tc.instance})

			if len(doc.All.Hosts) != 0 || len(doc.Groups["webservers"].Hosts) != 0 || len(doc.Meta.HostVars) != 0 {
				t.Fatalf("expected instance to be skipped, got %+v", doc)
			}
			if !reflect.DeepEqual(reasons, []SkipReason{tc.reason}) {
				t.Fatalf("unexpected skip reasons: %v", reasons)
			}
		})
	}
}

func TestBuild_FirstNonEmptyAddressWins(t *testing.T) {
	instance := Instance{
		Name:   "vm-multi",
		Status: StatusRunning,
		NetworkInterfaces: []NetworkInterface{
			{},
			{PrimaryV4Address: &V4Address{Address: "10.0.0.3"}},
			natInterface(""),
			natInterface("5.6.7.8"),
			natInterface("9.9.9.9"),
		},
	}

	doc := Build([]Instance{instance})

	if got := doc.Meta.HostVars["vm-multi"].AnsibleHost; got != "5.6.7.8" {
		t.Fatalf("expected first public address, got %q", got)
	}
}

func TestBuild_PreservesInputOrderAndInvariants(t *testing.T) {
	instances := []Instance{
		runningInstance("c", "3.3.3.3", map[string]string{"project": "devops-course"}),
		{Name: "stopped", Status: "STOPPED", NetworkInterfaces: []NetworkInterface{natInterface("4.4.4.4")}},
		runningInstance("a", "1.1.1.1", map[string]string{"project": "other"}),
		{Name: "private", Status: StatusRunning},
		runningInstance("b", "2.2.2.2", map[string]string{"project": "devops-course", "lab": "lab05"}),
	}

	doc := Build(instances)

	if !reflect.DeepEqual(doc.All.Hosts, []string{"c", "a", "b"}) {
		t.Fatalf("unexpected all hosts order: %v", doc.All.Hosts)
	}
	if !reflect.DeepEqual(doc.Groups["webservers"].Hosts, []string{"c", "b"}) {
		t.Fatalf("unexpected webservers order: %v", doc.Groups["webservers"].Hosts)
	}
	if !reflect.DeepEqual(doc.All.Children, []string{"webservers"}) {
		t.Fatalf("unexpected children: %v", doc.All.Children)
	}

	if len(doc.All.Hosts) != len(doc.Meta.HostVars) {
		t.Fatalf("hostvars count %d != all hosts %d", len(doc.Meta.HostVars), len(doc.All.Hosts))
	}
	inAll := make(map[string]bool, len(doc.All.Hosts))
	for _, name := range doc.All.Hosts {
		inAll[name] = true
		if _, ok := doc.Meta.HostVars[name]; !ok {
			t.Fatalf("host %q missing hostvars", name)
		}
	}
	for _, name := range doc.Groups["webservers"].Hosts {
		if !inAll[name] {
			t.Fatalf("webservers host %q not in all", name)
		}
	}
	if len(doc.All.Hosts) > len(instances) {
		t.Fatalf("more hosts than instances")
	}

	again := Build(instances)
	if !reflect.DeepEqual(doc, again) {
		t.Fatalf("build is not deterministic")
	}
}

func TestBuilder_CustomRules(t *testing.T) {
	rules := Rules{
		SSHUser:           "admin",
		SSHPrivateKeyFile: "/keys/ci",
		Groups: []GroupRule{
			{Name: "web", Label: "role", Value: "web"},
			{Name: "db", Label: "role", Value: "db"},
		},
	}

	doc := NewBuilder(rules).Build([]Instance{
		runningInstance("web-1", "1.1.1.1", map[string]string{"role": "web"}),
		runningInstance("db-1", "2.2.2.2", map[string]string{"role": "db"}),
	})

	if !reflect.DeepEqual(doc.All.Children, []string{"web", "db"}) {
		t.Fatalf("unexpected children: %v", doc.All.Children)
	}
	if !reflect.DeepEqual(doc.Groups["web"].Hosts, []string{"web-1"}) {
		t.Fatalf("unexpected web hosts: %v", doc.Groups["web"].Hosts)
	}
	if !reflect.DeepEqual(doc.Groups["db"].Hosts, []string{"db-1"}) {
		t.Fatalf("unexpected db hosts: %v", doc.Groups["db"].Hosts)
	}
	if got := doc.Meta.HostVars["db-1"]; got.AnsibleUser != "admin" || got.AnsibleSSHPrivateKeyFile != "/keys/ci" {
		t.Fatalf("unexpected hostvars: %+v", got)
	}
}

func TestDecodeYCInstanceList(t *testing.T) {
	payload := []byte(`[
	  {
	    "id": "fhm1",
	    "folder_id": "b1g",
	    "name": "vm1",
	    "status": "RUNNING",
	    "labels": {"project": "devops-course", "lab": "lab04"},
	    "network_interfaces": [
	      {
	        "index": "0",
	        "subnet_id": "e9b",
	        "primary_v4_address": {
	          "address": "10.0.1.12",
	          "one_to_one_nat": {"address": "1.2.3.4", "ip_version": "IPV4"}
	        }
	      }
	    ]
	  },
	  {"id": "fhm2", "name": "vm2", "status": "STOPPED"}
	]`)

	var instances []Instance
	if err := json.Unmarshal(payload, &instances); err != nil {
		t.Fatalf("decode: %v", err)
	}

	doc := Build(instances)
	if !reflect.DeepEqual(doc.All.Hosts, []string{"vm1"}) {
		t.Fatalf("unexpected hosts: %v", doc.All.Hosts)
	}
	if doc.Meta.HostVars["vm1"].AnsibleHost != "1.2.3.4" {
		t.Fatalf("unexpected ansible_host: %q", doc.Meta.HostVars["vm1"].AnsibleHost)
	}
}

func TestEncode_Stubs(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, EmptyStub()); err != nil {
		t.Fatalf("encode stub: %v", err)
	}
	got := decodeJSON(t, buf.Bytes())
	want := decodeJSON(t, []byte(`{"_meta": {"hostvars": {}}}`))
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected stub: %v", got)
	}

	buf.Reset()
	if err := Encode(&buf, HostDocument()); err != nil {
		t.Fatalf("encode host document: %v", err)
	}
	if buf.String() != "{}\n" {
		t.Fatalf("unexpected host document: %q", buf.String())
	}
}

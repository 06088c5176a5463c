package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func testProfile() *DeviceProfile {
	return &DeviceProfile{
		Hostname:            "ROUTER-1",
		SystemIP:            "10.1.1.10",
		SiteID:              10,
		OrganizationName:    "ORG",
		Vbond:               "10.1.1.4",
		WanInterface:        "GigabitEthernet0/0/0",
		WanIP:               "192.0.2.10",
		WanMask:             "255.255.255.0",
		TunnelID:            0,
		TlocColor:           "biz-internet",
		DefaultRouteNextHop: "192.0.2.1",
		Credentials: Credentials{
			Username: "admin",
			Password: "admin",
		},
	}
}

func TestLoadProfile(t *testing.T) {
	contents := `{
		"hostname": "ROUTER-1",
		"system_ip": "10.1.1.10",
		"site_id": 10,
		"organization_name": "ORG",
		"vbond": "10.1.1.4",
		"wan_interface": "GigabitEthernet0/0/0",
		"wan_ip": "192.0.2.10",
		"wan_mask": "255.255.255.0",
		"tunnel_id": 0,
		"tloc_color": "biz-internet",
		"default_route_next_hop": "192.0.2.1",
		"credentials": {"username": "admin", "password": "admin"}
	}`
	path := filepath.Join(t.TempDir(), "device_profile.json")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("Failed to write profile file: %v", err)
	}

	prof, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}
	if prof.Hostname != "ROUTER-1" || prof.SiteID != 10 || prof.Credentials.Username != "admin" {
		t.Errorf("LoadProfile() = %+v", prof)
	}
	if errs := prof.Validate(); len(errs) != 0 {
		t.Errorf("Validate() = %v, want no errors", errs)
	}
}

func TestValidateMissingFields(t *testing.T) {
	type args struct {
		mutate func(*DeviceProfile)
	}
	tests := []struct {
		name string
		args args
		want string
	}{{
		name: "Missing hostname",
		args: args{mutate: func(p *DeviceProfile) { p.Hostname = "" }},
		want: "hostname required",
	}, {
		name: "Missing system IP",
		args: args{mutate: func(p *DeviceProfile) { p.SystemIP = "" }},
		want: "system_ip required",
	}, {
		name: "Missing site ID",
		args: args{mutate: func(p *DeviceProfile) { p.SiteID = 0 }},
		want: "site_id required",
	}, {
		name: "Missing vbond",
		args: args{mutate: func(p *DeviceProfile) { p.Vbond = "" }},
		want: "vbond required",
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prof := testProfile()
			tt.args.mutate(prof)
			errs := prof.Validate()
			if len(errs) != 1 || errs[0].Error() != tt.want {
				t.Errorf("Validate() = %v, want [%s]", errs, tt.want)
			}
		})
	}
}

func TestVars(t *testing.T) {
	vars := testProfile().Vars()
	wants := map[string]string{
		"hostname":               "ROUTER-1",
		"system-ip":              "10.1.1.10",
		"site-id":                "10",
		"organization-name":      "ORG",
		"vbond":                  "10.1.1.4",
		"tunnel-id":              "0",
		"default-route-next-hop": "192.0.2.1",
	}
	for name, want := range wants {
		if vars[name] != want {
			t.Errorf("Vars()[%q] = %q, want %q", name, vars[name], want)
		}
	}
}

package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Credentials are the console login values. EnableSecret is only needed
// on devices that drop the console into user exec.
type Credentials struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	EnableSecret string `json:"enable_secret,omitempty"`
}

// DeviceProfile is the per-device variable set for one onboarding run.
// It is loaded once and never mutated.
type DeviceProfile struct {
	Hostname            string      `json:"hostname"`
	SystemIP            string      `json:"system_ip"`
	SiteID              int         `json:"site_id"`
	OrganizationName    string      `json:"organization_name"`
	Vbond               string      `json:"vbond"`
	WanInterface        string      `json:"wan_interface"`
	WanIP               string      `json:"wan_ip"`
	WanMask             string      `json:"wan_mask"`
	TunnelID            int         `json:"tunnel_id"`
	TlocColor           string      `json:"tloc_color"`
	DefaultRouteNextHop string      `json:"default_route_next_hop"`
	Credentials         Credentials `json:"credentials"`
}

func LoadProfile(filename string) (*DeviceProfile, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", filename, err)
	}
	return ParseProfile(file)
}

func ParseProfile(data []byte) (*DeviceProfile, error) {
	prof := new(DeviceProfile)
	if err := json.Unmarshal(data, prof); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return prof, nil
}

func (p *DeviceProfile) Validate() []error {
	errs := []error{}
	if p.Hostname == "" {
		errs = append(errs, errors.New("hostname required"))
	}
	if p.SystemIP == "" {
		errs = append(errs, errors.New("system_ip required"))
	}
	if p.SiteID <= 0 {
		errs = append(errs, errors.New("site_id required"))
	}
	if p.OrganizationName == "" {
		errs = append(errs, errors.New("organization_name required"))
	}
	if p.Vbond == "" {
		errs = append(errs, errors.New("vbond required"))
	}
	if p.WanInterface == "" {
		errs = append(errs, errors.New("wan_interface required"))
	}
	if p.WanIP == "" {
		errs = append(errs, errors.New("wan_ip required"))
	}
	if p.WanMask == "" {
		errs = append(errs, errors.New("wan_mask required"))
	}
	if p.TlocColor == "" {
		errs = append(errs, errors.New("tloc_color required"))
	}
	if p.DefaultRouteNextHop == "" {
		errs = append(errs, errors.New("default_route_next_hop required"))
	}
	return errs
}

// Vars flattens the profile into the substitution map used by Render.
// Key names match the placeholder names in onboarding templates.
func (p *DeviceProfile) Vars() map[string]string {
	return map[string]string{
		"hostname":               p.Hostname,
		"system-ip":              p.SystemIP,
		"site-id":                strconv.Itoa(p.SiteID),
		"organization-name":      p.OrganizationName,
		"vbond":                  p.Vbond,
		"wan-interface":          p.WanInterface,
		"wan-ip":                 p.WanIP,
		"wan-mask":               p.WanMask,
		"tunnel-id":              strconv.Itoa(p.TunnelID),
		"tloc-color":             p.TlocColor,
		"default-route-next-hop": p.DefaultRouteNextHop,
	}
}

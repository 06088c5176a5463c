package web

import (
	"bytes"
	"encoding/json"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testProfileJSON = `{
	"hostname": "ROUTER-1",
	"system_ip": "10.1.1.10",
	"site_id": 10,
	"organization_name": "ORG",
	"vbond": "10.1.1.4",
	"wan_interface": "GigabitEthernet0/0/0",
	"wan_ip": "192.0.2.10",
	"wan_mask": "255.255.255.0",
	"tloc_color": "biz-internet",
	"default_route_next_hop": "192.0.2.1",
	"credentials": {"username": "admin", "password": "admin"}
}`

func TestRoutes(t *testing.T) {
	server := httptest.NewServer(Routes())
	defer server.Close()

	type args struct {
		method string
		path   string
	}
	tests := []struct {
		name string
		args args
		want int
	}{{
		name: "Index",
		args: args{method: "GET", path: "/"},
		want: http.StatusOK,
	}, {
		name: "Onboard form",
		args: args{method: "GET", path: "/onboard"},
		want: http.StatusOK,
	}, {
		name: "Unknown job",
		args: args{method: "GET", path: "/jobs/999"},
		want: http.StatusNotFound,
	}, {
		name: "Unknown job JSON",
		args: args{method: "GET", path: "/api/jobs/999"},
		want: http.StatusNotFound,
	}, {
		name: "Non-numeric job",
		args: args{method: "GET", path: "/jobs/abc"},
		want: http.StatusNotFound,
	}, {
		name: "Onboard without form",
		args: args{method: "POST", path: "/onboard"},
		want: http.StatusBadRequest,
	}, {
		name: "Delete not allowed",
		args: args{method: "DELETE", path: "/onboard"},
		want: http.StatusMethodNotAllowed,
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.args.method, server.URL+tt.args.path, nil)
			if err != nil {
				t.Fatalf("Failed to build request: %v", err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.args.method, tt.args.path, resp.StatusCode, tt.want)
			}
		})
	}
}

func TestPageTemplatesRender(t *testing.T) {
	tests := []struct {
		name string
		tmpl *template.Template
		data interface{}
	}{
		{name: "index", tmpl: indexTmpl, data: struct{ Jobs []*Job }{}},
		{name: "ports", tmpl: portsTmpl, data: nil},
		{name: "onboard", tmpl: onboardTmpl, data: nil},
		{name: "job", tmpl: jobTmpl, data: jobView{Number: 1, Status: "running"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.tmpl.ExecuteTemplate(io.Discard, "layout", tt.data); err != nil {
				t.Errorf("ExecuteTemplate() error = %v", err)
			}
		})
	}
}

func TestStartOnboardJob(t *testing.T) {
	server := httptest.NewServer(Routes())
	defer server.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	writer.WriteField("port", "/dev/ttyNOSUCH0")
	writer.WriteField("baud", "9600")
	writer.WriteField("data", "8")
	writer.WriteField("parity", "none")
	writer.WriteField("stop", "one")
	part, err := writer.CreateFormFile("profileFile", "device_profile.json")
	if err != nil {
		t.Fatalf("Failed to build form: %v", err)
	}
	part.Write([]byte(testProfileJSON))
	writer.Close()

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Post(server.URL+"/onboard", writer.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST /onboard failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("POST /onboard = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	location := resp.Header.Get("Location")
	if location == "" {
		t.Fatal("POST /onboard did not redirect to a job page")
	}

	// The job fails fast: the port does not exist. Poll until done.
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(server.URL + "/api" + location)
		if err != nil {
			t.Fatalf("GET job JSON failed: %v", err)
		}
		var payload struct {
			Status string `json:"status"`
			Done   bool   `json:"done"`
			Error  string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			t.Fatalf("Failed to decode job JSON: %v", err)
		}
		resp.Body.Close()
		if payload.Done {
			if payload.Status != "failed" || payload.Error == "" {
				t.Errorf("job = %+v, want a failed job with an error", payload)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("job never finished")
		}
		time.Sleep(20 * time.Millisecond)
	}

	resp2, err := http.Get(server.URL + location)
	if err != nil {
		t.Fatalf("GET job page failed: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("GET %s = %d, want 200", location, resp2.StatusCode)
	}
}

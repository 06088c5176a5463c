package templates

var Layout = `{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{template "title" .}}</title>
    <link href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css" rel="stylesheet">
</head>
<body>
<div class="container">
    <nav class="navbar navbar-expand-lg">
        <a class="navbar-brand" href="/">SDWAN Onboarder Go</a>
        <a class="nav-link" href="/ports">Serial Ports</a>
        <a class="nav-link" href="/onboard">New Onboarding</a>
    </nav>
    {{template "body" .}}
</div>
</body>
</html>
{{end}}
`

var Index = `{{define "title"}}SDWAN Onboarder Go{{end}}

{{define "body"}}
<br>
{{$jobs := .Jobs | len -}}
<h3>Onboarding jobs: {{ .Jobs | len -}}</h3>
{{ if ne $jobs 0 }}
<table class="table table-hover">
    <tr>
        <th>Job Number</th>
        <th>Port</th>
        <th>Baud Rate</th>
        <th>Profile</th>
        <th>Status</th>
    </tr>
    {{ range .Jobs }}
    <tr>
        <td><a href="/jobs/{{ .Number }}">{{ .Number }}</a></td>
        <td>{{ .Params.PortConfig.Port }}</td>
        <td>{{ .Params.PortConfig.BaudRate }}</td>
        <td>{{ .Params.ProfileFile }}</td>
        <td>{{ .Status }}</td>
    </tr>
    {{ end }}
</table>
{{ else }}
<p>No jobs yet. Start one from <a href="/onboard">New Onboarding</a>.</p>
{{ end }}
{{end}}
`

var Ports = `{{define "title"}}Available serial ports{{end}}

{{define "body"}}
<br>
<h3>Detected serial ports</h3>
<table class="table table-hover">
    <tr>
        <th>Port</th>
        <th>Description</th>
        <th>USB ID</th>
        <th>USB Serial</th>
    </tr>
    {{ range . }}
    <tr>
        <td>{{ .Name }}</td>
        <td>{{ .Product }}</td>
        <td>{{ if .IsUSB }}{{ .VID }}:{{ .PID }}{{ end }}</td>
        <td>{{ .SerialNumber }}</td>
    </tr>
    {{ end }}
</table>
{{end}}
`

var Onboard = `{{define "title"}}Start a device onboarding{{end}}

{{define "body"}}
<form action='/onboard' method='post' enctype='multipart/form-data'>
    <br>
    <h6>Serial port</h6>
    <div class=form-group>
        <label for='port'>Port</label>
        <input class='form-control' type='text' id='port' name='port' required>
    </div>
    <div class=form-group>
        <label for='baud'>Baud rate</label>
        <input class='form-control' type='number' id='baud' name='baud' value='9600'>
    </div>
    <div class=form-group>
        <label for='data'>Data bits</label>
        <input class='form-control' type='number' id='data' name='data' value='8'>
    </div>
    <div class=form-group>
        <label for='parity'>Parity</label>
        <select class='form-control' id='parity' name='parity'>
            <option value='none' selected>None</option>
            <option value='even'>Even</option>
            <option value='odd'>Odd</option>
        </select>
    </div>
    <div class=form-group>
        <label for='stop'>Stop bits</label>
        <select class='form-control' id='stop' name='stop'>
            <option value='one' selected>1</option>
            <option value='opf'>1.5</option>
            <option value='two'>2</option>
        </select>
    </div>
    <br>

    <h6>Device profile</h6>
    <div class=form-group>
        <label for='profileFile'>Profile JSON</label>
        <input type='file' class='form-control-file' id='profileFile' name='profileFile' required>
    </div>
    <div class=form-group>
        <label for='templateFile'>Template JSON (optional, stock SD-WAN template when empty)</label>
        <input type='file' class='form-control-file' id='templateFile' name='templateFile'>
    </div>

    <h6>Verbosity</h6>
    <div class=form-check>
        <label class='form-check-label' for='verbose'>Verbose? </label>
        <input class='form-check-input' type='checkbox' id='verbose' name='verbose' value='verbose'>
    </div>
    <br>
    <input type="submit" value="Start onboarding" class="btn btn-primary">
</form>
{{end}}
`

var JobPage = `{{define "title"}}Onboarding job {{ .Number }}{{end}}

{{define "body"}}
<br>
<h3>Job {{ .Number }} on {{ .Params.PortConfig.Port }} — {{ .Status }}</h3>
{{ if not .Done }}
<form action='/jobs/{{ .Number }}/cancel' method='post'>
    <input type="submit" value="Cancel" class="btn btn-danger">
</form>
{{ end }}
{{ if .Error }}
<div class="alert alert-danger">{{ .Error }}</div>
{{ end }}
<h5>Session report</h5>
<pre>{{ range .ReportLines }}{{ . }}
{{ end }}</pre>
<h5>Log</h5>
<pre>{{ range .LogLines }}{{ . }}
{{ end }}</pre>
{{end}}
`

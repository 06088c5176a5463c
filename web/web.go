package web

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/op/go-logging"
	"go.bug.st/serial"

	"main/console"
	"main/oblogging"
	"main/profile"
	"main/sequencer"
	"main/templates"
)

type SerialConfiguration struct {
	Port     string
	BaudRate int
	DataBits int
	Parity   string
	StopBits float32
}

type RunParams struct {
	PortConfig       SerialConfiguration
	ProfileFile      string
	ProfileContents  string
	TemplateFile     string
	TemplateContents string
	Verbose          bool
}

type Job struct {
	Number int
	Params RunParams
	Seq    *sequencer.Sequencer
	Log    *oblogging.Oblogging
	Done   bool
	Error  string
}

func (j *Job) Status() string {
	if !j.Done {
		return "running"
	}
	if j.Error == "" && j.Seq != nil && j.Seq.Report().OverallSuccess() {
		return "succeeded"
	}
	return "failed"
}

var (
	jobsMu sync.Mutex
	jobs   []*Job
)

// Pages are parsed once at startup so a bad template string fails the
// process immediately instead of panicking inside a handler.
var (
	indexTmpl   = mustPage(templates.Index)
	portsTmpl   = mustPage(templates.Ports)
	onboardTmpl = mustPage(templates.Onboard)
	jobTmpl     = mustPage(templates.JobPage)
)

func mustPage(body string) *template.Template {
	tmpl := template.Must(template.New("layout").Parse(templates.Layout))
	return template.Must(tmpl.Parse(body))
}

func renderPage(w http.ResponseWriter, tmpl *template.Template, data interface{}) {
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		http.Error(w, http.StatusText(500), 500)
	}
}

func index(w http.ResponseWriter, r *http.Request) {
	jobsMu.Lock()
	defer jobsMu.Unlock()
	renderPage(w, indexTmpl, struct{ Jobs []*Job }{Jobs: jobs})
}

func listPorts(w http.ResponseWriter, r *http.Request) {
	ports, err := console.ListPorts()
	if err != nil {
		http.Error(w, http.StatusText(500), 500)
		return
	}
	renderPage(w, portsTmpl, ports)
}

func onboardForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, onboardTmpl, nil)
}

func parseMode(conf SerialConfiguration) *serial.Mode {
	mode := &serial.Mode{
		BaudRate: conf.BaudRate,
		DataBits: conf.DataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	if mode.BaudRate == 0 {
		mode.BaudRate = 9600
	}
	if mode.DataBits == 0 {
		mode.DataBits = 8
	}
	switch conf.Parity {
	case "even":
		mode.Parity = serial.EvenParity
	case "odd":
		mode.Parity = serial.OddParity
	}
	switch conf.StopBits {
	case 1.5:
		mode.StopBits = serial.OnePointFiveStopBits
	case 2:
		mode.StopBits = serial.TwoStopBits
	}
	return mode
}

func startOnboard(w http.ResponseWriter, r *http.Request) {
	var params RunParams
	params.PortConfig.Port = r.PostFormValue("port")
	params.PortConfig.BaudRate, _ = strconv.Atoi(r.PostFormValue("baud"))
	params.PortConfig.DataBits, _ = strconv.Atoi(r.PostFormValue("data"))
	params.PortConfig.Parity = r.PostFormValue("parity")
	switch r.PostFormValue("stop") {
	case "opf":
		params.PortConfig.StopBits = 1.5
	case "two":
		params.PortConfig.StopBits = 2
	default:
		params.PortConfig.StopBits = 1
	}
	params.Verbose = r.PostFormValue("verbose") == "verbose"

	if params.PortConfig.Port == "" {
		http.Error(w, "No serial port given", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("profileFile")
	if err != nil {
		http.Error(w, "No device profile given", http.StatusBadRequest)
		return
	}
	contents, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, http.StatusText(500), 500)
		return
	}
	params.ProfileFile = header.Filename
	params.ProfileContents = string(contents)

	prof, err := profile.ParseProfile(contents)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errs := prof.Validate(); len(errs) > 0 {
		http.Error(w, fmt.Sprintf("Invalid profile: %v", errs), http.StatusBadRequest)
		return
	}

	if tmplFile, tmplHeader, err := r.FormFile("templateFile"); err == nil {
		tmplContents, err := io.ReadAll(tmplFile)
		if err != nil {
			http.Error(w, http.StatusText(500), 500)
			return
		}
		if _, err := profile.ParseTemplate(tmplContents); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		params.TemplateFile = tmplHeader.Filename
		params.TemplateContents = string(tmplContents)
	}

	jobsMu.Lock()
	job := &Job{
		Number: len(jobs) + 1,
		Params: params,
	}
	job.Log = oblogging.New(fmt.Sprintf("job-%d", job.Number))
	job.Log.NewMemoryTarget(memName(job.Number), 2<<16)
	if params.Verbose {
		job.Log.SetLogLevel(logging.DEBUG)
	} else {
		job.Log.SetLogLevel(logging.INFO)
	}
	jobs = append(jobs, job)
	jobsMu.Unlock()

	go runJob(job)

	http.Redirect(w, r, fmt.Sprintf("/jobs/%d", job.Number), http.StatusSeeOther)
}

func memName(number int) string {
	return fmt.Sprintf("job-%d-output", number)
}

func runJob(job *Job) {
	finish := func(err error) {
		jobsMu.Lock()
		if err != nil {
			job.Error = err.Error()
			job.Log.Errorf("Job %d failed: %v", job.Number, err)
		}
		job.Done = true
		jobsMu.Unlock()
	}

	prof, err := profile.ParseProfile([]byte(job.Params.ProfileContents))
	if err != nil {
		finish(err)
		return
	}

	tmplSteps := profile.DefaultTemplate()
	if job.Params.TemplateContents != "" {
		tmplSteps, err = profile.ParseTemplate([]byte(job.Params.TemplateContents))
		if err != nil {
			finish(err)
			return
		}
	}
	steps, err := profile.Render(prof, tmplSteps)
	if err != nil {
		finish(err)
		return
	}

	transport, err := console.OpenSerial(job.Params.PortConfig.Port, parseMode(job.Params.PortConfig))
	if err != nil {
		finish(err)
		return
	}
	defer transport.Close()

	classifier, err := console.NewClassifier(console.DefaultRules())
	if err != nil {
		finish(err)
		return
	}

	seq := sequencer.New(transport, classifier, prof.Credentials, job.Log)
	jobsMu.Lock()
	job.Seq = seq
	jobsMu.Unlock()

	finish(seq.Run(steps))
}

func findJob(r *http.Request) *Job {
	number, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		return nil
	}
	jobsMu.Lock()
	defer jobsMu.Unlock()
	for _, job := range jobs {
		if job.Number == number {
			return job
		}
	}
	return nil
}

type jobView struct {
	Number      int
	Params      RunParams
	Status      string
	Done        bool
	Error       string
	ReportLines []string
	LogLines    []string
}

func viewJob(job *Job) jobView {
	jobsMu.Lock()
	defer jobsMu.Unlock()
	view := jobView{
		Number: job.Number,
		Params: job.Params,
		Status: job.Status(),
		Done:   job.Done,
		Error:  job.Error,
	}
	if job.Seq != nil {
		view.ReportLines = job.Seq.Report().Summary()
	}
	if mem, err := job.Log.GetMemLogContents(memName(job.Number)); err == nil {
		for line := mem.Buff.Head(); line != nil; line = line.Next() {
			view.LogLines = append(view.LogLines, line.Record.Formatted(0))
		}
	}
	return view
}

func jobPage(w http.ResponseWriter, r *http.Request) {
	job := findJob(r)
	if job == nil {
		http.NotFound(w, r)
		return
	}
	renderPage(w, jobTmpl, viewJob(job))
}

func cancelJob(w http.ResponseWriter, r *http.Request) {
	job := findJob(r)
	if job == nil {
		http.NotFound(w, r)
		return
	}
	jobsMu.Lock()
	seq := job.Seq
	done := job.Done
	jobsMu.Unlock()
	if !done && seq != nil {
		seq.Cancel()
	}
	http.Redirect(w, r, fmt.Sprintf("/jobs/%d", job.Number), http.StatusSeeOther)
}

func jobJSON(w http.ResponseWriter, r *http.Request) {
	job := findJob(r)
	if job == nil {
		http.NotFound(w, r)
		return
	}
	jobsMu.Lock()
	payload := struct {
		Number int                      `json:"number"`
		Status string                   `json:"status"`
		Done   bool                     `json:"done"`
		Error  string                   `json:"error,omitempty"`
		Report *sequencer.SessionReport `json:"report,omitempty"`
	}{
		Number: job.Number,
		Status: job.Status(),
		Done:   job.Done,
		Error:  job.Error,
	}
	if job.Seq != nil {
		payload.Report = job.Seq.Report()
	}
	jobsMu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

// Routes builds the router; split out from ServeWeb so tests can mount
// it on httptest servers.
func Routes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/", index).Methods("GET")
	router.HandleFunc("/ports", listPorts).Methods("GET")
	router.HandleFunc("/onboard", onboardForm).Methods("GET")
	router.HandleFunc("/onboard", startOnboard).Methods("POST")
	router.HandleFunc("/jobs/{id:[0-9]+}", jobPage).Methods("GET")
	router.HandleFunc("/jobs/{id:[0-9]+}/cancel", cancelJob).Methods("POST")
	router.HandleFunc("/api/jobs/{id:[0-9]+}", jobJSON).Methods("GET")
	return router
}

func ServeWeb(addr string, log *oblogging.Oblogging) error {
	log.Infof("Listening on %s", addr)
	return http.ListenAndServe(addr, Routes())
}

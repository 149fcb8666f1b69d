package routes

import (
	"html/template"
	"net/http"

	"vidbatch/job"
	"vidbatch/logger"
	"vidbatch/models"
)

var formTemplate = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html>
<head><title>vidbatch</title></head>
<body>
<h1>Convert a folder to MP4</h1>
<form method="post" action="/batch">
<p><label>Input folder <input name="input_dir" size="60"></label></p>
<p><label>Output folder <input name="output_dir" size="60"></label></p>
<p><label>Frame rate <input name="fps" type="number" min="{{.MinFPS}}" max="{{.MaxFPS}}" value="{{.DefaultFPS}}"></label></p>
<p><label>Destination key <input name="destination" size="34"></label></p>
<p><button type="submit"{{if .Busy}} disabled{{end}}>Start processing</button></p>
</form>
<p>State: {{.State}}{{with .Last}} &middot; last batch: {{.Message}}{{end}}</p>
</body>
</html>
`))

type formData struct {
	MinFPS, MaxFPS, DefaultFPS int
	Busy                       bool
	State                      string
	Last                       *job.Outcome
}

// FormHandler serves the selection form at the site root.
func FormHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	state, last := job.GetState()
	data := formData{
		MinFPS:     models.MinFrameRate,
		MaxFPS:     models.MaxFrameRate,
		DefaultFPS: models.DefaultFrameRate,
		Busy:       state == job.StateProcessing,
		State:      state.String(),
		Last:       last,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := formTemplate.Execute(w, data); err != nil {
		logger.Errorf("Failed to render form: %v", err)
	}
}

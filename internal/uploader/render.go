package uploader

import (
	"html/template"
	"io"
)

var tmpl = template.Must(template.New("uploader").Parse(`<section class="uploader">
  <div class="upload-container">
    <h3>Upload your memes</h3>
    <form method="post" action="/uploader/select" enctype="multipart/form-data">
      <input type="file" name="files" accept="image/*,video/*" multiple onchange="this.form.submit()">
      <noscript><button type="submit">Preview</button></noscript>
    </form>
    <div class="preview-container">
      {{- range .Previews}}
      <div class="preview-item" title="{{.Name}}">
        {{- if eq .Kind "image"}}<img src="{{.URL}}" alt="{{.Name}}">
        {{- else if eq .Kind "video"}}<video src="{{.URL}}" muted autoplay loop></video>
        {{- end}}
      </div>
      {{- end}}
    </div>
    <div class="status">{{.Status}}</div>
    <form method="post" action="/uploader/upload">
      <button type="submit"{{if .Uploading}} disabled{{end}}>Upload memes</button>
    </form>
  </div>
</section>
`))

type view struct {
	Previews  []Preview
	Status    string
	Uploading bool
}

// Render writes the widget's HTML fragment.
func (u *Uploader) Render(w io.Writer) error {
	u.mu.Lock()
	v := view{
		Previews:  append([]Preview(nil), u.previews...),
		Status:    u.status,
		Uploading: u.state == StateUploading,
	}
	u.mu.Unlock()

	return tmpl.Execute(w, v)
}

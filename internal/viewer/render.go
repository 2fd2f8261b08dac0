package viewer

import (
	"html/template"
	"io"
)

var tmpl = template.Must(template.New("viewer").Parse(`<section class="viewer"{{if not .Visible}} hidden{{end}}>
  {{- if .Element}}
  <form method="post" action="/viewer/close">
    <button class="overlay" type="submit" aria-label="Close"></button>
  </form>
  <div class="content">
    <form method="post" action="/viewer/close">
      <button class="close-btn" type="submit">&times;</button>
    </form>
    {{- with .Element}}
    {{- if eq .Kind "video"}}
    <video src="{{.URL}}"{{if .Controls}} controls{{end}}{{if .Autoplay}} autoplay{{end}}></video>
    {{- else}}
    <img src="{{.URL}}" alt="Enlarged meme">
    {{- end}}
    {{- end}}
  </div>
  {{- end}}
</section>
`))

type view struct {
	Visible bool
	Element *Element
}

// Render writes the overlay's HTML fragment.
func (v *Viewer) Render(w io.Writer) error {
	return tmpl.Execute(w, view{
		Visible: v.State() == StateVisible,
		Element: v.Element(),
	})
}

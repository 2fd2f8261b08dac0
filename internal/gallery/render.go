package gallery

import (
	"html/template"
	"io"

	"github.com/memewall/service/internal/media"
)

var tmpl = template.Must(template.New("gallery").Parse(`<section class="gallery">
  <div class="gallery-header">
    <h2>Meme Gallery</h2>
    <form method="post" action="/gallery/sort">
      <select name="sort" onchange="this.form.submit()">
        {{- range .Options}}
        <option value="{{.Value}}"{{if .Selected}} selected{{end}}>{{.Label}}</option>
        {{- end}}
      </select>
      <noscript><button type="submit">Sort</button></noscript>
    </form>
  </div>
  <div class="gallery-container">
    {{- if .Message}}
    <p>{{.Message}}</p>
    {{- else}}
    {{- range $i, $item := .Items}}
    <form class="meme-item" method="post" action="/gallery/tiles/{{$i}}">
      <button type="submit" title="{{$item.Name}}">
        {{- if eq $item.Kind "video"}}<video src="{{$item.URL}}" muted autoplay loop></video>
        {{- else}}<img src="{{$item.URL}}" alt="Meme">
        {{- end}}
      </button>
    </form>
    {{- end}}
    {{- end}}
  </div>
</section>
`))

type option struct {
	Value    media.SortPolicy
	Label    string
	Selected bool
}

type view struct {
	Options []option
	Message string
	Items   []media.Item
}

// Render writes the widget's HTML fragment.
func (g *Gallery) Render(w io.Writer) error {
	g.mu.Lock()
	v := view{
		Message: g.message,
		Items:   append([]media.Item(nil), g.items...),
	}
	for _, p := range media.SortPolicies {
		v.Options = append(v.Options, option{Value: p, Label: p.Label(), Selected: p == g.policy})
	}
	g.mu.Unlock()

	return tmpl.Execute(w, v)
}

package page

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
)

var shell = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>MemeWall</title>
  <style>
    body { margin: 0; padding: 20px; font-family: 'Comic Neue', cursive; }
    header, footer { text-align: center; }
    footer { margin-top: 40px; padding: 20px; color: #666; }
    .upload-container { border: 2px dashed #ccc; padding: 20px; text-align: center; border-radius: 8px; }
    .preview-container { display: flex; flex-wrap: wrap; gap: 10px; margin-top: 15px; }
    .preview-item { width: 100px; height: 100px; }
    .preview-item img, .preview-item video { width: 100%; height: 100%; object-fit: cover; }
    .gallery-header { display: flex; justify-content: space-between; align-items: center; }
    .gallery-container { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 2px; }
    .meme-item button { width: 100%; height: 200px; padding: 0; border: 0; cursor: pointer; background: none; }
    .meme-item img, .meme-item video { width: 100%; height: 100%; object-fit: contain; }
    .viewer { position: fixed; inset: 0; z-index: 1000; }
    .viewer[hidden] { display: none; }
    .viewer .overlay { position: absolute; inset: 0; width: 100%; border: 0; background: rgba(0, 0, 0, 0.8); }
    .viewer .content { position: absolute; top: 50%; left: 50%; transform: translate(-50%, -50%); max-width: 90%; background: white; }
    .viewer .content img, .viewer .content video { max-width: 100%; max-height: 80vh; display: block; }
    .close-btn { position: absolute; top: 10px; right: 10px; background: #ff4444; color: white; border: none; border-radius: 50%; width: 30px; height: 30px; }
  </style>
</head>
<body{{if .ScrollLocked}} style="overflow: hidden"{{end}}>
  <header>
    <h1>MemeWall</h1>
    <p>Share and organise your memes in the cloud</p>
  </header>
  <main>
    {{.Uploader}}
    {{.Gallery}}
    {{.Viewer}}
  </main>
  <footer>
    <p>&copy; {{.Year}} MemeWall - All memes reserved</p>
  </footer>
  <script>
    (function () {
      var proto = location.protocol === "https:" ? "wss://" : "ws://";
      var sock = new WebSocket(proto + location.host + "/ws");
      sock.onmessage = function (e) {
        var ev = JSON.parse(e.data);
        if (ev.type === "content-changed") {
          fetch("/events/content-changed", { method: "POST" }).then(function () { location.reload(); });
        }
      };
    })();
  </script>
</body>
</html>
`))

type shellView struct {
	ScrollLocked bool
	Year         int
	Uploader     template.HTML
	Gallery      template.HTML
	Viewer       template.HTML
}

type renderer interface {
	Render(w io.Writer) error
}

// Render writes the whole document.
func (p *Page) Render(w io.Writer) error {
	v := shellView{
		ScrollLocked: p.ScrollLocked(),
		Year:         p.now().Year(),
	}

	parts := []struct {
		name string
		r    renderer
		dst  *template.HTML
	}{
		{"uploader", p.Uploader, &v.Uploader},
		{"gallery", p.Gallery, &v.Gallery},
		{"viewer", p.Viewer, &v.Viewer},
	}
	for _, part := range parts {
		var buf bytes.Buffer
		if err := part.r.Render(&buf); err != nil {
			return fmt.Errorf("render %s: %w", part.name, err)
		}
		// Widget output is already escaped by its own template.
		*part.dst = template.HTML(buf.String())
	}

	return shell.Execute(w, v)
}

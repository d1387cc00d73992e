package server

import (
	"bytes"
	"html/template"
	"io"

	"github.com/jmylchreest/themekit/internal/model"
	"github.com/jmylchreest/themekit/internal/selector"
	"github.com/jmylchreest/themekit/internal/stylesheet"
)

var bodyTemplate = template.Must(template.New("body").Parse(`<body data-revision="{{.Revision}}">
<div id="page-header">{{.Header}}</div>
<main class="selectors">
{{range .Controls}}<form method="post" action="/api/{{.Name}}">{{.Markup}}<noscript><button type="submit">Apply</button></noscript></form>
{{end}}</main>
<div id="page-footer">{{.Footer}}</div>
<script>
(function () {
  var revision = {{.Revision}};
  document.querySelectorAll("form select").forEach(function (el) {
    el.addEventListener("change", function () { el.form.submit(); });
  });
  var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
  ws.onmessage = function (e) {
    var msg = JSON.parse(e.data);
    if (msg.type === "state" && msg.snapshot.revision !== revision) {
      location.reload();
    } else if (msg.type === "stylesheet") {
      var link = document.getElementById({{.LinkID}});
      if (link) { link.href = link.href.split("?")[0] + "?v=" + Date.now(); }
    }
  };
})();
</script>
</body>`))

type controlView struct {
	Name   string
	Markup template.HTML
}

type bodyView struct {
	Revision uint64
	LinkID   string
	Header   template.HTML
	Footer   template.HTML
	Controls []controlView
}

// renderPage writes the document head followed by a body built from snap.
// Variant markup is trusted and written unescaped.
func renderPage(w io.Writer, doc *stylesheet.Document, linkID string, snap model.Snapshot, controls []selector.Control) error {
	view := bodyView{
		Revision: snap.Revision,
		LinkID:   linkID,
	}
	if snap.Header != nil {
		view.Header = template.HTML(snap.Header.Markup)
	}
	if snap.Footer != nil {
		view.Footer = template.HTML(snap.Footer.Markup)
	}

	for _, c := range controls {
		var buf bytes.Buffer
		if err := c.Render(&buf); err != nil {
			return err
		}
		view.Controls = append(view.Controls, controlView{
			Name:   c.Widget().Name,
			Markup: template.HTML(buf.String()),
		})
	}

	var body bytes.Buffer
	if err := bodyTemplate.Execute(&body, view); err != nil {
		return err
	}

	if _, err := io.WriteString(w, "<!DOCTYPE html>\n<html>"); err != nil {
		return err
	}
	if err := doc.RenderHead(w); err != nil {
		return err
	}
	if _, err := body.WriteTo(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</html>\n")
	return err
}

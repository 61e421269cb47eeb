package importmap

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Tags renders the import map script, a modulepreload link for every preload
// pin, and a module script importing entry. An empty entry skips the module
// script.
func Tags(m *Map, entry string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		data, err := m.JSON()
		if err != nil {
			return err
		}

		var b strings.Builder
		b.WriteString(`<script type="importmap" data-turbo-track="reload">`)
		b.WriteString(scriptSafe(string(data)))
		b.WriteString("</script>\n")

		for _, p := range m.Preloads() {
			b.WriteString(`<link rel="modulepreload" href="`)
			b.WriteString(templ.EscapeString(p.To))
			b.WriteString("\">\n")
		}

		if entry != "" {
			spec, err := json.Marshal(entry)
			if err != nil {
				return err
			}
			b.WriteString(`<script type="module">import `)
			b.WriteString(scriptSafe(string(spec)))
			b.WriteString("</script>\n")
		}

		_, err = io.WriteString(w, b.String())
		return err
	})
}

// scriptSafe breaks up "</" so JSON cannot close the enclosing script element.
func scriptSafe(js string) string {
	return strings.ReplaceAll(js, "</", `<\/`)
}

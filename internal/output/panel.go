package output

import (
	"fmt"
	"html"
	"strings"
)

// PanelID is the id attribute of the injected results panel.
const PanelID = "pathsniff-results"

const panelStyle = "position:fixed;top:0;left:0;width:100%;max-height:50%;overflow:auto;" +
	"background:#111;color:#0f0;padding:10px;z-index:99999;font-size:12px;"

// PanelHTML renders the results panel: a count followed by the entries,
// one per line. Entries are escaped.
func PanelHTML(endpoints []string) string {
	escaped := make([]string, len(endpoints))
	for i, e := range endpoints {
		escaped[i] = html.EscapeString(e)
	}
	return fmt.Sprintf(`<div id="%s" style="%s"><strong>Discovered Endpoints (%d):</strong><br>%s</div>`,
		PanelID, panelStyle, len(endpoints), strings.Join(escaped, "<br>"))
}

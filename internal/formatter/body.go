// Package formatter renders the notification payloads: the HTML mail
// body and a plain-text table for debug output.
package formatter

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"renjiwatch/internal/models"
)

const htmlTemplate = `<!DOCTYPE html>
<html lang="zh_CN">
  <head>
    <meta charset="utf-8">
    <title>Updates</title>
    <script src="https://cdnjs.cloudflare.com/ajax/libs/prettify/r298/prettify.min.js" integrity="sha512-/9uQgrROuVyGVQMh4f61rF2MTLjDVN+tFGn20kq66J+kTZu/q83X8oJ6i4I9MCl3psbB5ByQfIwtZcHDHc2ngQ==" crossorigin="anonymous" referrerpolicy="no-referrer"></script>
  </head>
  <body>
    <pre><code class="prettyprint">%s</code></pre>
  </body>
</html>
`

const emptyCell = "-"

// RenderHTML wraps the feed's canonical JSON in the notification page
// template.
func RenderHTML(feed models.Feed) (string, error) {
	canon, err := feed.CanonicalJSON()
	if err != nil {
		return "", fmt.Errorf("failed to render mail body: %w", err)
	}

	return fmt.Sprintf(htmlTemplate, canon), nil
}

// RenderTable renders the feed as an aligned plain-text table. Titles
// are CJK, so column widths are display widths, not byte lengths.
func RenderTable(feed models.Feed) string {
	rows := [][]string{{"DATE", "TITLE", "LINK"}}

	for _, rec := range feed {
		row := []string{emptyCell, emptyCell, emptyCell}

		if rec.Date != nil {
			row[0] = rec.Date.Format(models.DateLayout)
		}

		if rec.Title != nil {
			row[1] = *rec.Title
		}

		if rec.Link != nil {
			row[2] = *rec.Link
		}

		rows = append(rows, row)
	}

	widths := make([]int, len(rows[0]))

	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder

	for _, row := range rows {
		var line strings.Builder

		for i, cell := range row {
			line.WriteString(cell)
			line.WriteString(strings.Repeat(" ", widths[i]-runewidth.StringWidth(cell)+2))
		}

		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteString("\n")
	}

	return b.String()
}

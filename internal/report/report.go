package report

import (
	"fmt"
	"http_relay/internal/http/header"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var classColors = map[header.StatusClass]lipgloss.Color{
	header.ClassInformational: lipgloss.Color("#7D56F4"),
	header.ClassSuccess:       lipgloss.Color("#04B575"),
	header.ClassRedirection:   lipgloss.Color("#F2C94C"),
	header.ClassClientError:   lipgloss.Color("#FF8C42"),
	header.ClassServerError:   lipgloss.Color("#FF5F56"),
}

// Status writes the status line of resp followed by its header fields.
func Status(w io.Writer, resp header.ResponseHeader, noColor bool) error {
	renderer := lipgloss.NewRenderer(w)
	if noColor {
		renderer.SetColorProfile(termenv.Ascii)
	}
	return render(w, renderer, resp)
}

func render(w io.Writer, renderer *lipgloss.Renderer, resp header.ResponseHeader) error {
	color, ok := classColors[resp.Class()]
	if !ok {
		color = lipgloss.Color("#888888")
	}

	statusStyle := renderer.NewStyle().
		Bold(true).
		Foreground(color)
	nameStyle := renderer.NewStyle().
		Foreground(lipgloss.Color("#888888"))

	status := fmt.Sprintf("%s %d", resp.Version(), resp.StatusCode())
	if resp.Reason() != "" {
		status += " " + resp.Reason()
	}

	var b strings.Builder
	b.WriteString(statusStyle.Render(status))
	b.WriteString("\n")
	for _, f := range resp.Fields() {
		b.WriteString(nameStyle.Render(f.Name + ":"))
		b.WriteString(" ")
		b.WriteString(f.Value)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

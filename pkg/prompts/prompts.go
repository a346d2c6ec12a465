// Package prompts renders writer-facing briefs from preflight matrices.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/robwestz/mcp-blcwrtr/pkg/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var briefTemplate = template.Must(
	template.New("writer_brief.md.tmpl").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templateFS, "templates/writer_brief.md.tmpl"))

type briefData struct {
	Matrix *models.PreflightMatrix
	Topic  string
}

// RenderWriterBrief produces the markdown brief a writer receives for an
// order. Pure function of the matrix and topic.
func RenderWriterBrief(matrix *models.PreflightMatrix, topic string) (string, error) {
	var buf bytes.Buffer
	if err := briefTemplate.Execute(&buf, briefData{Matrix: matrix, Topic: topic}); err != nil {
		return "", fmt.Errorf("render writer brief: %w", err)
	}
	return buf.String(), nil
}

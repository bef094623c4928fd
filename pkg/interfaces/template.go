package interfaces

import (
	"io"
)

// TemplateRenderer renders raw template strings against a data context.
// Partials registered on the renderer are addressable by their name from
// within any rendered template.
type TemplateRenderer interface {
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterPartial(name, content string) error
	RegisterPartials(partials map[string]string) error
}

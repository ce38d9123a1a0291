// internal/app/features/supporters/templates.go
package supporters

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "supporters",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}

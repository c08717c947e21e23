package docblocks

import (
	"io/fs"

	"github.com/goliatone/go-docblocks/pkg/render"
)

// EmbeddedTemplates exposes the built-in HTML templates so callers can copy or
// extend them before passing overrides through render.WithTemplatesFS.
func EmbeddedTemplates() fs.FS {
	return render.TemplatesFS()
}

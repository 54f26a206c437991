package dataview

import "io"

// Renderer turns a named template and its data into HTML, optionally streaming to out.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// Package web carries the HTML templates compiled into the server binary.
package web

import "embed"

// Templates holds layout.html, the page templates and the _*.html partials
// under templates/.
//
//go:embed templates/*.html
var Templates embed.FS

package fsworkspace

import "embed"

//go:embed templates
var templatesFS embed.FS

// templateTargets maps embedded template names to their workspace-relative destination.
var templateTargets = map[string]string{
	"env.example": ".env.example",
}

// Package docs embeds the OpenAPI description of the browser's JSON API.
package docs

import _ "embed"

//go:embed swagger.yaml
var SwaggerYAML []byte

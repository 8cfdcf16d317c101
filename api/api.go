// Package api embeds the OpenAPI description of the admin API.
package api

import _ "embed"

//go:embed openapi.yml
var Spec []byte

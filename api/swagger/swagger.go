// Package swagger embeds the OpenAPI document served under /swagger.
package swagger

import _ "embed"

//go:embed flightsearch.swagger.json
var Doc []byte

package http

import (
	"sync"

	"github.com/swaggo/swag"
)

// docsInstance names the document served by the Swagger UI.
const docsInstance = "delivery-tracker"

type swaggerDoc struct {
	json string
}

func (d swaggerDoc) ReadDoc() string {
	return d.json
}

var registerDocs sync.Once

// publishDocs makes the OpenAPI document available to the Swagger UI. The swag
// registry is global and refuses duplicates, so only the first call registers.
func publishDocs(json []byte) {
	registerDocs.Do(func() {
		if swag.GetSwagger(docsInstance) == nil {
			swag.Register(docsInstance, swaggerDoc{json: string(json)})
		}
	})
}

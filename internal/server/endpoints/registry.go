// Package endpoints implements the HTTP endpoints the operator UI talks to.
package endpoints

import "github.com/jackzampolin/pagemark/internal/api"

// All returns all endpoint instances.
func All() []api.Endpoint {
	return []api.Endpoint{
		// Health endpoints
		&HealthEndpoint{},
		&VersionEndpoint{},

		// Session endpoints
		&CreateSessionEndpoint{},
		&ListSessionsEndpoint{},
		&GetSessionEndpoint{},
		&FinalizeSessionEndpoint{},
		&DeleteSessionEndpoint{},

		// Event dispatch
		&PostEventEndpoint{},

		// Page preview endpoints
		&GetPageEndpoint{},
		&PageImageEndpoint{},

		// Asset download
		&GetAssetEndpoint{},
	}
}

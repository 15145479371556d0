package ratelimit

import "strings"

// MatchEndpoint matches a request path and method to an endpoint
// configuration. Returns nil if no configuration matches, in which case the
// caller applies the global default.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	// The health check is never limited.
	if path == "/health" && method == "GET" {
		return &EndpointConfig{}
	}

	for i := range configs {
		config := &configs[i]
		if config.Path == path && config.Method == method {
			return config
		}
	}

	// Prefix match for paths ending with "/", e.g. "/runs/" matches
	// "/runs/latest".
	for i := range configs {
		config := &configs[i]
		if config.Method == method && strings.HasSuffix(config.Path, "/") && strings.HasPrefix(path, config.Path) {
			return config
		}
	}

	return nil
}

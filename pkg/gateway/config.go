package gateway

// Config holds configuration for the gateway server
type Config struct {
	ListenAddr string

	// CORSOrigin is sent as Access-Control-Allow-Origin, "*" when empty
	CORSOrigin string

	// MaxUploadSize is the largest accepted file, in bytes
	MaxUploadSize int64

	// Gateways are the public gateway bases advertised to the browser UI
	Gateways []string

	// APIBasePath is where the storage routes are mounted, "/api" when empty
	APIBasePath string
}

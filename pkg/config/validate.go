package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError represents a single validation error with context.
type ValidationError struct {
	Path    string // e.g., "ipfs.port" or "gateways[1]"
	Message string // e.g., "must be between 1 and 65535"
	Hint    string // e.g., "expected http or https"
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s; %s", e.Path, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate performs validation of the entire config.
// It aggregates all errors and returns them, allowing the caller to print all issues at once.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateIPFS()...)
	errs = append(errs, c.validatePinning()...)
	errs = append(errs, c.validateGateways()...)

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error

	if err := validatePort(c.Server.Port); err != nil {
		errs = append(errs, ValidationError{Path: "server.port", Message: err.Error()})
	}
	if strings.TrimSpace(c.Server.CORSOrigin) == "" {
		errs = append(errs, ValidationError{
			Path:    "server.cors_origin",
			Message: "must not be empty",
			Hint:    `use "*" to allow any origin`,
		})
	}
	if c.Server.MaxUploadSize <= 0 || c.Server.MaxUploadSize > MaxUploadSize {
		errs = append(errs, ValidationError{
			Path:    "server.max_upload_size",
			Message: fmt.Sprintf("must be between 1 and %d bytes", MaxUploadSize),
		})
	}

	return errs
}

func (c *Config) validateIPFS() []error {
	var errs []error

	if strings.TrimSpace(c.IPFS.Host) == "" {
		errs = append(errs, ValidationError{Path: "ipfs.host", Message: "must not be empty"})
	}
	if err := validatePort(c.IPFS.Port); err != nil {
		errs = append(errs, ValidationError{Path: "ipfs.port", Message: err.Error()})
	}
	if c.IPFS.Protocol != "http" && c.IPFS.Protocol != "https" {
		errs = append(errs, ValidationError{
			Path:    "ipfs.protocol",
			Message: fmt.Sprintf("unsupported protocol %q", c.IPFS.Protocol),
			Hint:    "expected http or https",
		})
	}
	if c.IPFS.Timeout < 0 {
		errs = append(errs, ValidationError{Path: "ipfs.timeout", Message: "must not be negative"})
	}
	if c.IPFS.CIDVersion != 0 && c.IPFS.CIDVersion != 1 {
		errs = append(errs, ValidationError{Path: "ipfs.cid_version", Message: "must be 0 or 1"})
	}

	return errs
}

// validatePinning checks only the endpoints. A missing or malformed API key disables
// replication rather than failing startup.
func (c *Config) validatePinning() []error {
	var errs []error

	if err := validateHTTPURL(c.Pinning.APIURL); err != nil {
		errs = append(errs, ValidationError{Path: "pinning.api_url", Message: err.Error()})
	}
	if err := validateHTTPURL(c.Pinning.GatewayBase); err != nil {
		errs = append(errs, ValidationError{Path: "pinning.gateway_base", Message: err.Error()})
	}
	if c.Pinning.Timeout < 0 {
		errs = append(errs, ValidationError{Path: "pinning.timeout", Message: "must not be negative"})
	}

	return errs
}

func (c *Config) validateGateways() []error {
	var errs []error

	if len(c.Gateways) == 0 {
		errs = append(errs, ValidationError{
			Path:    "gateways",
			Message: "must not be empty",
			Hint:    "e.g. https://ipfs.io/ipfs/",
		})
	}

	seen := make(map[string]bool)
	for i, g := range c.Gateways {
		path := fmt.Sprintf("gateways[%d]", i)
		if err := validateHTTPURL(g); err != nil {
			errs = append(errs, ValidationError{Path: path, Message: err.Error()})
			continue
		}
		if seen[g] {
			errs = append(errs, ValidationError{Path: path, Message: "duplicate gateway"})
		}
		seen[g] = true
	}

	return errs
}

func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("must be between 1 and 65535, got %d", port)
	}
	return nil
}

func validateHTTPURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

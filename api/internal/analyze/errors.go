package analyze

// ConfigError means no usable API credential is configured. There is no
// retry path; the user has to supply a key.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "analyze: not configured: " + e.Reason }

// UpstreamError wraps a failed or empty model call.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return "analyze: upstream: " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }

// FormatError means the model's text could not be turned into a valid
// Result: unparsable JSON, an unknown type tag, or a structural violation
// in one of the events/problems.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return "analyze: bad response format: " + e.Reason + ": " + e.Err.Error()
	}
	return "analyze: bad response format: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

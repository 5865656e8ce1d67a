package errors

// Error codes used across the dispatch pipeline. Each per-target failure
// carries exactly one of these so callers can tell "bad URL" apart from
// "provider rejected the send".
const (
	// CodeMalformedURL indicates a service URL that could not be parsed:
	// missing scheme delimiter, broken percent escape, unparsable port.
	CodeMalformedURL Code = "MALFORMED_URL"

	// CodeUnsupportedScheme indicates a syntactically valid URL whose
	// scheme has no registered provider.
	CodeUnsupportedScheme Code = "UNSUPPORTED_SCHEME"

	// CodeMissingRequiredField indicates a URL that parsed cleanly but is
	// missing data the provider requires (recipient, token, host, ...).
	CodeMissingRequiredField Code = "MISSING_REQUIRED_FIELD"

	// CodeAdapterFailure indicates a transport or authentication error
	// surfaced by a provider adapter during send.
	CodeAdapterFailure Code = "ADAPTER_FAILURE"

	// CodeTimeout indicates an adapter exceeded its send deadline.
	CodeTimeout Code = "TIMEOUT"

	// CodeCancelled indicates the overall dispatch was cancelled before
	// this target's send completed.
	CodeCancelled Code = "CANCELLED"

	// CodeEmptyTargetList indicates a dispatch call with zero service URLs.
	CodeEmptyTargetList Code = "EMPTY_TARGET_LIST"

	// CodeInvalidConfiguration indicates bad runtime configuration.
	CodeInvalidConfiguration Code = "INVALID_CONFIGURATION"
)

// IsParseCode reports whether the code belongs to the parse/build stage
// (as opposed to send-time failures).
func IsParseCode(code Code) bool {
	switch code {
	case CodeMalformedURL, CodeUnsupportedScheme, CodeMissingRequiredField:
		return true
	}
	return false
}

package httpinfra

// DefaultHeaders returns the headers sent with every document request
func DefaultHeaders(userAgent string) map[string]string {
	headers := map[string]string{
		"Accept": "application/json, text/plain;q=0.9, */*;q=0.5",
	}
	if userAgent != "" {
		headers["User-Agent"] = userAgent
	}
	return headers
}

// MergeHeaders returns base overridden by extra
func MergeHeaders(base map[string]string, extra map[string]string) map[string]string {
	out := map[string]string{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

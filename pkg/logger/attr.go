package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Endpoint records the API endpoint path under the key "endpoint".
func Endpoint(path string) slog.Attr {
	return slog.String("endpoint", path)
}

// OrgID records the organization identifier under the key "org_id".
func OrgID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("org_id", id)
}

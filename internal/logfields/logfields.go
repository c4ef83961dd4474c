package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyFile       = "file"
	KeyDistro     = "distro"
	KeyCategory   = "category"
	KeyRegions    = "regions"
	KeyUnits      = "units"
	KeyPath       = "path"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Distro(d string) slog.Attr       { return slog.String(KeyDistro, d) }
func Category(c string) slog.Attr     { return slog.String(KeyCategory, c) }
func Regions(n int) slog.Attr         { return slog.Int(KeyRegions, n) }
func Units(n int) slog.Attr           { return slog.Int(KeyUnits, n) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

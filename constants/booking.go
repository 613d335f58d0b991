package constants

import "strings"

// GenderUnknown is recorded when a booking row carries no gender column.
const GenderUnknown = "UNKNOWN"

// NoCharges is stored when a record has no charge lines.
const NoCharges = "No charges listed"

// MarshalHold is the normalized charge token for federal custody holds.
const MarshalHold = "MARSHAL HOLD"

// ChargeSeparator joins individual charge lines into the stored charges column.
const ChargeSeparator = "; "

// AllowedExtensions holds the file extensions accepted by the drop-directory
// watcher and the directory processor.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

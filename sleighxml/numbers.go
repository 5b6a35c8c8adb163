package sleighxml

import (
	"strconv"

	"github.com/lookbusy1344/sleigh-lift/lifterror"
)

// parseUint parses a decimal or 0x-prefixed hex attribute value,
// treating an empty string as def (the attribute was absent).
func parseUint(s string, def uint64) (uint64, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, &lifterror.DeserialiseError{Kind: lifterror.Invariant, Detail: "malformed integer attribute " + strconv.Quote(s), Wrapped: err}
	}
	return v, nil
}

func parseInt(s string, def int64) (int64, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, &lifterror.DeserialiseError{Kind: lifterror.Invariant, Detail: "malformed integer attribute " + strconv.Quote(s), Wrapped: err}
	}
	return v, nil
}

func mustUint(s string, def uint64) uint64 {
	v, err := parseUint(s, def)
	if err != nil {
		return def
	}
	return v
}

func mustInt(s string, def int64) int64 {
	v, err := parseInt(s, def)
	if err != nil {
		return def
	}
	return v
}

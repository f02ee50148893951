package records

import "strings"

// NormalizePageID returns the dashed 8-4-4-4-12 form of a record id. Ids
// are accepted with or without dashes, in either case.
func NormalizePageID(id string) (string, error) {
	raw := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(id), "-", ""))
	if len(raw) != 32 {
		return "", ErrInvalidPageID
	}
	for _, r := range raw {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return "", ErrInvalidPageID
		}
	}
	return raw[0:8] + "-" + raw[8:12] + "-" + raw[12:16] + "-" + raw[16:20] + "-" + raw[20:], nil
}

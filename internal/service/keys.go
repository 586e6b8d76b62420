package service

import (
	"path"
	"strings"
	"unicode"
)

// buildStorageKey lays objects out per company and entity:
//
//	documents/company-<companyHex>/<entitytype>/<entityid>-<stem>-<docHex><ext>
//
// docHex makes every key unique even for identical file names.
func buildStorageKey(companyID, entityType, entityID, fileName, documentID string) string {
	ext := path.Ext(fileName)
	stem := strings.TrimSuffix(fileName, ext)

	return "documents/company-" + hexID(companyID) +
		"/" + segment(strings.ToLower(entityType)) +
		"/" + segment(entityID) + "-" + segment(strings.ToLower(stem)) + "-" + hexID(documentID) + ext
}

func hexID(id string) string {
	return strings.ReplaceAll(strings.ToLower(id), "-", "")
}

// segment collapses whitespace runs and path separators into a single dash so
// user input can never add or escape a key level.
func segment(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.TrimSpace(s) {
		if unicode.IsSpace(r) || r == '/' || r == '\\' {
			if !dash {
				b.WriteByte('-')
				dash = true
			}
			continue
		}
		b.WriteRune(r)
		dash = false
	}
	out := b.String()
	if out == "." || out == ".." {
		return "_"
	}
	return out
}

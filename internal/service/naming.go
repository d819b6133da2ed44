package service

import (
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/text/unicode/norm"

	"cloudvault/internal/model"
)

var separatorReplacer = strings.NewReplacer("/", "-", `\`, "-")

// category classifies a MIME type into the storage key segment.
func category(mimeType string) string {
	mt := strings.ToLower(mimeType)
	switch {
	case strings.HasPrefix(mt, "image/"):
		return model.CategoryImage
	case strings.HasPrefix(mt, "video/"):
		return model.CategoryVideo
	default:
		return model.CategoryFiles
	}
}

// storageKey builds {owner}/{category}/{name}.
func storageKey(ownerID, cat, name string) string {
	return ownerID + "/" + cat + "/" + name
}

// resolveName picks the storage-facing file name. The desired name wins over the original;
// whitespace runs collapse to one space and path separators become "-". A canonical
// extension for mimeType is appended when the name has no recognized one.
func resolveName(desired, original, mimeType string) (string, error) {
	name := strings.TrimSpace(desired)
	if name == "" {
		name = original
	}
	name = norm.NFC.String(name)
	name = strings.Join(strings.Fields(name), " ")
	name = separatorReplacer.Replace(name)

	if name == "" || name == "." || name == ".." {
		return "", validationf("file name is required")
	}

	canonical := canonicalExtension(mimeType)
	if !hasRecognizedExtension(name, canonical) && canonical != "" {
		name += canonical
	}
	return name, nil
}

func hasRecognizedExtension(name, canonical string) bool {
	ext := path.Ext(name)
	if ext == "" || ext == name || strings.ContainsRune(ext, ' ') {
		return false
	}
	if canonical != "" && strings.EqualFold(ext, canonical) {
		return true
	}
	return mime.TypeByExtension(ext) != ""
}

// canonicalExtension returns the usual extension (with dot) for mimeType, or "" when unknown.
func canonicalExtension(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil || mt == "" || mt == "application/octet-stream" {
		return ""
	}
	if m := mimetype.Lookup(mt); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	if exts, err := mime.ExtensionsByType(mt); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

// detectMimeType keeps a declared type unless it is missing or generic, then sniffs the bytes.
func detectMimeType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
			return declared
		}
	}
	detected := mimetype.Detect(data)
	mt, _, err := mime.ParseMediaType(detected.String())
	if err != nil {
		return "application/octet-stream"
	}
	return mt
}

package patch

import "strings"

// File is the patch for a single path: its header metadata plus every hunk
// line in original diff order.
type File struct {
	OldPath string
	NewPath string
	Lines   []Line
}

// Content serializes the file's lines, in order, into a unified-diff body.
func (file File) Content() string {
	var builder strings.Builder
	for _, fileLine := range file.Lines {
		builder.WriteString(fileLine.Text())
	}
	return builder.String()
}

// UnifiedText concatenates every file's serialized body, in file order, into
// one patch document ready for an external unified-diff consumer.
func UnifiedText(files []File) string {
	var builder strings.Builder
	for _, patchFile := range files {
		builder.WriteString(patchFile.Content())
	}
	return builder.String()
}

// FilterToFileSet drops any file whose new path is not a member of the
// allowed set. Files outside the generated-file contract are never
// propagated even when they changed.
func FilterToFileSet(files []File, allowedPaths []string) []File {
	allowed := make(map[string]struct{}, len(allowedPaths))
	for _, allowedPath := range allowedPaths {
		allowed[allowedPath] = struct{}{}
	}

	filtered := make([]File, 0, len(files))
	for _, patchFile := range files {
		if _, isAllowed := allowed[patchFile.NewPath]; isAllowed {
			filtered = append(filtered, patchFile)
		}
	}
	return filtered
}

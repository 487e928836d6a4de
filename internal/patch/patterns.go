package patch

import (
	"fmt"
	"regexp"
	"sort"
)

const (
	caseInsensitiveFlagConstant               = "(?i)"
	patternSubstitutionErrorTemplateConstant  = "invalid replacement pattern %q: %v"
	unknownLineVariantMessageTemplateConstant = "unknown patch line variant %T"
)

// PatternSubstitutionError reports a replacement token that does not compile
// as a regular expression. Malformed user-controlled patterns must surface,
// never be silently skipped.
type PatternSubstitutionError struct {
	Pattern string
	Cause   error
}

// Error describes the malformed pattern.
func (substitutionError *PatternSubstitutionError) Error() string {
	return fmt.Sprintf(patternSubstitutionErrorTemplateConstant, substitutionError.Pattern, substitutionError.Cause)
}

// Unwrap exposes the underlying regexp compilation failure.
func (substitutionError *PatternSubstitutionError) Unwrap() error {
	return substitutionError.Cause
}

// SubstituteString rewrites content by replacing every token with its mapped
// value using case-insensitive regular-expression matching. Tokens are
// applied in sorted key order so the result is deterministic when tokens
// could overlap.
func SubstituteString(replacements map[string]string, content string) (string, error) {
	tokenKeys := make([]string, 0, len(replacements))
	for tokenKey := range replacements {
		tokenKeys = append(tokenKeys, tokenKey)
	}
	sort.Strings(tokenKeys)

	substituted := content
	for _, tokenKey := range tokenKeys {
		tokenExpression, compileError := regexp.Compile(caseInsensitiveFlagConstant + tokenKey)
		if compileError != nil {
			return "", &PatternSubstitutionError{Pattern: tokenKey, Cause: compileError}
		}
		substituted = tokenExpression.ReplaceAllString(substituted, replacements[tokenKey])
	}

	return substituted, nil
}

// SubstituteLine rewrites one line's textual content, preserving its variant
// and line numbers.
func SubstituteLine(patchLine Line, replacements map[string]string) (Line, error) {
	switch typedLine := patchLine.(type) {
	case AddLine:
		substituted, substitutionError := SubstituteString(replacements, typedLine.Content)
		if substitutionError != nil {
			return nil, substitutionError
		}
		return AddLine{LineNumber: typedLine.LineNumber, Content: substituted}, nil
	case DeleteLine:
		substituted, substitutionError := SubstituteString(replacements, typedLine.Content)
		if substitutionError != nil {
			return nil, substitutionError
		}
		return DeleteLine{LineNumber: typedLine.LineNumber, Content: substituted}, nil
	case MoveLine:
		substituted, substitutionError := SubstituteString(replacements, typedLine.Content)
		if substitutionError != nil {
			return nil, substitutionError
		}
		return MoveLine{OldLineNumber: typedLine.OldLineNumber, NewLineNumber: typedLine.NewLineNumber, Content: substituted}, nil
	case HunkLine:
		substituted, substitutionError := SubstituteString(replacements, typedLine.Content)
		if substitutionError != nil {
			return nil, substitutionError
		}
		return HunkLine{Content: substituted}, nil
	case InfoLine:
		substituted, substitutionError := SubstituteString(replacements, typedLine.Content)
		if substitutionError != nil {
			return nil, substitutionError
		}
		return InfoLine{Content: substituted}, nil
	default:
		return nil, fmt.Errorf(unknownLineVariantMessageTemplateConstant, patchLine)
	}
}

// SubstituteFile rewrites the file's paths and every line through the
// replacement map.
func SubstituteFile(patchFile File, replacements map[string]string) (File, error) {
	substitutedOldPath, oldPathError := SubstituteString(replacements, patchFile.OldPath)
	if oldPathError != nil {
		return File{}, oldPathError
	}

	substitutedNewPath, newPathError := SubstituteString(replacements, patchFile.NewPath)
	if newPathError != nil {
		return File{}, newPathError
	}

	substitutedLines := make([]Line, 0, len(patchFile.Lines))
	for _, patchLine := range patchFile.Lines {
		substitutedLine, lineError := SubstituteLine(patchLine, replacements)
		if lineError != nil {
			return File{}, lineError
		}
		substitutedLines = append(substitutedLines, substitutedLine)
	}

	return File{OldPath: substitutedOldPath, NewPath: substitutedNewPath, Lines: substitutedLines}, nil
}

// SubstituteFiles rewrites every file in order.
func SubstituteFiles(patchFiles []File, replacements map[string]string) ([]File, error) {
	substitutedFiles := make([]File, 0, len(patchFiles))
	for _, patchFile := range patchFiles {
		substitutedFile, substitutionError := SubstituteFile(patchFile, replacements)
		if substitutionError != nil {
			return nil, substitutionError
		}
		substitutedFiles = append(substitutedFiles, substitutedFile)
	}
	return substitutedFiles, nil
}

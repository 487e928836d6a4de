package patch

import (
	"strings"

	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	fileHeaderPrefixConstant    = "diff --git "
	hunkHeaderPrefixConstant    = "@@"
	oldPathDiffPrefixConstant   = "a/"
	newPathDiffPrefixConstant   = "b/"
	newPathSeparatorConstant    = " b/"
	noNewlineMarkerConstant     = "\\"
	hunkRangeOldPrefixConstant  = "-"
	hunkRangeNewPrefixConstant  = "+"
	hunkRangeCountSeparatorRune = ','
)

// FromObjectPatch converts a go-git tree-to-tree patch into the line model.
// The files and lines appear exactly in the order the diff emitted them.
func FromObjectPatch(objectPatch *object.Patch) []File {
	return ParseUnifiedDiff(objectPatch.String())
}

// ParseUnifiedDiff classifies every line of a unified-diff document into the
// Line variants, grouped per file section. The parse is lossless: the
// concatenation of the result's serialized text equals the input.
func ParseUnifiedDiff(diffText string) []File {
	var files []File
	var currentFile *File

	oldLineNumber := 0
	newLineNumber := 0
	inHunk := false

	for _, rawLine := range splitKeepingTerminators(diffText) {
		trimmedLine := strings.TrimSuffix(rawLine, "\n")

		if strings.HasPrefix(trimmedLine, fileHeaderPrefixConstant) {
			oldPath, newPath := parseFileHeader(trimmedLine)
			files = append(files, File{OldPath: oldPath, NewPath: newPath})
			currentFile = &files[len(files)-1]
			currentFile.Lines = append(currentFile.Lines, InfoLine{Content: rawLine})
			inHunk = false
			continue
		}

		if currentFile == nil {
			// Preamble before the first file header; preserved verbatim.
			files = append(files, File{})
			currentFile = &files[len(files)-1]
		}

		if strings.HasPrefix(trimmedLine, hunkHeaderPrefixConstant) {
			oldLineNumber, newLineNumber = parseHunkHeader(trimmedLine)
			currentFile.Lines = append(currentFile.Lines, HunkLine{Content: rawLine})
			inHunk = true
			continue
		}

		if !inHunk {
			currentFile.Lines = append(currentFile.Lines, InfoLine{Content: rawLine})
			continue
		}

		switch {
		case strings.HasPrefix(rawLine, addLineMarkerConstant):
			currentFile.Lines = append(currentFile.Lines, AddLine{LineNumber: newLineNumber, Content: rawLine[1:]})
			newLineNumber++
		case strings.HasPrefix(rawLine, deleteLineMarkerConstant):
			currentFile.Lines = append(currentFile.Lines, DeleteLine{LineNumber: oldLineNumber, Content: rawLine[1:]})
			oldLineNumber++
		case strings.HasPrefix(rawLine, contextLineMarkerConstant):
			currentFile.Lines = append(currentFile.Lines, MoveLine{OldLineNumber: oldLineNumber, NewLineNumber: newLineNumber, Content: rawLine[1:]})
			oldLineNumber++
			newLineNumber++
		case strings.HasPrefix(rawLine, noNewlineMarkerConstant):
			currentFile.Lines = append(currentFile.Lines, InfoLine{Content: rawLine})
		default:
			// Trailing metadata after a hunk (for example a binary notice).
			currentFile.Lines = append(currentFile.Lines, InfoLine{Content: rawLine})
			inHunk = false
		}
	}

	return files
}

// splitKeepingTerminators splits text into lines that retain their trailing
// newline, so serialization stays byte-identical.
func splitKeepingTerminators(text string) []string {
	if len(text) == 0 {
		return nil
	}

	var lines []string
	for len(text) > 0 {
		newlineIndex := strings.IndexByte(text, '\n')
		if newlineIndex < 0 {
			lines = append(lines, text)
			break
		}
		lines = append(lines, text[:newlineIndex+1])
		text = text[newlineIndex+1:]
	}
	return lines
}

// parseFileHeader extracts the old and new paths from a "diff --git a/X b/Y" line.
func parseFileHeader(headerLine string) (string, string) {
	remainder := strings.TrimPrefix(headerLine, fileHeaderPrefixConstant)

	separatorIndex := strings.LastIndex(remainder, newPathSeparatorConstant)
	if separatorIndex < 0 {
		return "", ""
	}

	oldPath := strings.TrimPrefix(remainder[:separatorIndex], oldPathDiffPrefixConstant)
	newPath := remainder[separatorIndex+len(newPathSeparatorConstant):]
	return oldPath, newPath
}

// parseHunkHeader extracts the starting old and new line numbers from an
// "@@ -oldStart[,oldCount] +newStart[,newCount] @@" marker.
func parseHunkHeader(headerLine string) (int, int) {
	oldStart := 0
	newStart := 0

	for _, headerField := range strings.Fields(headerLine) {
		switch {
		case strings.HasPrefix(headerField, hunkRangeOldPrefixConstant) && len(headerField) > 1:
			oldStart = parseLeadingNumber(headerField[1:])
		case strings.HasPrefix(headerField, hunkRangeNewPrefixConstant) && len(headerField) > 1:
			newStart = parseLeadingNumber(headerField[1:])
		}
	}

	return oldStart, newStart
}

func parseLeadingNumber(rangeField string) int {
	numberText := rangeField
	if separatorIndex := strings.IndexRune(rangeField, hunkRangeCountSeparatorRune); separatorIndex >= 0 {
		numberText = rangeField[:separatorIndex]
	}

	parsedNumber := 0
	for _, digitRune := range numberText {
		if digitRune < '0' || digitRune > '9' {
			return parsedNumber
		}
		parsedNumber = parsedNumber*10 + int(digitRune-'0')
	}
	return parsedNumber
}

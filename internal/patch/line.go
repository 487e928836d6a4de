package patch

const (
	addLineMarkerConstant     = "+"
	deleteLineMarkerConstant  = "-"
	contextLineMarkerConstant = " "
)

// Line is one classified line of a unified diff. The concrete variants form a
// closed set; consumers dispatch with an exhaustive type switch so a new line
// kind cannot be added without updating every consumer.
type Line interface {
	// Text renders the line exactly as it appears in the unified-diff body,
	// including its classification marker and line terminator.
	Text() string

	patchLine()
}

// AddLine is a line introduced on the new side of the diff.
type AddLine struct {
	LineNumber int
	Content    string
}

// DeleteLine is a line removed from the old side of the diff.
type DeleteLine struct {
	LineNumber int
	Content    string
}

// MoveLine is an unchanged context line carried for hunk integrity.
type MoveLine struct {
	OldLineNumber int
	NewLineNumber int
	Content       string
}

// HunkLine is an "@@ … @@" hunk marker.
type HunkLine struct {
	Content string
}

// InfoLine is a file-header or other non-hunk metadata line.
type InfoLine struct {
	Content string
}

// Text renders the added line with its "+" marker.
func (line AddLine) Text() string { return addLineMarkerConstant + line.Content }

// Text renders the deleted line with its "-" marker.
func (line DeleteLine) Text() string { return deleteLineMarkerConstant + line.Content }

// Text renders the context line with its leading space.
func (line MoveLine) Text() string { return contextLineMarkerConstant + line.Content }

// Text renders the hunk marker verbatim.
func (line HunkLine) Text() string { return line.Content }

// Text renders the metadata line verbatim.
func (line InfoLine) Text() string { return line.Content }

func (AddLine) patchLine()    {}
func (DeleteLine) patchLine() {}
func (MoveLine) patchLine()   {}
func (HunkLine) patchLine()   {}
func (InfoLine) patchLine()   {}

package hosting

import "regexp"

// NameFilter matches repository names against a caller-supplied regular
// expression. A nil filter matches everything.
type NameFilter struct {
	expression *regexp.Regexp
}

// NewNameFilter compiles the pattern. Malformed patterns surface the compile
// error instead of silently matching nothing.
func NewNameFilter(pattern string) (*NameFilter, error) {
	compiledExpression, compileError := regexp.Compile(pattern)
	if compileError != nil {
		return nil, compileError
	}
	return &NameFilter{expression: compiledExpression}, nil
}

// Matches reports whether the repository name passes the filter.
func (filter *NameFilter) Matches(repositoryName string) bool {
	if filter == nil || filter.expression == nil {
		return true
	}
	return filter.expression.MatchString(repositoryName)
}

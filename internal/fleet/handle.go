package fleet

// RepositoryHandle describes one repository for the duration of a single
// fleet invocation. Handles are never persisted; each run rebuilds them
// from discovery.
type RepositoryHandle struct {
	Name           string
	Owner          string
	SSHRemoteURL   string
	HTTPSRemoteURL string
	LocalPath      string
}

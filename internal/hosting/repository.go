package hosting

import "fmt"

const (
	// DefaultHost is the hosting platform every remote URL is built against.
	DefaultHost = "github.com"

	sshRemoteURLTemplateConstant   = "git@%s:%s/%s.git"
	httpsRemoteURLTemplateConstant = "https://%s/%s/%s.git"
)

// RemoteRepository is the handle-shaped record the hosting platform supplies:
// a name, an owner, and the two equivalent remote address forms.
type RemoteRepository struct {
	Name     string
	Owner    string
	SSHURL   string
	HTTPSURL string
}

// NewRemoteRepository derives both remote address forms for a repository on
// the default host.
func NewRemoteRepository(owner string, name string) RemoteRepository {
	return RemoteRepository{
		Name:     name,
		Owner:    owner,
		SSHURL:   fmt.Sprintf(sshRemoteURLTemplateConstant, DefaultHost, owner, name),
		HTTPSURL: fmt.Sprintf(httpsRemoteURLTemplateConstant, DefaultHost, owner, name),
	}
}

// LocalRepository is a cloned repository found on disk during discovery.
type LocalRepository struct {
	Name  string
	Owner string
	Path  string
}

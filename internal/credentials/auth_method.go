package credentials

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	transporthttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	transportssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

const (
	httpsRemotePrefixConstant     = "https://"
	httpRemotePrefixConstant      = "http://"
	scpLikeRemotePrefixConstant   = "git@"
	sshRemotePrefixConstant       = "ssh://"
	sshDefaultUserNameConstant    = "git"
	sshDirectoryNameConstant      = ".ssh"
	sshDefaultKeyFileNameConstant = "id_rsa"
	defaultTokenUserNameConstant  = "git"
)

// AuthResolver converts a Provider into go-git transport authentication for a remote URL.
type AuthResolver struct {
	provider   Provider
	sshKeyPath string
}

// NewAuthResolver builds an AuthResolver around the supplied provider and optional SSH key path.
func NewAuthResolver(provider Provider, sshKeyPath string) *AuthResolver {
	return &AuthResolver{provider: provider, sshKeyPath: sshKeyPath}
}

// AuthMethodFor selects an authentication method appropriate for the remote URL.
// Unauthenticated transports (local paths, anonymous HTTPS) yield a nil method.
func (resolver *AuthResolver) AuthMethodFor(remoteURL string) (transport.AuthMethod, error) {
	if resolver == nil || resolver.provider == nil {
		return nil, nil
	}

	switch {
	case strings.HasPrefix(remoteURL, httpsRemotePrefixConstant), strings.HasPrefix(remoteURL, httpRemotePrefixConstant):
		username, secret, credentialError := resolver.provider.AskUserPassword(defaultTokenUserNameConstant)
		if credentialError != nil {
			return nil, credentialError
		}
		return &transporthttp.BasicAuth{Username: username, Password: secret}, nil

	case strings.HasPrefix(remoteURL, scpLikeRemotePrefixConstant), strings.HasPrefix(remoteURL, sshRemotePrefixConstant):
		keyPath, keyPathError := resolver.resolveKeyPath()
		if keyPathError != nil {
			return nil, keyPathError
		}
		passphrase, passphraseError := resolver.provider.AskSSHPassphrase(keyPath)
		if passphraseError != nil {
			return nil, passphraseError
		}
		return transportssh.NewPublicKeysFromFile(sshDefaultUserNameConstant, keyPath, passphrase)

	default:
		return nil, nil
	}
}

func (resolver *AuthResolver) resolveKeyPath() (string, error) {
	if len(resolver.sshKeyPath) > 0 {
		return resolver.sshKeyPath, nil
	}

	homeDirectory, homeError := os.UserHomeDir()
	if homeError != nil {
		return "", homeError
	}

	return filepath.Join(homeDirectory, sshDirectoryNameConstant, sshDefaultKeyFileNameConstant), nil
}

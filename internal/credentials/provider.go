package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	userPasswordPromptTemplateConstant  = "Password for %s: "
	sshPassphrasePromptTemplateConstant = "Passphrase for key %s: "
	promptOutputNewlineConstant         = "\n"
	notATerminalMessageConstant         = "standard input is not a terminal; configure a token instead"
	missingTokenMessageConstant         = "no token configured"
	promptReadErrorTemplateConstant     = "unable to read secret from terminal: %w"
)

// Provider answers credential questions on demand for remote operations.
type Provider interface {
	// AskUserPassword returns the username and secret used for HTTPS transports.
	AskUserPassword(username string) (string, string, error)
	// AskSSHPassphrase returns the passphrase protecting the named private key.
	AskSSHPassphrase(keyPath string) (string, error)
}

// StaticTokenProvider serves a pre-configured token without interaction.
type StaticTokenProvider struct {
	Username      string
	Token         string
	SSHPassphrase string
}

// AskUserPassword returns the configured username and token.
func (provider StaticTokenProvider) AskUserPassword(username string) (string, string, error) {
	if len(provider.Token) == 0 {
		return "", "", errors.New(missingTokenMessageConstant)
	}

	resolvedUsername := provider.Username
	if len(strings.TrimSpace(username)) > 0 {
		resolvedUsername = username
	}

	return resolvedUsername, provider.Token, nil
}

// AskSSHPassphrase returns the configured passphrase, which may be empty for unprotected keys.
func (provider StaticTokenProvider) AskSSHPassphrase(string) (string, error) {
	return provider.SSHPassphrase, nil
}

// TerminalPrompter reads secrets interactively from the controlling terminal.
type TerminalPrompter struct{}

// AskUserPassword prompts for the password belonging to the supplied username.
func (prompter TerminalPrompter) AskUserPassword(username string) (string, string, error) {
	secret, promptError := prompter.readSecret(fmt.Sprintf(userPasswordPromptTemplateConstant, username))
	if promptError != nil {
		return "", "", promptError
	}
	return username, secret, nil
}

// AskSSHPassphrase prompts for the passphrase protecting the named key.
func (prompter TerminalPrompter) AskSSHPassphrase(keyPath string) (string, error) {
	return prompter.readSecret(fmt.Sprintf(sshPassphrasePromptTemplateConstant, keyPath))
}

func (prompter TerminalPrompter) readSecret(promptText string) (string, error) {
	standardInputDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(standardInputDescriptor) {
		return "", errors.New(notATerminalMessageConstant)
	}

	fmt.Fprint(os.Stderr, promptText)
	secretBytes, readError := term.ReadPassword(standardInputDescriptor)
	fmt.Fprint(os.Stderr, promptOutputNewlineConstant)
	if readError != nil {
		return "", fmt.Errorf(promptReadErrorTemplateConstant, readError)
	}

	return string(secretBytes), nil
}

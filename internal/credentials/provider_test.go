package credentials_test

import (
	"testing"

	transporthttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/stretchr/testify/require"

	"github.com/gutops/gut/internal/credentials"
)

const (
	testTokenConstant           = "ghp_exampletoken"
	testUsernameConstant        = "fleet-bot"
	testHTTPSRemoteConstant     = "https://github.com/divvun/lang-en.git"
	testLocalRemoteConstant     = "/srv/mirrors/lang-en"
	testOverrideUsernameConsant = "override-user"
)

func TestStaticTokenProviderAskUserPassword(testInstance *testing.T) {
	provider := credentials.StaticTokenProvider{Username: testUsernameConstant, Token: testTokenConstant}

	username, secret, credentialError := provider.AskUserPassword("")
	require.NoError(testInstance, credentialError)
	require.Equal(testInstance, testUsernameConstant, username)
	require.Equal(testInstance, testTokenConstant, secret)

	overriddenUsername, _, overrideError := provider.AskUserPassword(testOverrideUsernameConsant)
	require.NoError(testInstance, overrideError)
	require.Equal(testInstance, testOverrideUsernameConsant, overriddenUsername)
}

func TestStaticTokenProviderRequiresToken(testInstance *testing.T) {
	provider := credentials.StaticTokenProvider{Username: testUsernameConstant}

	_, _, credentialError := provider.AskUserPassword("")
	require.Error(testInstance, credentialError)
}

func TestAuthResolverSelectsBasicAuthForHTTPS(testInstance *testing.T) {
	resolver := credentials.NewAuthResolver(credentials.StaticTokenProvider{Username: testUsernameConstant, Token: testTokenConstant}, "")

	authMethod, resolveError := resolver.AuthMethodFor(testHTTPSRemoteConstant)
	require.NoError(testInstance, resolveError)

	basicAuth, isBasicAuth := authMethod.(*transporthttp.BasicAuth)
	require.True(testInstance, isBasicAuth)
	require.Equal(testInstance, testTokenConstant, basicAuth.Password)
}

func TestAuthResolverReturnsNilForLocalRemotes(testInstance *testing.T) {
	resolver := credentials.NewAuthResolver(credentials.StaticTokenProvider{Token: testTokenConstant}, "")

	authMethod, resolveError := resolver.AuthMethodFor(testLocalRemoteConstant)
	require.NoError(testInstance, resolveError)
	require.Nil(testInstance, authMethod)
}

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tokens, err := Issue("student_1", "student", "companion", "secret", time.Minute, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	claims, err := Parse(tokens.AccessToken, "secret", "companion")
	require.NoError(t, err)
	assert.Equal(t, "student_1", claims.Subject)
	assert.Equal(t, "student", claims.Role)
}

func TestParseRejectsWrongKey(t *testing.T) {
	tokens, err := Issue("student_1", "student", "companion", "secret", time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(tokens.AccessToken, "other-secret", "companion")
	assert.Error(t, err)
}

func TestParseRejectsIssuerMismatch(t *testing.T) {
	tokens, err := Issue("student_1", "student", "someone-else", "secret", time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(tokens.AccessToken, "secret", "companion")
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	tokens, err := Issue("student_1", "student", "companion", "secret", -time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(tokens.AccessToken, "secret", "companion")
	assert.Error(t, err)
}

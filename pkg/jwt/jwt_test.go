package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/kardex-api/pkg/jwt"
)

const secret = "test-secret"

func TestGenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u-1", "almacenero", "kardex-test", 60)
	require.NoError(t, err)

	userID, role, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, "almacenero", role)
}

func TestParse_Errores(t *testing.T) {
	expired, err := pkgjwt.Generate(secret, "u-1", "admin", "kardex-test", -1)
	require.NoError(t, err)
	_, _, err = pkgjwt.Parse(secret, expired)
	assert.Error(t, err, "expirado")

	valid, err := pkgjwt.Generate(secret, "u-1", "admin", "kardex-test", 60)
	require.NoError(t, err)
	_, _, err = pkgjwt.Parse("otro-secret", valid)
	assert.Error(t, err, "secret incorrecto")

	noUser, err := pkgjwt.Generate(secret, "", "admin", "kardex-test", 60)
	require.NoError(t, err)
	_, _, err = pkgjwt.Parse(secret, noUser)
	assert.Error(t, err, "sin usuario")

	_, err = pkgjwt.Generate("", "u-1", "admin", "kardex-test", 60)
	assert.Error(t, err)
}

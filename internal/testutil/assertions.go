// Package testutil provides fixtures and assertions shared by the loader's tests.
package testutil

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/mosaic-dev/loader/domain/errors"
)

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// RequireSetupStage asserts that err is a setup failure at stage.
func RequireSetupStage(t *testing.T, err error, stage domainerrors.Stage) {
	t.Helper()

	var setupErr *domainerrors.SetupError
	require.True(t, errors.As(err, &setupErr), "expected a setup error, got %v", err)
	assert.Equal(t, stage, setupErr.Stage)
	assert.True(t, domainerrors.IsSetupFatal(err))
}

// RequireGuestCallError asserts that err is a failed call of export.
func RequireGuestCallError(t *testing.T, err error, export string) {
	t.Helper()

	var callErr *domainerrors.GuestCallError
	require.True(t, errors.As(err, &callErr), "expected a guest call error, got %v", err)
	assert.Equal(t, export, callErr.Export)
}

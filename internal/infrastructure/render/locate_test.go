package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryCache_ProbesOnce(t *testing.T) {
	calls := 0
	cache := &binaryCache{}

	path, err := cache.resolve(func() (string, error) {
		calls++
		return "/usr/bin/chromium", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/chromium", path)

	// Second resolve serves the cached result without probing again
	path, err = cache.resolve(func() (string, error) {
		calls++
		return "/somewhere/else", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/chromium", path)
	assert.Equal(t, 1, calls)
}

func TestBinaryCache_CachesFailure(t *testing.T) {
	cache := &binaryCache{}

	_, err := cache.resolve(func() (string, error) {
		return "", NewError(ErrCodeNotFound, "renderer not found", nil)
	})
	require.Error(t, err)

	// A failed probe is cached as well, no second attempt happens
	_, err = cache.resolve(func() (string, error) {
		t.Fatal("probe ran twice")
		return "", nil
	})
	require.Error(t, err)

	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, ErrCodeNotFound, rerr.Code)
	assert.Equal(t, "renderer not found", rerr.Message)
}

func TestProbeLists_NotEmpty(t *testing.T) {
	assert.NotEmpty(t, probePaths)
	assert.NotEmpty(t, probeNames)
}

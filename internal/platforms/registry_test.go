package platforms

import (
	"testing"

	config "github.com/socialsight/socialsight/configs"
	"github.com/socialsight/socialsight/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRegistryGet(t *testing.T) {
	r := NewRegistry(config.Config{})

	for _, name := range models.Platforms {
		adapter, err := r.Get(name)
		assert.NoError(t, err, "platform %s", name)
		assert.Equal(t, name, adapter.Name())
	}

	_, err := r.Get("myspace")
	assert.ErrorContains(t, err, "unsupported platform")
}

func TestRegistryNames(t *testing.T) {
	r := NewRegistry(config.Config{})
	names := r.Names()
	assert.ElementsMatch(t, models.Platforms, names)
}

func TestPlatformError(t *testing.T) {
	err := &PlatformError{Platform: "facebook", Code: "190", Message: "token expired"}
	assert.Contains(t, err.Error(), "facebook")
	assert.Contains(t, err.Error(), "token expired")
}

package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetIDPrefersExplicitInstance(t *testing.T) {
	t.Setenv("DYNO", "web.1")
	t.Setenv("SRS_INSTANCE_ID", "api-7")
	assert.Equal(t, "api-7", GetID())

	t.Setenv("SRS_INSTANCE_ID", "")
	assert.Equal(t, "web.1", GetID())

	t.Setenv("DYNO", "")
	assert.NotEmpty(t, GetID())
}

package synapse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	synapse "github.com/cameronkarthik/synapse-mind-vault-main"
)

func TestParseTags(t *testing.T) {
	cleaned, tags := synapse.ParseTags("planning the #Garden and the #yard2 today")

	assert.Equal(t, []string{"garden", "yard2"}, tags)
	assert.Equal(t, "planning the  and the  today", cleaned)
}

func TestParseTagsNoTags(t *testing.T) {
	cleaned, tags := synapse.ParseTags("an ordinary thought")

	assert.Empty(t, tags)
	assert.Equal(t, "an ordinary thought", cleaned)
}

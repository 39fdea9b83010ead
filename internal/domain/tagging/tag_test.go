package tagging

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTag(t *testing.T) {
	tag, err := NewTag("  sale ")
	require.NoError(t, err)
	assert.Equal(t, "sale", tag.Label)

	_, err = NewTag("   ")
	assert.Error(t, err)
}

func TestNewTaggedItem(t *testing.T) {
	item, err := NewTaggedItem(uuid.New(), ObjectTypeProduct, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, ObjectTypeProduct, item.ObjectType)

	_, err = NewTaggedItem(uuid.New(), "customer", uuid.New())
	assert.Error(t, err)
	_, err = NewTaggedItem(uuid.Nil, ObjectTypeCollection, uuid.New())
	assert.Error(t, err)
}

package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectName(t *testing.T) {
	name, err := ObjectName(42, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "questions/42/"))
	assert.True(t, strings.HasSuffix(name, ".png"))

	name, err = ObjectName(7, " IMAGE/JPEG ")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".jpg"))

	_, err = ObjectName(1, "application/pdf")
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestURL(t *testing.T) {
	s := &ImageStore{bucket: "question-images", publicURL: "https://cdn.example.com"}
	assert.Equal(t, "https://cdn.example.com/question-images/questions/1/x.png", s.URL("questions/1/x.png"))
}

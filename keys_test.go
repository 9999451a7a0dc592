package keyfold_test

import (
	"testing"

	"github.com/keyfold/keyfold"
	"github.com/stretchr/testify/assert"
)

func TestCleanDir(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty is root", "", ""},
		{"bare slash is root", "/", ""},
		{"adds trailing slash", "docs", "docs/"},
		{"keeps trailing slash", "docs/", "docs/"},
		{"strips leading slash", "/docs/sub", "docs/sub/"},
		{"nested", "a/b/c", "a/b/c/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keyfold.CleanDir(tt.in))
		})
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "report.pdf", keyfold.DisplayName("docs/report.pdf", "docs/"))
	assert.Equal(t, "report.pdf", keyfold.DisplayName("report.pdf", ""))

	// The marker at the prefix itself strips to nothing.
	assert.Equal(t, "", keyfold.DisplayName("docs/", "docs/"))
}

func TestFolderName(t *testing.T) {
	assert.Equal(t, "sub", keyfold.FolderName("docs/sub/", "docs/"))
	assert.Equal(t, "docs", keyfold.FolderName("docs/", ""))
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "a.pdf", keyfold.BaseName("docs/a.pdf"))
	assert.Equal(t, "a.pdf", keyfold.BaseName("a.pdf"))
	assert.Equal(t, "sub", keyfold.BaseName("docs/sub/"))
}

func TestIsFolderKey(t *testing.T) {
	assert.True(t, keyfold.IsFolderKey("docs/"))
	assert.False(t, keyfold.IsFolderKey("docs/a.pdf"))
}

func TestEscapeLikePattern(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, keyfold.EscapeLikePattern(`a%b_c\d`))
	assert.Equal(t, `docs/`, keyfold.EscapeLikePattern(`docs/`))
}

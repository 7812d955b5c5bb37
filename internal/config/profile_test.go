package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinProfiles(t *testing.T) {
	assert.Equal(t, []string{"en", "vi"}, BuiltinProfileNames())

	vi, err := BuiltinProfile("vi")
	require.NoError(t, err)
	require.NoError(t, vi.Validate())

	words := vi.CompoundWords()
	assert.Equal(t, 1, words["một"])
	assert.Equal(t, 10, words["mười"])
	assert.Equal(t, 12, words["mười hai"])
	assert.Equal(t, 15, words["mười lăm"])
	assert.Equal(t, 21, words["hai mươi mốt"])
	assert.Equal(t, 34, words["ba mươi tư"])

	en, err := BuiltinProfile("en")
	require.NoError(t, err)
	enWords := en.CompoundWords()
	assert.Equal(t, 21, enWords["twenty-one"])
	assert.Equal(t, 30, enWords["thirty"])
	assert.Equal(t, 19, enWords["nineteen"])

	_, err = BuiltinProfile("klingon")
	assert.Error(t, err)
}

func TestBuiltinProfileReturnsCopy(t *testing.T) {
	a, err := BuiltinProfile("vi")
	require.NoError(t, err)
	a.Keywords[0] = "changed"

	b, err := BuiltinProfile("vi")
	require.NoError(t, err)
	assert.Equal(t, "chương", b.Keywords[0])
}

func TestLoadProfileFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("standalone", func(t *testing.T) {
		path := filepath.Join(dir, "ja.toml")
		content := `
name = "ja"
keywords = ["第"]
script = "japanese"
front_matter_title = "前書き"

[number_words]
"一" = 1
"二" = 2
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		p, err := LoadProfileFile(path)
		require.NoError(t, err)
		assert.Equal(t, "ja", p.Name)
		assert.Equal(t, []string{"第"}, p.Keywords)
		assert.Equal(t, 2, p.NumberWords["二"])
		assert.Equal(t, "japanese", p.Script)
	})

	t.Run("inherits base", func(t *testing.T) {
		path := filepath.Join(dir, "vi-book.toml")
		content := `
base = "vi"
name = "vi-book"
running_headers = ["Tên Sách Khác"]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		p, err := LoadProfileFile(path)
		require.NoError(t, err)
		assert.Equal(t, "vi-book", p.Name)
		assert.Equal(t, []string{"chương"}, p.Keywords)
		assert.Equal(t, []string{"Tên Sách Khác"}, p.RunningHeaders)
		assert.Equal(t, "vietnamese", p.Script)
	})

	t.Run("missing keywords", func(t *testing.T) {
		path := filepath.Join(dir, "broken.toml")
		require.NoError(t, os.WriteFile(path, []byte(`name = "broken"`), 0o644))
		_, err := LoadProfileFile(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadProfileFile(filepath.Join(dir, "nope.toml"))
		assert.Error(t, err)
	})
}

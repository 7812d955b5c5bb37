package emitter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadChapterFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	chapters := []Chapter{
		{Index: 0, Title: "Chương 1 — Tía nuôi tôi", Body: "Đoạn một.\n\nĐoạn hai.", SourceStart: 0, SourceEnd: 120},
		{Index: 1, Title: "Chương 2", Body: "Đoạn ba."},
	}
	paths, err := New(Options{OutputDir: dir, FrontMatter: true}, nil).Emit(context.Background(), chapters)
	require.NoError(t, err)

	cf, err := ReadChapterFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, "Chương 1 — Tía nuôi tôi", cf.Title)
	assert.Equal(t, "Đoạn một.\n\nĐoạn hai.", cf.Body)
	assert.Equal(t, 120, cf.Meta["source_end"])
	assert.Equal(t, "Chương 1 — Tía nuôi tôi", cf.Meta["title"])
}

func TestReadChapterFileWithoutHeading(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chapter-00.md")
	require.NoError(t, os.WriteFile(path, []byte("Chỉ có nội dung.\n"), 0o644))

	cf, err := ReadChapterFile(path)
	require.NoError(t, err)
	assert.Empty(t, cf.Title)
	assert.Equal(t, "Chỉ có nội dung.", cf.Body)
	assert.Empty(t, cf.Meta)
}

func TestReadChapterFilePlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chapter-01.txt")
	require.NoError(t, os.WriteFile(path, []byte("# 第一章\n\n本文です。\n"), 0o644))

	cf, err := ReadChapterFile(path)
	require.NoError(t, err)
	assert.Equal(t, "第一章", cf.Title)
	assert.Equal(t, "本文です。", cf.Body)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	_, err := New(Options{OutputDir: dir}, nil).Emit(context.Background(), sampleChapters(3))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# readme"), 0o644))

	files, err := LoadDir(dir, ".md")
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "Lời mở đầu", files[0].Title)
	assert.Equal(t, "Chương 2", files[2].Title)
	assert.Equal(t, "Nội dung chương.", files[1].Body)
}

func TestLoadDirMissing(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "missing"), ".md")
	assert.Error(t, err)
}

package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestGbkRoundTrip(t *testing.T) {
	gbk, err := simplifiedchinese.GBK.NewEncoder().String("里程桩")
	require.NoError(t, err)
	assert.NotEqual(t, "里程桩", gbk)
	assert.Equal(t, "里程桩", ToUtf8(gbk))
	assert.Equal(t, "plain", ToUtf8("plain"))
	d, err := GbkStrToUtf8(gbk)
	require.NoError(t, err)
	assert.Equal(t, "里程桩", d)
}

func TestGetShpEncoding(t *testing.T) {
	dir := t.TempDir()
	shp := filepath.Join(dir, "events.shp")
	_, known := GetShpEncoding(shp)
	assert.False(t, known)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "events.cpg"), []byte("utf-8\n"), 0o644))
	utf8, known := GetShpEncoding(shp)
	assert.True(t, known)
	assert.True(t, utf8)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "events.cpg"), []byte("936"), 0o644))
	utf8, known = GetShpEncoding(shp)
	assert.True(t, known)
	assert.False(t, utf8)

	assert.Equal(t, "events", GetFilenameWithoutExt(shp))
}

func TestGetUniqSubDir(t *testing.T) {
	a, err := GetUniqSubDir(t.TempDir())
	require.NoError(t, err)
	assert.DirExists(t, a)
}

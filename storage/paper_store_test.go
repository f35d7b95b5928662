package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaperStore_PutGetHas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "papers.db")
	s, err := OpenPaperStore(path)
	require.NoError(t, err)

	ok, err := s.Has("2401.00001v1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Get("2401.00001v1")
	assert.ErrorIs(t, err, ErrNotFound)

	rec := &PaperRecord{ID: "2401.00001v1", Title: "A paper", PDFURL: "http://arxiv.org/pdf/2401.00001v1", Chars: 42, StopKeyword: "References"}
	require.NoError(t, s.Put(rec))
	assert.False(t, rec.ProcessedAt.IsZero())

	ok, err = s.Has("2401.00001v1")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, s.Close())

	// survives reopen
	s, err = OpenPaperStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get("2401.00001v1")
	require.NoError(t, err)
	assert.Equal(t, "A paper", got.Title)
	assert.Equal(t, 42, got.Chars)
	assert.Equal(t, "References", got.StopKeyword)
	assert.True(t, rec.ProcessedAt.Equal(got.ProcessedAt))
}

func TestPaperStore_PutRequiresID(t *testing.T) {
	s, err := OpenPaperStore(filepath.Join(t.TempDir(), "papers.db"))
	require.NoError(t, err)
	defer s.Close()

	assert.Error(t, s.Put(&PaperRecord{Title: "no id"}))
}

package review

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func writeCard(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadDir_MissingDirectory(t *testing.T) {
	_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, ErrDirNotFound)
}

func TestLoadDir_EmptyDirectory(t *testing.T) {
	files, err := LoadDir(t.TempDir())
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestLoadDir_SkipsNonJSONFiles(t *testing.T) {
	dir := t.TempDir()
	writeCard(t, dir, "card1.json", `{"question":"Q1","correctAnswer":"A1","aiAnswer":"B1"}`)
	writeCard(t, dir, "notes.txt", "not a card")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	files, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Equal(t, "card1.json", files[0].Name)
	require.Equal(t, "Q1", files[0].Card.Question)
}

func TestLoadDir_SortedByNameAndBadFilesKept(t *testing.T) {
	dir := t.TempDir()
	writeCard(t, dir, "b.json", `{"question":"QB","correctAnswer":"AB","aiAnswer":"BB"}`)
	writeCard(t, dir, "a.json", `{"question":"QA","correctAnswer":"AA","aiAnswer":"BA"}`)
	writeCard(t, dir, "c.json", `{broken`)

	files, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	require.Equal(t, "a.json", files[0].Name)
	require.Equal(t, "b.json", files[1].Name)

	// a bad file keeps its place with empty fields and an error note
	require.Equal(t, "c.json", files[2].Name)
	require.Error(t, files[2].Err)
	require.Equal(t, Card{}, files[2].Card)
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func testFiles() []File {
	return []File{
		{Name: "a.json", Card: Card{Question: "QA", CorrectAnswer: "AA", AIAnswer: "BA"}},
		{Name: "b.json", Card: Card{Question: "QB", CorrectAnswer: "AB", AIAnswer: "BB"}},
	}
}

func TestPager_NextAndPrevClamp(t *testing.T) {
	m := NewModel(testFiles())

	next, _ := m.Update(keyPress('n'))
	m = next.(Model)
	require.Equal(t, 1, m.Index)

	// clamped at the last file
	next, _ = m.Update(keyPress('n'))
	m = next.(Model)
	require.Equal(t, 1, m.Index)

	next, _ = m.Update(keyPress('p'))
	m = next.(Model)
	require.Equal(t, 0, m.Index)

	// clamped at the first file
	next, _ = m.Update(keyPress('p'))
	m = next.(Model)
	require.Equal(t, 0, m.Index)
}

func TestPager_QuitReturnsQuitCmd(t *testing.T) {
	m := NewModel(testFiles())
	_, cmd := m.Update(keyPress('q'))
	require.NotNil(t, cmd)
	require.Equal(t, tea.Quit(), cmd())
}

func TestPager_ViewShowsCardFields(t *testing.T) {
	m := NewModel(testFiles())
	view := m.View()
	require.Contains(t, view, "[1/2] a.json")
	require.Contains(t, view, "QA")
	require.Contains(t, view, "AA")
	require.Contains(t, view, "BA")

	next, _ := m.Update(keyPress('n'))
	view = next.(Model).View()
	require.Contains(t, view, "[2/2] b.json")
	require.Contains(t, view, "QB")
}

func TestPager_ViewShowsLoadError(t *testing.T) {
	m := NewModel([]File{{Name: "bad.json", Err: os.ErrPermission}})
	view := m.View()
	require.Contains(t, view, "Failed to load bad.json")
}

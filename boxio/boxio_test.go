package boxio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swdee/go-boxcluster"
)

func TestDecode(t *testing.T) {

	src := "0.91 10 20 30 40\n0.5\t11 21  31 41\n"

	parsed, err := Decode(strings.NewReader(src), false)
	require.NoError(t, err)

	assert.Equal(t, []boxcluster.Detection{
		{Confidence: 0.91, X: 10, Y: 20, Width: 30, Height: 40},
		{Confidence: 0.5, X: 11, Y: 21, Width: 31, Height: 41},
	}, parsed.Detections)
	assert.Empty(t, parsed.Malformed)
}

func TestDecodeLenientZeroesMalformedLines(t *testing.T) {

	src := strings.Join([]string{
		"0.9 1 2 3 4",
		"garbage",
		"0.8 5 6 7",
		"0.7 5 six 7 8",
		"-0.1 1 1 1 1",
		"0.6 9 10 11 12",
		"",
		"",
	}, "\n")

	parsed, err := Decode(strings.NewReader(src), false)
	require.NoError(t, err)

	require.Len(t, parsed.Detections, 7)
	assert.Equal(t, boxcluster.Detection{Confidence: 0.9, X: 1, Y: 2, Width: 3, Height: 4}, parsed.Detections[0])

	for _, i := range []int{1, 2, 3, 4, 6} {
		assert.Equal(t, boxcluster.Detection{}, parsed.Detections[i], "line %d", i+1)
	}

	// a bad line does not spoil the ones after it
	assert.Equal(t, boxcluster.Detection{Confidence: 0.6, X: 9, Y: 10, Width: 11, Height: 12}, parsed.Detections[5])
	assert.Equal(t, []int{2, 3, 4, 5, 7}, parsed.Malformed)
}

func TestDecodeStrict(t *testing.T) {

	_, err := Decode(strings.NewReader("0.9 1 2 3 4\n0.8 1 2 x 4\n"), true)
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, "0.8 1 2 x 4", perr.Text)
}

func TestEncode(t *testing.T) {

	var buf bytes.Buffer

	err := Encode(&buf, []boxcluster.Detection{
		{Confidence: 0.9, X: 10, Y: 20, Width: 30, Height: 40},
		{},
		{Confidence: 0.4, X: -5, Y: 7, Width: 1, Height: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, "10 20 30 40\n0 0 0 0\n-5 7 1 2\n", buf.String())
}

func newRepository(t *testing.T) *Repository {

	root := t.TempDir()

	repo := &Repository{
		InputDir:  filepath.Join(root, "input"),
		ImageDir:  filepath.Join(root, "img"),
		OutputDir: filepath.Join(root, "solutions"),
	}

	require.NoError(t, os.MkdirAll(repo.InputDir, 0o755))

	return repo
}

func TestRepositoryRoundTrip(t *testing.T) {

	repo := newRepository(t)

	require.NoError(t, os.WriteFile(repo.InputPath("0"), []byte("0.9 1 2 3 4\n0.3 5 6 7 8\n"), 0o644))

	// creating the output directory twice is not an error
	require.NoError(t, repo.Prepare())
	require.NoError(t, repo.Prepare())

	parsed, err := repo.Load("0")
	require.NoError(t, err)
	require.Len(t, parsed.Detections, 2)

	require.NoError(t, repo.Store("0", parsed.Detections[:1]))

	out, err := os.ReadFile(repo.OutputPath("0"))
	require.NoError(t, err)
	assert.Equal(t, "1 2 3 4\n", string(out))

	assert.Equal(t, filepath.Join(repo.ImageDir, "0.png"), repo.ImagePath("0"))
	assert.Equal(t, filepath.Join(repo.OutputDir, "0.png"), repo.AnnotatedPath("0"))

	repo.ImageExt = ".jpg"
	assert.Equal(t, filepath.Join(repo.ImageDir, "0.jpg"), repo.ImagePath("0"))
}

func TestRepositoryLoadMissing(t *testing.T) {

	repo := newRepository(t)

	_, err := repo.Load("404")

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "open", ioErr.Op)
	assert.True(t, os.IsNotExist(errors.Cause(ioErr.Err)))
}

func TestRepositoryLoadStrict(t *testing.T) {

	repo := newRepository(t)
	repo.Strict = true

	require.NoError(t, os.WriteFile(repo.InputPath("1"), []byte("0.9 1 2 3 4\n\n"), 0o644))

	_, err := repo.Load("1")

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
}

func TestRepositoryStoreUnwritable(t *testing.T) {

	repo := newRepository(t)
	repo.OutputDir = filepath.Join(repo.InputDir, "missing", "dir")

	err := repo.Store("0", []boxcluster.Detection{{}})

	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "create", ioErr.Op)
}

func TestRepositoryUnits(t *testing.T) {

	repo := newRepository(t)

	units, err := repo.Units(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2"}, units)

	for _, name := range []string{"10", "2", "b", "0", "a"} {
		require.NoError(t, os.WriteFile(repo.InputPath(name), nil, 0o644))
	}

	require.NoError(t, os.Mkdir(filepath.Join(repo.InputDir, "nested"), 0o755))

	units, err = repo.Units(0)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "2", "10", "a", "b"}, units)
}

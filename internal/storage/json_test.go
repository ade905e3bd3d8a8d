package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iltransform/internal/config"
	"iltransform/internal/domain"
)

func TestJSONStorage_SaveLoad(t *testing.T) {
	cfg := config.New()
	cfg.TestPath = t.TempDir()
	store := NewJSONStorage(cfg)

	with := domain.NewProject("/t/a/a.ilproj", "a/a.ilproj")
	with.Source.TestClassSourceFile = "/t/a/a.il"
	with.Source.TestClassName = "Ns.A"
	with.Source.TestClassNamespace = "Ns"
	with.Source.FirstMainMethodLine = 4
	with.Source.MainMethodName = "Main"
	with.IsolationReasons = []string{"Exit"}
	with.DeduplicatedNamespaceName = "Ns_a"
	without := domain.NewProject("/t/b/b.csproj", "b/b.csproj")

	snapshot := NewSnapshot(cfg.TestPath, []*domain.Project{with, without}, 1, 1500*time.Millisecond, 4)
	assert.Equal(t, 2, snapshot.Meta.TotalProjects)
	assert.Equal(t, 1, snapshot.Meta.WithEntryPoint)
	assert.InDelta(t, 1.5, snapshot.Meta.DurationSeconds, 1e-9)

	require.NoError(t, store.Save(snapshot))
	assert.FileExists(t, store.Path())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, snapshot.Meta, loaded.Meta)
	require.Len(t, loaded.Projects, 2)
	assert.Equal(t, with, loaded.Projects[0])
	assert.Equal(t, domain.IL, loaded.Projects[0].Dialect())
	assert.False(t, loaded.Projects[1].Source.HasEntryPoint())
	assert.Equal(t, domain.NoLine, loaded.Projects[1].Source.TestClassLine)
}

func TestJSONStorage_LoadErrors(t *testing.T) {
	cfg := config.New()
	cfg.TestPath = t.TempDir()
	store := NewJSONStorage(cfg)

	_, err := store.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read snapshot file")

	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	require.NoError(t, os.WriteFile(store.Path(), []byte("{"), 0o644))
	_, err = store.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse snapshot")
}

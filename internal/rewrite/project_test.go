package rewrite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iltransform/internal/config"
	"iltransform/internal/diag"
	"iltransform/internal/discovery"
	"iltransform/internal/domain"
	"iltransform/internal/textio"
)

const exeDescriptor = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <OutputType>Exe</OutputType>
  </PropertyGroup>
  <PropertyGroup>
    <CLRTestPriority>1</CLRTestPriority>
  </PropertyGroup>
  <ItemGroup>
    <Compile Include="old.cs" />
  </ItemGroup>
</Project>
`

func descriptorProject(t *testing.T, content string) *domain.Project {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.csproj")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p := domain.NewProject(path, "test.csproj")
	p.Source.TestClassSourceFile = filepath.Join(dir, "old.cs")
	p.Source.FirstMainMethodLine = 3
	p.Source.MainMethodName = "Main"
	return p
}

func TestRewriteProject(t *testing.T) {
	tests := []struct {
		name      string
		opts      config.RewriteOptions
		isolation []string
		rename    bool
		want      string
	}{
		{
			name:      "isolation, output type and include",
			opts:      config.RewriteOptions{AddProcessIsolation: true, AddFactAttributes: true},
			isolation: []string{discovery.ReasonExit},
			rename:    true,
			want: `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <RequiresProcessIsolation>true</RequiresProcessIsolation>
  </PropertyGroup>
  <PropertyGroup>
    <CLRTestPriority>1</CLRTestPriority>
  </PropertyGroup>
  <ItemGroup>
    <Compile Include="new.cs" />
  </ItemGroup>
</Project>
`,
		},
		{
			name: "emptied property group is dropped",
			opts: config.RewriteOptions{AddProcessIsolation: true, AddFactAttributes: true},
			want: `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <CLRTestPriority>1</CLRTestPriority>
  </PropertyGroup>
  <ItemGroup>
    <Compile Include="old.cs" />
  </ItemGroup>
</Project>
`,
		},
		{
			name:      "isolation only",
			opts:      config.RewriteOptions{AddProcessIsolation: true},
			isolation: []string{discovery.ReasonPreCommands},
			want: `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <RequiresProcessIsolation>true</RequiresProcessIsolation>
    <OutputType>Exe</OutputType>
  </PropertyGroup>
  <PropertyGroup>
    <CLRTestPriority>1</CLRTestPriority>
  </PropertyGroup>
  <ItemGroup>
    <Compile Include="old.cs" />
  </ItemGroup>
</Project>
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := descriptorProject(t, exeDescriptor)
			p.IsolationReasons = tt.isolation

			log := diag.Discard()
			ctx := NewContext(false, nil, log)
			if tt.rename {
				target := filepath.Join(p.Dir(), "new.cs")
				require.NoError(t, os.WriteFile(p.Source.TestClassSourceFile, nil, 0o644))
				require.NoError(t, ctx.Move(p.Source.TestClassSourceFile, target))
				p.NewTestClassSourceFile = target
			}
			r := New(tt.opts, ctx, log)
			changed, err := r.RewriteProject(p)
			require.NoError(t, err)
			assert.True(t, changed)
			assert.Equal(t, tt.want, readFile(t, p.AbsolutePath))

			// A second pass over the rewritten descriptor finds nothing to do
			r = New(tt.opts, NewContext(false, nil, log), log)
			changed, err = r.RewriteProject(p)
			require.NoError(t, err)
			assert.False(t, changed)
		})
	}
}

func TestAddIsolationMarker(t *testing.T) {
	t.Run("empty group gets nested indent", func(t *testing.T) {
		f := textio.Parse("a.csproj", "<Project>\n    <PropertyGroup>\n    </PropertyGroup>\n</Project>\n")
		added, ok := addIsolationMarker(f)
		assert.True(t, added)
		assert.True(t, ok)
		assert.Equal(t, "      "+isolationProperty, f.Lines[2])
	})

	t.Run("no property group", func(t *testing.T) {
		f := textio.Parse("a.csproj", "<Project>\n  <ItemGroup />\n</Project>\n")
		added, ok := addIsolationMarker(f)
		assert.False(t, added)
		assert.False(t, ok)
	})

	t.Run("already present", func(t *testing.T) {
		f := textio.Parse("a.csproj", "<Project>\n  <PropertyGroup>\n    <RequiresProcessIsolation>true</RequiresProcessIsolation>\n  </PropertyGroup>\n</Project>\n")
		added, ok := addIsolationMarker(f)
		assert.False(t, added)
		assert.True(t, ok)
	})
}

func TestRenameCompileInclude(t *testing.T) {
	f := textio.Parse("a.csproj", `    <Compile Include="..\shared\old.cs;other.cs" />`+"\n"+`    <Compile Include="notold.cs" />`+"\n")
	assert.True(t, renameCompileInclude(f, "/x/shared/old.cs", "/x/shared/new.cs"))
	assert.Equal(t, `    <Compile Include="..\shared\new.cs;other.cs" />`, f.Lines[0])
	assert.Equal(t, `    <Compile Include="notold.cs" />`, f.Lines[1])
}

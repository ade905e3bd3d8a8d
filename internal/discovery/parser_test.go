package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iltransform/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

const sampleDescriptor = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup>
    <OutputType>Exe</OutputType>
    <DebugType>Full</DebugType>
    <Optimize>True</Optimize>
    <Helper>$(MSBuildProjectName)_helper</Helper>
  </PropertyGroup>
  <PropertyGroup>
    <CLRTestExecutionArguments>-arg</CLRTestExecutionArguments>
  </PropertyGroup>
  <ItemGroup>
    <Compile Include="$(MSBuildProjectName).cs" />
    <Compile Include="shared\**\*.cs" />
    <ProjectReference Include="..\common\common.csproj" />
    <CLRTestEnvironmentVariable Include="DOTNET_JitStress" Value="1" />
  </ItemGroup>
</Project>
`

func TestParser_Parse(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "JIT", "b1")
	descriptor := filepath.Join(dir, "b1.csproj")
	writeFile(t, descriptor, sampleDescriptor)
	writeFile(t, filepath.Join(dir, "b1.cs"), "class b1 { }")
	writeFile(t, filepath.Join(dir, "shared", "a.cs"), "")
	writeFile(t, filepath.Join(dir, "shared", "deep", "b.cs"), "")
	writeFile(t, filepath.Join(dir, "shared", "deep", "c.txt"), "")

	project, err := NewParser(root).Parse(descriptor)
	require.NoError(t, err)

	assert.Equal(t, "JIT/b1/b1.csproj", project.RelativePath)
	assert.Equal(t, "b1", project.Name())
	assert.Equal(t, []string{
		filepath.Join(dir, "b1.cs"),
		filepath.Join(dir, "shared", "a.cs"),
		filepath.Join(dir, "shared", "deep", "b.cs"),
	}, project.CompileFiles)
	assert.Equal(t, []string{filepath.Join(root, "JIT", "common", "common.csproj")}, project.ProjectReferences)
	assert.Equal(t, "b1_helper", project.Property("Helper"))
	assert.True(t, project.HasItemGroup("Compile"))
	assert.True(t, project.HasItemGroup("CLRTestEnvironmentVariable"))
	assert.Equal(t, domain.DebugOptimize{Debug: "full", Optimize: "true"}, project.DebugOptimize)
	assert.Equal(t, "exe", project.OutputType)
	assert.Equal(t, []string{ReasonExecutionArguments, ReasonEnvironmentVariables}, project.IsolationReasons)
}

func TestParser_ParseDefaults(t *testing.T) {
	root := t.TempDir()
	descriptor := filepath.Join(root, "b2.ilproj")
	writeFile(t, descriptor, "<Project>\n  <PropertyGroup>\n    <CLRTestPriority>1</CLRTestPriority>\n  </PropertyGroup>\n</Project>\n")
	writeFile(t, filepath.Join(root, "b2.il"), ".assembly b2 {}")

	project, err := NewParser(root).Parse(descriptor)
	require.NoError(t, err)

	assert.Equal(t, domain.IL, project.Dialect())
	assert.Equal(t, []string{filepath.Join(root, "b2.il")}, project.CompileFiles)
	assert.Equal(t, "library", project.OutputType)
	assert.Equal(t, domain.DebugOptimize{}, project.DebugOptimize)
	assert.Empty(t, project.IsolationReasons)
}

func TestParser_ParseByteOrderMark(t *testing.T) {
	root := t.TempDir()
	descriptor := filepath.Join(root, "b3.csproj")
	writeFile(t, descriptor, "\ufeff<Project>\n  <PropertyGroup>\n    <OutputType>Exe</OutputType>\n  </PropertyGroup>\n</Project>\n")

	project, err := NewParser(root).Parse(descriptor)
	require.NoError(t, err)
	assert.Equal(t, "exe", project.OutputType)
}

func TestParser_ParseMalformed(t *testing.T) {
	root := t.TempDir()
	descriptor := filepath.Join(root, "bad.csproj")
	writeFile(t, descriptor, "<Project><PropertyGroup></Project>")

	_, err := NewParser(root).Parse(descriptor)
	assert.ErrorContains(t, err, "malformed descriptor")

	_, err = NewParser(root).Parse(filepath.Join(root, "missing.csproj"))
	assert.Error(t, err)
}

func TestExpandMacros(t *testing.T) {
	builtin := map[string]string{"MSBuildProjectName": "b1"}
	props := map[string]string{"Suffix": "_x"}

	assert.Equal(t, "b1_x.cs", expandMacros("$(MSBuildProjectName)$(Suffix).cs", builtin, props))
	assert.Equal(t, "plain.cs", expandMacros("plain.cs", builtin, props))
	assert.Equal(t, ".cs", expandMacros("$(Unknown).cs", builtin, props))
}

func TestIsolationReasons(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(p *domain.Project)
		expect []string
	}{
		{
			name:   "none",
			setup:  func(p *domain.Project) {},
			expect: nil,
		},
		{
			name: "pre commands",
			setup: func(p *domain.Project) {
				p.Properties["CLRTestBashPreCommands"] = "export X=1"
			},
			expect: []string{ReasonPreCommands},
		},
		{
			name: "incompatibility is case insensitive",
			setup: func(p *domain.Project) {
				p.Properties["GCStressIncompatible"] = "True"
			},
			expect: []string{ReasonIncompatibility},
		},
		{
			name: "false incompatibility is ignored",
			setup: func(p *domain.Project) {
				p.Properties["UnloadabilityIncompatible"] = "false"
			},
			expect: nil,
		},
		{
			name: "exit call",
			setup: func(p *domain.Project) {
				p.Source.HasExit = true
			},
			expect: []string{ReasonExit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := domain.NewProject("/t/a.csproj", "a.csproj")
			tt.setup(p)
			assert.Equal(t, tt.expect, IsolationReasons(p))
		})
	}
}

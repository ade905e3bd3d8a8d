package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iltransform/internal/diag"
	"iltransform/internal/domain"
)

const namespacedIL = `.assembly extern mscorlib {}
.assembly Foo {}
.namespace 'Bar'
{
  .class public auto ansi Foo
         extends [mscorlib]System.Object
  {
    .method public hidebysig static void Helper() cil managed
    {
      ret
    }
    .method private hidebysig static int32 Main(string[] args) cil managed
    {
      .entrypoint
      ldc.i4 100
      ret
    }
  }
}`

func TestAnalyzeIL_EntryPointInNamespacedClass(t *testing.T) {
	info := domain.NewSourceInfo()
	require.NoError(t, AnalyzeIL("Foo.il", lines(namespacedIL), &info))

	assert.Equal(t, "Bar.Foo", info.TestClassName)
	assert.Equal(t, "Bar", info.TestClassNamespace)
	assert.True(t, info.HasFactAttribute)
	assert.False(t, info.HasExit)
	assert.Equal(t, "Main", info.MainMethodName)
	assert.Equal(t, domain.Line(11), info.FirstMainMethodLine)
	assert.Equal(t, domain.Line(11), info.MainTokenMethodLine)
	assert.Equal(t, domain.Line(11), info.LastMainMethodLine)
	assert.Equal(t, domain.Line(4), info.TestClassLine)
	assert.Equal(t, domain.Line(2), info.NamespaceLine)
	assert.Equal(t, []string{"[mscorlib]System.Object"}, info.TestClassBases)
}

func TestAnalyzeIL_MultiLineSignature(t *testing.T) {
	src := lines(`
.method public static int32 modopt([mscorlib]System.Runtime.CompilerServices.CallConvCdecl)
        'main'(
    string[] args) cil managed
{
  .entrypoint
  // call void [System.Runtime]System.Environment::Exit(int32)
  call void [System.Runtime]System.Environment::Exit(int32)
  ret
}`)
	info := domain.NewSourceInfo()
	require.NoError(t, AnalyzeIL("global.il", src, &info))

	assert.Equal(t, "main", info.MainMethodName)
	assert.Equal(t, domain.Line(0), info.FirstMainMethodLine)
	assert.Equal(t, domain.Line(1), info.MainTokenMethodLine)
	assert.Equal(t, domain.Line(2), info.LastMainMethodLine)
	assert.True(t, info.HasExit)
	assert.False(t, info.TestClassLine.Found(), "global method has no enclosing type")
	assert.Empty(t, info.TestClassName)
}

func TestAnalyzeIL_Failures(t *testing.T) {
	tests := []struct {
		name string
		src  string
		err  error
	}{
		{
			name: "no entry point",
			src:  ".class public Foo\n{\n  .method public static void Main() cil managed\n  {\n    ret\n  }\n}",
			err:  ErrNoEntryPoint,
		},
		{
			name: "two entry points",
			src:  ".method static void A() {\n .entrypoint\n ret\n}\n.method static void B() {\n .entrypoint\n ret\n}",
			err:  ErrMultipleEntryPoints,
		},
		{
			name: "instance method",
			src:  ".method public hidebysig instance void Main() cil managed\n{\n  .entrypoint\n  ret\n}",
			err:  ErrSignatureMismatch,
		},
		{
			name: "entry point in comment only",
			src:  ".method static void Main() {\n // .entrypoint\n ret\n}",
			err:  ErrNoEntryPoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := domain.NewSourceInfo()
			err := AnalyzeIL("x.il", lines(tt.src), &info)
			assert.ErrorIs(t, err, tt.err)
			assert.False(t, info.FirstMainMethodLine.Found())
			assert.Empty(t, info.TestClassName)
		})
	}
}

func TestAnalyzeIL_NestedTypeIsNotAnAnchor(t *testing.T) {
	src := lines(`
.class public auto ansi Outer
{
  .class nested public auto ansi Inner
  {
    .method public static int32 Main() cil managed
    {
      .entrypoint
      ldc.i4.s 100
      ret
    }
  }
}`)
	info := domain.NewSourceInfo()
	require.NoError(t, AnalyzeIL("nested.il", src, &info))

	assert.Equal(t, "Main", info.MainMethodName)
	assert.Empty(t, info.TestClassName)
	assert.False(t, info.TestClassLine.Found())
}

func TestAnalyzeIL_DottedClassNameAndBlockComments(t *testing.T) {
	src := lines(`
/* .class public Decoy
{ */
.class /* sealed */ public sealed beforefieldinit My.Tests.Runner extends [mscorlib]System.Object implements IFoo, IBar {
  .method public static void Main() cil managed {
    .entrypoint
    ret
  }
}`)
	info := domain.NewSourceInfo()
	require.NoError(t, AnalyzeIL("dotted.il", src, &info))

	assert.Equal(t, "My.Tests.Runner", info.TestClassName)
	assert.Equal(t, "My.Tests", info.TestClassNamespace)
	assert.Equal(t, "Runner", info.BareClassName())
	assert.Equal(t, []string{"[mscorlib]System.Object", "IFoo", "IBar"}, info.TestClassBases)
	assert.Equal(t, domain.Line(2), info.TestClassLine)
}

func TestAnalyzer_AnalyzeFiles(t *testing.T) {
	dir := t.TempDir()
	helper := filepath.Join(dir, "Helper.cs")
	entry := filepath.Join(dir, "Foo.il")
	second := filepath.Join(dir, "Second.cs")
	require.NoError(t, os.WriteFile(helper, []byte("class Helper { }\n"), 0644))
	require.NoError(t, os.WriteFile(entry, []byte(namespacedIL), 0644))
	require.NoError(t, os.WriteFile(second, []byte("class Second\n{\n    static int Main()\n    {\n        return 100;\n    }\n}\n"), 0644))

	log := diag.Discard()
	a := NewAnalyzer(log)
	info := a.AnalyzeFiles([]string{helper, entry, second, filepath.Join(dir, "data.txt")})

	assert.Equal(t, entry, info.TestClassSourceFile)
	assert.Equal(t, "Bar.Foo", info.TestClassName)
	assert.Equal(t, 1, log.Warnings(), "second entry point is reported")

	missing := a.AnalyzeFiles([]string{filepath.Join(dir, "Missing.cs")})
	assert.False(t, missing.HasEntryPoint())
	assert.Equal(t, 2, log.Warnings())
}

package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"iltransform/internal/diag"
)

type renameCase struct {
	line string
	want string
	warn bool
}

func runRenameCases(t *testing.T, path string, mode Mode, from, to string, cases []renameCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			log := diag.Discard()
			got, changed := NewClassifier(path, log).Rename(tc.line, 0, mode, from, to)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want != tc.line, changed)
			if tc.warn {
				assert.Equal(t, 1, log.Warnings(), "ambiguous site is reported")
			} else {
				assert.Zero(t, log.Warnings())
			}
		})
	}
}

func TestClassifier_CSharpTypeUse(t *testing.T) {
	runRenameCases(t, "Program.cs", TypeUse, "Foo", "Foo_ns.Foo", []renameCase{
		{line: "    private static int Foo(string[] args)", want: "    private static int Foo(string[] args)"},
		{line: "Foo x = new Foo();", want: "Foo_ns.Foo x = new Foo_ns.Foo();"},
		{line: "class Foo : Base", want: "class Foo : Base"},
		{line: "var t = typeof(Foo);", want: "var t = typeof(Foo_ns.Foo);"},
		{line: "Foo.Run();", want: "Foo.Run();"},
		{line: "Foo_ns.Foo y;", want: "Foo_ns.Foo y;"},
		{line: "// Foo x = new Foo();", want: "// Foo x = new Foo();"},
		{line: `Console.WriteLine("Foo");`, want: `Console.WriteLine("Foo");`},
		{line: "FooBar z = null;", want: "FooBar z = null;"},
		{line: "return Foo;", want: "return Foo;", warn: true},
	})
}

func TestClassifier_ILTypeUse(t *testing.T) {
	runRenameCases(t, "test.il", TypeUse, "Foo", "Ns.Foo", []renameCase{
		{line: ".class public auto ansi Foo", want: ".class public auto ansi Foo"},
		{line: "  newobj instance void Foo::.ctor()", want: "  newobj instance void Ns.Foo::.ctor()"},
		{line: "  call void class Foo::Helper()", want: "  call void class Ns.Foo::Helper()"},
		{line: "  .locals init (valuetype Foo V_0)", want: "  .locals init (valuetype Ns.Foo V_0)"},
		{line: "       extends Foo", want: "       extends Ns.Foo"},
		{line: "       implements IBar, Foo", want: "       implements IBar, Ns.Foo"},
		{line: "  box Foo", want: "  box Ns.Foo"},
		{line: "  castclass Foo/Inner", want: "  castclass Ns.Foo/Inner"},
		{line: "  call void [other]Foo::M()", want: "  call void [other]Foo::M()"},
		{line: `  ldstr "Foo"`, want: `  ldstr "Foo"`},
		{line: "  .field public int32 Foo", want: "  .field public int32 Foo"},
	})
}

func TestClassifier_NamespaceUse(t *testing.T) {
	runRenameCases(t, "Program.cs", NamespaceUse, "Bar", "Baz", []renameCase{
		{line: "namespace Bar", want: "namespace Baz"},
		{line: "using Bar;", want: "using Baz;"},
		{line: "Bar.Foo x = new Bar.Foo();", want: "Baz.Foo x = new Baz.Foo();"},
		{line: "class Bar { }", want: "class Bar { }"},
		{line: "Other.Bar.Foo y;", want: "Other.Bar.Foo y;"},
		{line: "int Bar = 1;", want: "int Bar = 1;", warn: true},
	})

	runRenameCases(t, "test.il", NamespaceUse, "Bar", "Baz", []renameCase{
		{line: ".namespace 'Bar'", want: ".namespace 'Baz'"},
		{line: ".namespace Bar", want: ".namespace Baz"},
		{line: "  newobj instance void Bar.Foo::.ctor()", want: "  newobj instance void Baz.Foo::.ctor()"},
	})

	runRenameCases(t, "Program.cs", NamespaceUse, "My.Ns", "My__Ns_x", []renameCase{
		{line: "namespace My.Ns", want: "namespace My__Ns_x"},
		{line: "My.Ns.Foo f;", want: "My__Ns_x.Foo f;"},
		{line: "My.NsOther.Foo g;", want: "My.NsOther.Foo g;"},
	})
}

func TestBaseTypeName(t *testing.T) {
	assert.Equal(t, "Foo", baseTypeName("A.B.Foo<int>"))
	assert.Equal(t, "Inner", baseTypeName("Outer/Inner"))
	assert.Equal(t, "Foo", baseTypeName("'Foo'"))
	assert.Empty(t, baseTypeName("[mscorlib]System.Object"))
}

package signature

import (
	"testing"

	"codemetrics/internal/ast"

	"github.com/stretchr/testify/assert"
)

type opSpec struct {
	kind   ast.Kind
	name   string
	mods   ast.Modifiers
	params int
	lines  int
	branch bool
}

func buildOps(lang string, specs ...opSpec) []ast.Node {
	b := ast.NewBuilder("File", lang)
	cls := b.Add(b.Root(), ast.KindClass, "Foo")
	b.SetLines(cls, 1, 100)
	line := 2
	var ids []ast.NodeID
	for _, s := range specs {
		id := b.Add(cls, s.kind, s.name)
		b.SetLines(id, line, line+s.lines-1)
		b.AddModifiers(id, s.mods)
		for i := 0; i < s.params; i++ {
			b.Add(id, ast.KindParameter, "p")
		}
		if s.branch {
			b.Add(id, ast.KindIf, "")
		}
		line += s.lines
		ids = append(ids, id)
	}
	tree := b.Build()
	nodes := make([]ast.Node, len(ids))
	for i, id := range ids {
		nodes[i] = tree.Node(id)
	}
	return nodes
}

func TestDetectorRoles(t *testing.T) {
	d := NewDetector()
	tests := []struct {
		name string
		lang string
		op   opSpec
		want Role
	}{
		{"java getter", "java", opSpec{ast.KindMethod, "getName", ast.ModPublic, 0, 3, false}, RoleGetterOrSetter},
		{"java setter", "java", opSpec{ast.KindMethod, "setName", ast.ModPublic, 1, 3, false}, RoleGetterOrSetter},
		{"setter with two params", "java", opSpec{ast.KindMethod, "setName", ast.ModPublic, 2, 3, false}, RoleMethod},
		{"getter with branch", "java", opSpec{ast.KindMethod, "getName", ast.ModPublic, 0, 3, true}, RoleMethod},
		{"long getter", "java", opSpec{ast.KindMethod, "getName", ast.ModPublic, 0, 12, false}, RoleMethod},
		{"constructor", "java", opSpec{ast.KindConstructor, "Foo", ast.ModPublic, 0, 3, false}, RoleConstructor},
		{"static getter", "java", opSpec{ast.KindMethod, "getInstance", ast.ModPublic | ast.ModStatic, 0, 3, false}, RoleStatic},
		{"plain method", "java", opSpec{ast.KindMethod, "compute", ast.ModPublic, 0, 3, false}, RoleMethod},
		{"go getter", "go", opSpec{ast.KindMethod, "GetName", ast.ModPublic, 0, 3, false}, RoleGetterOrSetter},
		{"java pattern in go", "go", opSpec{ast.KindMethod, "getName", 0, 0, 3, false}, RoleMethod},
		{"python getter", "python", opSpec{ast.KindMethod, "get_name", ast.ModPublic, 0, 2, false}, RoleGetterOrSetter},
		{"js accessor syntax", "javascript", opSpec{ast.KindMethod, "name", ast.ModPublic | ast.ModAccessor, 0, 8, true}, RoleGetterOrSetter},
		{"unknown language falls back to go", "cobol", opSpec{ast.KindMethod, "SetX", 0, 1, 1, false}, RoleGetterOrSetter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := buildOps(tt.lang, tt.op)[0]
			assert.Equal(t, tt.want, d.RoleOf(op))
		})
	}
}

func TestVisibilityOf(t *testing.T) {
	ops := buildOps("java",
		opSpec{ast.KindMethod, "a", ast.ModPublic, 0, 1, false},
		opSpec{ast.KindMethod, "b", ast.ModPrivate, 0, 1, false},
		opSpec{ast.KindMethod, "c", ast.ModProtected, 0, 1, false},
		opSpec{ast.KindMethod, "d", 0, 0, 1, false},
	)
	want := []Visibility{Public, Private, Protected, Package}
	for i, op := range ops {
		assert.Equal(t, want[i], VisibilityOf(op), op.Name())
	}
}

func TestOperationMask(t *testing.T) {
	publicAccessor := OperationSignature{Visibility: Public, Role: RoleGetterOrSetter}
	privateAccessor := OperationSignature{Visibility: Private, Role: RoleGetterOrSetter}
	ctor := OperationSignature{Visibility: Public, Role: RoleConstructor}
	abstract := OperationSignature{Visibility: Public, Role: RoleMethod, Abstract: true}

	all := NewOperationMask()
	for _, sig := range []OperationSignature{publicAccessor, privateAccessor, ctor, abstract} {
		assert.True(t, all.Covers(sig))
	}

	m := NewOperationMask().RestrictVisibilitiesTo(Public).RestrictRolesTo(RoleGetterOrSetter)
	assert.True(t, m.Covers(publicAccessor))
	assert.False(t, m.Covers(privateAccessor))
	assert.False(t, m.Covers(ctor))

	noCtor := NewOperationMask().RemoveRoles(RoleConstructor).ForbidAbstract()
	assert.False(t, noCtor.Covers(ctor))
	assert.False(t, noCtor.Covers(abstract))
	assert.True(t, noCtor.Covers(privateAccessor))

	var nilMask *OperationMask
	assert.True(t, nilMask.Covers(ctor))
}

func TestFieldMask(t *testing.T) {
	constant := FieldSignature{Visibility: Public, Static: true, Final: true}
	attr := FieldSignature{Visibility: Public}
	hidden := FieldSignature{Visibility: Private}

	m := NewFieldMask().RestrictVisibilitiesTo(Public)
	assert.True(t, m.Covers(constant))
	assert.True(t, m.Covers(attr))
	assert.False(t, m.Covers(hidden))

	m.ForbidStatic()
	assert.False(t, m.Covers(constant))
	assert.True(t, NewFieldMask().ForbidFinal().Covers(hidden))
}

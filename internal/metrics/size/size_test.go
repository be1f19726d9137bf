package size

import (
	"math"
	"testing"

	"codemetrics/internal/ast"
	"codemetrics/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	tree  *ast.Tree
	cls   ast.Node
	iface ast.Node
	run   ast.Node
	get   ast.Node
}

// buildFixture describes:
//
//	package shop;                  // line 1
//	import java.util.List;        // line 2
//	public class Cart {           // lines 4-30
//	  public int total;
//	  public static int MAX;
//	  private String owner;
//	  public Cart() {}            // lines 8-9
//	  public String getOwner() {} // lines 10-12
//	  public void setOwner(String o) {} // lines 13-15
//	  public void run() { int x; if (...) { return; } } // lines 16-25
//	}
//	interface Priced { int price(); }
func buildFixture() fixture {
	b := ast.NewBuilder("Cart.java", "java")
	b.SetPackage("shop")
	b.Add(b.Root(), ast.KindPackage, "shop")
	b.Add(b.Root(), ast.KindImport, "java.util.List")

	cls := b.Add(b.Root(), ast.KindClass, "Cart")
	b.SetLines(cls, 4, 30)
	b.AddModifiers(cls, ast.ModPublic)

	for _, f := range []struct {
		name string
		mods ast.Modifiers
	}{{"total", ast.ModPublic}, {"MAX", ast.ModPublic | ast.ModStatic}, {"owner", ast.ModPrivate}} {
		id := b.Add(cls, ast.KindField, f.name)
		b.AddModifiers(id, f.mods)
	}

	ctor := b.Add(cls, ast.KindConstructor, "Cart")
	b.SetLines(ctor, 8, 9)
	b.AddModifiers(ctor, ast.ModPublic)

	get := b.Add(cls, ast.KindMethod, "getOwner")
	b.SetLines(get, 10, 12)
	b.AddModifiers(get, ast.ModPublic)
	b.Add(b.Add(get, ast.KindBlock, ""), ast.KindReturn, "")

	set := b.Add(cls, ast.KindMethod, "setOwner")
	b.SetLines(set, 13, 15)
	b.AddModifiers(set, ast.ModPublic)
	b.SetType(b.Add(set, ast.KindParameter, "o"), "String")
	b.Add(b.Add(set, ast.KindBlock, ""), ast.KindStatement, "")

	run := b.Add(cls, ast.KindMethod, "run")
	b.SetLines(run, 16, 25)
	b.AddModifiers(run, ast.ModPublic)
	body := b.Add(run, ast.KindBlock, "")
	b.Add(body, ast.KindLocalVariable, "x")
	ifNode := b.Add(body, ast.KindIf, "")
	b.Add(b.Add(ifNode, ast.KindBlock, ""), ast.KindReturn, "")

	iface := b.Add(b.Root(), ast.KindInterface, "Priced")
	b.SetLines(iface, 31, 33)
	price := b.Add(iface, ast.KindMethod, "price")
	b.AddModifiers(price, ast.ModPublic|ast.ModAbstract)

	tree := b.Build()
	return fixture{tree: tree, cls: tree.Node(cls), iface: tree.Node(iface), run: tree.Node(run), get: tree.Node(get)}
}

func TestLOC(t *testing.T) {
	f := buildFixture()
	s := metrics.NewSession(zaptest.NewLogger(t))

	assert.Equal(t, 27.0, s.Get(ClassLOC, f.cls))
	assert.Equal(t, 10.0, s.Get(OperationLOC, f.run))
	assert.Equal(t, 10.0, s.GetWithResult(ClassLOC, f.cls, metrics.ResultHighest))
	assert.Equal(t, 18.0, s.GetWithResult(ClassLOC, f.cls, metrics.ResultSum))
}

func TestNCSS(t *testing.T) {
	f := buildFixture()
	s := metrics.NewSession(zaptest.NewLogger(t))

	// declaration + local variable + if + return
	assert.Equal(t, 4.0, s.Get(OperationNCSS, f.run))
	assert.Equal(t, 2.0, s.Get(OperationNCSS, f.get))

	// class + 3 fields + 4 operations + 1 + 1 + 3 statements
	standard := s.Get(ClassNCSS, f.cls)
	assert.Equal(t, 13.0, standard)
	assert.Equal(t, standard+2, s.Get(ClassNCSS, f.cls, CountImports))
	// the option is not understood by the operation key
	assert.Equal(t, 4.0, s.Get(OperationNCSS, f.run, CountImports))
}

func TestNOAM(t *testing.T) {
	f := buildFixture()
	s := metrics.NewSession(zaptest.NewLogger(t))
	s.Register(f.tree)

	assert.Equal(t, 2.0, s.Get(NOAM, f.cls))
	assert.True(t, math.IsNaN(s.Get(NOAM, f.iface)))
}

func TestNOPA(t *testing.T) {
	f := buildFixture()
	s := metrics.NewSession(zaptest.NewLogger(t))

	assert.Equal(t, 1.0, s.Get(NOPA, f.cls))
	assert.True(t, math.IsNaN(s.Get(NOPA, f.iface)))
}

func TestNOM(t *testing.T) {
	f := buildFixture()
	s := metrics.NewSession(zaptest.NewLogger(t))
	require.Equal(t, 3.0, s.Get(NOM, f.cls))
	assert.Equal(t, 1.0, s.Get(NOM, f.iface))
}

func TestNOMIncludesMethodsFromOtherFiles(t *testing.T) {
	s := metrics.NewSession(zaptest.NewLogger(t))

	b := ast.NewBuilder("server.go", "go")
	b.SetPackage("srv")
	cls := b.Add(b.Root(), ast.KindClass, "Server")
	b.Add(cls, ast.KindMethod, "Start")
	first := b.Build()

	b = ast.NewBuilder("handlers.go", "go")
	b.SetPackage("srv")
	other := b.Add(b.Root(), ast.KindClass, "Server")
	b.AddModifiers(other, ast.ModSynthetic)
	b.Add(other, ast.KindMethod, "Handle")
	b.Add(other, ast.KindMethod, "Stop")
	s.Register(b.Build())

	assert.Equal(t, 3.0, s.Get(NOM, first.Node(cls)))
}

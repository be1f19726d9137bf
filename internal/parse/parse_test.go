package parse

import (
	"context"
	"testing"

	"codemetrics/internal/ast"
	"codemetrics/internal/metrics"
	"codemetrics/internal/metrics/complexity"
	"codemetrics/internal/metrics/size"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func parse(t *testing.T, relPath, src string) *ast.Tree {
	t.Helper()
	fp := NewFileParser(zaptest.NewLogger(t), false)
	defer fp.Close()
	tree, err := fp.ParseContent(context.Background(), relPath, []byte(src))
	require.NoError(t, err)
	return tree
}

func qnames(nodes []ast.Node) []string {
	var out []string
	for _, n := range nodes {
		if q, ok := n.QualifiedName(); ok {
			out = append(out, q.String())
		}
	}
	return out
}

func operation(t *testing.T, tree *ast.Tree, name string) ast.Node {
	t.Helper()
	for _, op := range ast.Operations(tree) {
		if op.Name() == name {
			return op
		}
	}
	t.Fatalf("operation %s not found", name)
	return ast.Node{}
}

func fieldNames(cls ast.Node) []string {
	var out []string
	for _, f := range ast.ContainedFields(cls) {
		out = append(out, f.Name())
	}
	return out
}

const javaSource = `package com.acme.shapes;

import java.util.List;

public class Circle {
    private double radius;
    public int count;

    public Circle(double radius) {
        this.radius = radius;
    }

    public double getRadius() {
        return radius;
    }

    public void grow(double factor, int... steps) {
        if (factor > 1 && steps.length > 0) {
            radius *= factor;
        }
        for (int s : steps) {
            switch (s) {
                case 1: radius++; break;
                case 2: radius--; break;
                default: break;
            }
        }
    }

    static class Inner {
        void run() {}
    }
}
`

func TestParseJava(t *testing.T) {
	tree := parse(t, "src/main/java/com/acme/shapes/Circle.java", javaSource)

	assert.Equal(t, "java", tree.Language())
	assert.Equal(t, []string{"com", "acme", "shapes"}, tree.Package())
	assert.Equal(t, []string{"com.acme.shapes.Circle", "com.acme.shapes.Circle$Inner"}, qnames(ast.Classes(tree)))
	assert.Equal(t, []string{
		"com.acme.shapes.Circle#Circle(double)",
		"com.acme.shapes.Circle#getRadius()",
		"com.acme.shapes.Circle#grow(double,int[])",
		"com.acme.shapes.Circle$Inner#run()",
	}, qnames(ast.Operations(tree)))
	assert.Len(t, tree.Root().ChildrenOfKind(ast.KindImport), 1)

	circle := ast.Classes(tree)[0]
	assert.True(t, circle.Has(ast.ModPublic))
	assert.Equal(t, []string{"radius", "count"}, fieldNames(circle))
	assert.Equal(t, ast.KindConstructor, operation(t, tree, "Circle").Kind())
	assert.Equal(t, 13, operation(t, tree, "getRadius").BeginLine())

	s := metrics.NewSession(zaptest.NewLogger(t))
	assert.Equal(t, 6.0, s.Get(complexity.Cyclo, operation(t, tree, "grow")))
	assert.Equal(t, 1.0, s.Get(size.NOPA, circle))
	assert.Equal(t, 1.0, s.Get(size.NOAM, circle))
}

const goSource = `package shapes

import "fmt"

type Point struct {
	X, Y int
	name string
}

func (p *Point) Name() string {
	return p.name
}

func (p *Point) Describe() string {
	if p.X > 0 || p.Y > 0 {
		return fmt.Sprintf("%s", p.Name())
	}
	return ""
}

func NewPoint(x, y int) *Point {
	return &Point{X: x, Y: y}
}

func (c Circle) Area() float64 { return 0 }
`

func TestParseGo(t *testing.T) {
	tree := parse(t, "geo/shapes/point.go", goSource)

	assert.Equal(t, []string{"geo", "shapes"}, tree.Package())
	assert.Equal(t, []string{"geo.shapes.Point", "geo.shapes.Circle"}, qnames(ast.Classes(tree)))
	assert.ElementsMatch(t, []string{
		"geo.shapes.Point#Name()",
		"geo.shapes.Point#Describe()",
		"geo.shapes.#NewPoint(int,int)",
		"geo.shapes.Circle#Area()",
	}, qnames(ast.Operations(tree)))

	point, circle := ast.Classes(tree)[0], ast.Classes(tree)[1]
	assert.Equal(t, []string{"X", "Y", "name"}, fieldNames(point))
	assert.True(t, point.Has(ast.ModPublic))
	assert.True(t, circle.Has(ast.ModSynthetic))

	describe := operation(t, tree, "Describe")
	var targets []string
	for _, call := range ast.Descendants(describe, ast.KindCall) {
		targets = append(targets, call.Target())
	}
	assert.Equal(t, []string{"fmt.#Sprintf(?,?)", "geo.shapes.Point#Name()"}, targets)

	s := metrics.NewSession(zaptest.NewLogger(t))
	assert.Equal(t, 3.0, s.Get(complexity.Cyclo, describe))
	assert.Equal(t, ast.KindCompilationUnit, operation(t, tree, "NewPoint").Parent().Kind())
}

const pythonSource = `import os
from geo.base import Shape


class Square(Shape):
    """A square."""
    sides = 4

    def __init__(self, size):
        self.size = size
        self._cache = None

    def get_size(self):
        return self.size

    @staticmethod
    def unit():
        return Square(1)

    def area(self, scale: float):
        if scale > 0 and self.size > 0:
            return self.size * scale
        elif scale == 0:
            return 0
        return -1


def helper(x, *rest):
    for r in rest:
        x += r
    return x
`

func TestParsePython(t *testing.T) {
	tree := parse(t, "geo/square.py", pythonSource)

	assert.Equal(t, []string{"geo", "square"}, tree.Package())
	assert.Equal(t, []string{"geo.square.Square"}, qnames(ast.Classes(tree)))
	assert.Equal(t, []string{
		"geo.square.Square#__init__(?)",
		"geo.square.Square#get_size()",
		"geo.square.Square#unit()",
		"geo.square.Square#area(float)",
		"geo.square.#helper(?,?[])",
	}, qnames(ast.Operations(tree)))

	square := ast.Classes(tree)[0]
	assert.ElementsMatch(t, []string{"sides", "size", "_cache"}, fieldNames(square))
	assert.Equal(t, ast.KindConstructor, operation(t, tree, "__init__").Kind())
	assert.True(t, operation(t, tree, "unit").Has(ast.ModStatic))

	s := metrics.NewSession(zaptest.NewLogger(t))
	assert.Equal(t, 4.0, s.Get(complexity.Cyclo, operation(t, tree, "area")))
	assert.Equal(t, 2.0, s.Get(complexity.Cyclo, operation(t, tree, "helper")))
	// size is public and not static; _cache is protected and sides is static
	assert.Equal(t, 1.0, s.Get(size.NOPA, square))
}

const jsSource = `import { Engine } from './engine';

export class Car {
  #speed = 0;
  wheels = 4;

  constructor(engine) {
    this.engine = engine;
  }

  get speed() {
    return this.#speed;
  }

  static create() {
    return new Car(new Engine());
  }

  drive(distance, ...stops) {
    if (distance > 0 && this.#speed < 100) {
      this.go();
    }
    for (const s of stops) {
      switch (s) {
        case 'a':
          break;
        default:
          break;
      }
    }
    return distance > 10 ? 'far' : 'near';
  }

  go() {}
}

export const start = (car) => car.drive(1);
`

func TestParseJavaScript(t *testing.T) {
	tree := parse(t, "src/car.js", jsSource)

	assert.Equal(t, []string{"src", "car"}, tree.Package())
	assert.Equal(t, []string{"src.car.Car"}, qnames(ast.Classes(tree)))
	assert.Equal(t, []string{
		"src.car.Car#constructor(?)",
		"src.car.Car#speed()",
		"src.car.Car#create()",
		"src.car.Car#drive(?,?[])",
		"src.car.Car#go()",
		"src.car.#start(?)",
	}, qnames(ast.Operations(tree)))

	car := ast.Classes(tree)[0]
	assert.Equal(t, []string{"#speed", "wheels"}, fieldNames(car))
	assert.True(t, ast.ContainedFields(car)[0].Has(ast.ModPrivate))
	assert.True(t, operation(t, tree, "speed").Has(ast.ModAccessor))
	assert.True(t, operation(t, tree, "create").Has(ast.ModStatic))
	assert.Equal(t, ast.KindConstructor, operation(t, tree, "constructor").Kind())

	drive := operation(t, tree, "drive")
	calls := ast.Descendants(drive, ast.KindCall)
	require.Len(t, calls, 1)
	assert.Equal(t, "src.car.Car#go()", calls[0].Target())

	s := metrics.NewSession(zaptest.NewLogger(t))
	assert.Equal(t, 6.0, s.Get(complexity.Cyclo, drive))
}

func TestParseTypeScript(t *testing.T) {
	src := `export interface Shape {
  area(): number;
}

export class Rect implements Shape {
  private width: number = 0;
  public height: number = 0;

  area(): number {
    return this.width * this.height;
  }
}
`
	tree := parse(t, "lib/rect.ts", src)
	assert.Equal(t, "typescript", tree.Language())
	assert.Equal(t, []string{"lib.rect.Shape", "lib.rect.Rect"}, qnames(ast.Classes(tree)))

	shape, rect := ast.Classes(tree)[0], ast.Classes(tree)[1]
	assert.Equal(t, ast.KindInterface, shape.Kind())
	require.Len(t, ast.ContainedOperations(shape), 1)
	assert.True(t, ast.ContainedOperations(shape)[0].Has(ast.ModAbstract))
	assert.Equal(t, []string{"width", "height"}, fieldNames(rect))
	assert.True(t, ast.ContainedFields(rect)[0].Has(ast.ModPrivate))
}

func TestParseUnsupported(t *testing.T) {
	fp := NewFileParser(zaptest.NewLogger(t), false)
	defer fp.Close()
	_, err := fp.ParseContent(context.Background(), "README.md", []byte("# hi"))
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestDetectLanguage(t *testing.T) {
	tests := map[string]LanguageType{
		"a/B.java":   Java,
		"main.go":    Go,
		"app.tsx":    TypeScript,
		"index.mjs":  JavaScript,
		"tool.py":    Python,
		"Makefile":   Unknown,
		"style.css":  Unknown,
		"UPPER.JAVA": Java,
	}
	for path, want := range tests {
		assert.Equal(t, want, DetectLanguage(path), path)
	}
}

func TestDefaultPackage(t *testing.T) {
	assert.Equal(t, "", defaultPackage(Java, "src/A.java"))
	assert.Equal(t, "internal.web", defaultPackage(Go, "internal/web/server.go"))
	assert.Equal(t, "", defaultPackage(Go, "main.go"))
	assert.Equal(t, "pkg.tools", defaultPackage(Python, "pkg/tools.py"))
	assert.Equal(t, "pkg", defaultPackage(Python, "pkg/__init__.py"))
	assert.Equal(t, "app", defaultPackage(JavaScript, "app.js"))
}

func TestPrintTree(t *testing.T) {
	tree := parse(t, "geo/shapes/point.go", goSource)
	out := PrintTree(tree)
	assert.Contains(t, out, "kind=class, name=Point")
	assert.Contains(t, out, "target=geo.shapes.Point#Name()")
}

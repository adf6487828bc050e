package ast

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectLanguageFromExtension(t *testing.T) {
	assert.Equal(t, "python", DetectLanguage(".py"))
	assert.Equal(t, "typescript", DetectLanguage(".tsx"))
	assert.Equal(t, "rust", DetectLanguage(".rs"))
	assert.Equal(t, "", DetectLanguage(".unknown"))
}

func TestHasExtractorOnlyForFullLanguages(t *testing.T) {
	assert.True(t, HasExtractor("python"))
	assert.True(t, HasExtractor("typescript"))
	assert.True(t, HasExtractor("javascript"))
	assert.False(t, HasExtractor("rust"))
	assert.False(t, HasExtractor("go"))
}

func TestExtractPythonClassWithMethods(t *testing.T) {
	source := []byte(`class Calculator:
    """A simple calculator."""

    def add(self, a, b):
        return a + b

    def subtract(self, a, b):
        return a - b


def read_file(path):
    with open(path) as f:
        return f.read()
`)
	e := NewExtractor()
	defer e.Close()

	nodes, _ := e.Extract(context.Background(), source, "python")
	require.Len(t, nodes, 2)

	var calc *Node
	for _, n := range nodes {
		if n.Name == "Calculator" {
			calc = n
		}
	}
	require.NotNil(t, calc)
	assert.Equal(t, "class", calc.Kind)
	assert.Equal(t, "A simple calculator.", calc.Docstring)
	require.Len(t, calc.Children, 2)
	assert.Equal(t, "Calculator.add", calc.Children[0].QualifiedName)
	assert.Equal(t, "Calculator.subtract", calc.Children[1].QualifiedName)
}

func TestExtractPythonImports(t *testing.T) {
	source := []byte("import os\nfrom pathlib import Path\n\ndef f():\n    pass\n")
	e := NewExtractor()
	defer e.Close()

	nodes, refs := e.Extract(context.Background(), source, "python")
	var imports int
	for _, n := range nodes {
		if n.Kind == "import" {
			imports++
		}
	}
	assert.Equal(t, 2, imports)
	assert.Len(t, refs, 2)
}

func TestExtractTypeScriptClassAndFunction(t *testing.T) {
	source := []byte(`interface Shape {
  area(): number;
}

class Circle implements Shape {
  radius: number;

  area() {
    return 3.14 * this.radius * this.radius;
  }
}

function makeCircle(r: number) {
  return new Circle();
}

const double = (x: number) => x * 2;
`)
	e := NewExtractor()
	defer e.Close()

	nodes, _ := e.Extract(context.Background(), source, "typescript")
	kinds := map[string]int{}
	for _, n := range nodes {
		kinds[n.Kind]++
	}
	assert.Equal(t, 1, kinds["interface"])
	assert.Equal(t, 1, kinds["class"])
	assert.GreaterOrEqual(t, kinds["function"], 2)
}

func TestExtractUnsupportedLanguageReturnsEmpty(t *testing.T) {
	e := NewExtractor()
	defer e.Close()
	nodes, refs := e.Extract(context.Background(), []byte("fn main() {}"), "rust")
	assert.Nil(t, nodes)
	assert.Nil(t, refs)
}

func TestFlattenAssignsDepthAndParent(t *testing.T) {
	forest := []*Node{
		{Name: "Calculator", Children: []*Node{
			{Name: "add"},
			{Name: "subtract"},
		}},
	}
	flat := Flatten(forest)
	require.Len(t, flat, 3)
	assert.Equal(t, -1, flat[0].ParentIdx)
	assert.Equal(t, 0, flat[0].Depth)
	assert.Equal(t, 0, flat[1].ParentIdx)
	assert.Equal(t, 1, flat[1].Depth)
}

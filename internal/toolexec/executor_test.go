package toolexec_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petasbytes/turnflow/internal/llm"
	"github.com/petasbytes/turnflow/internal/toolexec"
)

type staticCatalog struct {
	decls []llm.ToolDeclaration
	reply string
	calls []string
}

func (s *staticCatalog) Declarations() []llm.ToolDeclaration { return s.decls }

func (s *staticCatalog) Execute(_ context.Context, name string, _ json.RawMessage) (string, error) {
	s.calls = append(s.calls, name)
	return s.reply, nil
}

func TestRouter_RoutesByName(t *testing.T) {
	a := &staticCatalog{decls: []llm.ToolDeclaration{{Name: "search"}}, reply: "from-a"}
	b := &staticCatalog{decls: []llm.ToolDeclaration{{Name: "outline"}}, reply: "from-b"}
	r := toolexec.NewRouter(nil, a, b)

	got, err := r.Execute(context.Background(), "outline", json.RawMessage(`{}`))
	require.NoError(t, err)
	require.Equal(t, "from-b", got)
	require.Empty(t, a.calls)
	require.Equal(t, []string{"outline"}, b.calls)
}

func TestRouter_FirstCatalogWinsOnDuplicate(t *testing.T) {
	a := &staticCatalog{decls: []llm.ToolDeclaration{{Name: "search", Description: "a"}}, reply: "from-a"}
	b := &staticCatalog{decls: []llm.ToolDeclaration{{Name: "search", Description: "b"}}, reply: "from-b"}
	r := toolexec.NewRouter(nil, a, b)

	decls := r.Declarations()
	require.Len(t, decls, 1)
	require.Equal(t, "a", decls[0].Description)

	got, err := r.Execute(context.Background(), "search", nil)
	require.NoError(t, err)
	require.Equal(t, "from-a", got)
}

func TestRouter_UnknownToolIsResultNotError(t *testing.T) {
	r := toolexec.NewRouter(nil)
	got, err := r.Execute(context.Background(), "nope", nil)
	require.NoError(t, err)
	require.Equal(t, "tool not found: nope", got)
}

func TestRouter_DeclarationsAreCopies(t *testing.T) {
	a := &staticCatalog{decls: []llm.ToolDeclaration{{Name: "search"}}}
	r := toolexec.NewRouter(nil, a)
	d := r.Declarations()
	d[0].Name = "mutated"
	require.Equal(t, "search", r.Declarations()[0].Name)
}

func TestExecutorFunc(t *testing.T) {
	var ex toolexec.Executor = toolexec.ExecutorFunc(func(_ context.Context, name string, input json.RawMessage) (string, error) {
		return name + ":" + string(input), nil
	})
	got, err := ex.Execute(context.Background(), "echo", json.RawMessage(`{"q":"x"}`))
	require.NoError(t, err)
	require.Equal(t, `echo:{"q":"x"}`, got)
}

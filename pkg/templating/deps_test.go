package templating

import (
	"context"
	"errors"
	"testing"

	"github.com/CTAG07/podtags/pkg/pod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func returning(result any) invoker {
	return func(context.Context, Args) (any, error) {
		return result, nil
	}
}

func TestRecordResult_SequenceShapes(t *testing.T) {
	about := &pod.Document{Path: aboutPath}
	team := &pod.Document{Path: teamPath}
	logo := &pod.StaticFile{Path: "/static/logo.png"}

	tests := []struct {
		name   string
		result any
		want   [][2]string
	}{
		{"slice of documents", []*pod.Document{team, about}, [][2]string{{indexPath, aboutPath}, {indexPath, teamPath}}},
		{"mixed items", []any{team, "text", logo, nil}, [][2]string{{indexPath, teamPath}, {indexPath, "/static/logo.png"}}},
		{"array", [1]*pod.Document{team}, [][2]string{{indexPath, teamPath}}},
		{"single item", about, [][2]string{{indexPath, aboutPath}}},
		{"nil document", (*pod.Document)(nil), [][2]string{}},
		{"nil slice", []*pod.Document(nil), [][2]string{}},
		{"plain value", 42, [][2]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newRecordingGraph()
			index := &pod.Document{Path: indexPath, Locale: "en"}
			call := recordResult(g, index, ShapeSequence, returning(tt.result))

			got, err := call(context.Background(), Args{Keyword: map[string]any{}})
			require.NoError(t, err)
			assert.Equal(t, tt.result, got)
			assert.Equal(t, tt.want, g.Edges())
		})
	}
}

func TestRecordResult_SingleShape(t *testing.T) {
	g := newRecordingGraph()
	index := &pod.Document{Path: indexPath, Locale: "en"}
	docs := []*pod.Document{{Path: aboutPath}}

	_, err := recordResult(g, index, ShapeSingle, returning(docs))(context.Background(), Args{Keyword: map[string]any{}})
	require.NoError(t, err)
	assert.Empty(t, g.Edges(), "a single-shaped tag does not look inside slices")

	_, err = recordResult(g, index, ShapeSingle, returning((*pod.StaticFile)(nil)))(context.Background(), Args{Keyword: map[string]any{}})
	require.NoError(t, err)
	assert.Empty(t, g.Edges())
}

func TestRecordResult_DefaultsLocale(t *testing.T) {
	g := newRecordingGraph()
	index := &pod.Document{Path: indexPath, Locale: "de"}
	var seen any
	next := func(_ context.Context, args Args) (any, error) {
		seen = args.Keyword["locale"]
		return nil, nil
	}

	_, err := recordResult(g, index, ShapeSingle, next)(context.Background(), Args{Keyword: map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, "de", seen)

	_, err = recordResult(g, nil, ShapeSingle, next)(context.Background(), Args{Keyword: map[string]any{"locale": "en"}})
	require.NoError(t, err)
	assert.Equal(t, "en", seen)
}

func TestRecordResult_GraphError(t *testing.T) {
	g := newRecordingGraph()
	g.err = errGraphDown
	index := &pod.Document{Path: indexPath}

	got, err := recordResult(g, index, ShapeSequence, returning(&pod.Document{Path: aboutPath}))(context.Background(), Args{Keyword: map[string]any{}})
	assert.True(t, errors.Is(err, errGraphDown), "got %v", err)
	assert.Nil(t, got)
}

func TestBind_SequenceTagReturningOneDocument(t *testing.T) {
	b, p, g := setupTestBuild(t)
	index := getDoc(t, p.FS, indexPath, "")
	spec := TagSpec{
		Name:  "one",
		Kind:  KindResultDep | KindMemo,
		Shape: ShapeSequence,
		Fn: func(context.Context, Scope, Args) (any, error) {
			return &pod.Document{Path: aboutPath}, nil
		},
	}

	got, err := b.bind(context.Background(), index, spec)()
	require.NoError(t, err)
	assert.Equal(t, aboutPath, got.(*pod.Document).Path)
	assert.Equal(t, [][2]string{{indexPath, aboutPath}}, g.Edges())

	spec.Name = "none"
	spec.Fn = func(context.Context, Scope, Args) (any, error) {
		return (*pod.Document)(nil), nil
	}
	_, err = b.bind(context.Background(), index, spec)()
	require.NoError(t, err)
	assert.Len(t, g.Edges(), 1, "a nil document adds no edge")
}

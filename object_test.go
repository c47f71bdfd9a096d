package pathobj

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() map[string]any {
	return map[string]any{
		"name":    "John",
		"age":     30,
		"address": map[string]any{"city": "New York", "zip_code": "10001"},
		"scores":  []any{85, 90, 78},
	}
}

func TestObjectGet(t *testing.T) {
	obj := New(sampleData(), ObjectOpts{})

	tests := []struct {
		path string
		want any
	}{
		{"name", "John"},
		{"address.city", "New York"},
		{`address["zip_code"]`, "10001"},
		{`address['zip_code']`, "10001"},
		{"scores.0", 85},
		{"scores[2]", 78},
		{"address", map[string]any{"city": "New York", "zip_code": "10001"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := obj.Get(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestObjectGet_ReturnsLiveReference(t *testing.T) {
	data := sampleData()
	obj := New(data, ObjectOpts{})

	addr, err := obj.Get("address")
	require.NoError(t, err)
	addr.(map[string]any)["city"] = "Boston"

	assert.Equal(t, "Boston", data["address"].(map[string]any)["city"])
}

func TestObjectGet_Missing(t *testing.T) {
	obj := New(sampleData(), ObjectOpts{})

	tests := []struct {
		name       string
		path       string
		step       int
		outOfRange bool
	}{
		{"top level key", "nonexistent_key", 0, false},
		{"nested key", "address.nonexistent_key", 1, false},
		{"deep missing", "address.nope.deeper", 1, false},
		{"index past end", "scores.10", 1, true},
		{"bracket index past end", "scores[3]", 1, true},
		{"into scalar", "name.first", 1, false},
		{"key into sequence", "scores.first", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := obj.Get(tt.path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrKeyNotFound)
			assert.Equal(t, tt.outOfRange, errors.Is(err, ErrIndexOutOfRange))

			var pe *PathError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, OpGet, pe.Op)
			assert.Equal(t, tt.path, pe.Path)
			assert.Equal(t, tt.step, pe.Step)
			assert.Contains(t, pe.Error(), tt.path)
		})
	}
}

func TestObjectGet_MalformedPath(t *testing.T) {
	obj := New(sampleData(), ObjectOpts{IgnoreMissing: true})

	_, err := obj.Get("address..city")
	assert.ErrorIs(t, err, ErrMalformedPath)
}

func TestObjectGet_DefaultFactory(t *testing.T) {
	t.Run("returns default without storing it", func(t *testing.T) {
		data := map[string]any{"a": 1}
		obj := New(data, ObjectOpts{
			IgnoreMissing:  true,
			DefaultFactory: func() any { return "N/A" },
		})

		got, err := obj.Get("missing.deeper[0]")
		require.NoError(t, err)
		assert.Equal(t, "N/A", got)
		assert.Equal(t, map[string]any{"a": 1}, data)
		assert.False(t, obj.Has("missing"))
	})

	t.Run("called once per miss", func(t *testing.T) {
		calls := 0
		obj := New(nil, ObjectOpts{
			IgnoreMissing: true,
			DefaultFactory: func() any {
				calls++
				return map[string]any{"default_value": 0}
			},
		})

		first, err := obj.Get("nested.key.0")
		require.NoError(t, err)
		second, err := obj.Get("nested.key.0")
		require.NoError(t, err)

		assert.Equal(t, 2, calls)
		assert.Equal(t, map[string]any{"default_value": 0}, first)

		// Each miss gets its own value
		first.(map[string]any)["default_value"] = 1
		assert.Equal(t, 0, second.(map[string]any)["default_value"])
		assert.Equal(t, 0, obj.Len())
	})

	t.Run("nil factory yields nil", func(t *testing.T) {
		obj := New(nil, ObjectOpts{IgnoreMissing: true})
		got, err := obj.Get("missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("factory unused when raising", func(t *testing.T) {
		obj := New(nil, ObjectOpts{DefaultFactory: func() any {
			t.Error("factory should not be called")
			return nil
		}})
		_, err := obj.Get("missing")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})
}

func TestObjectSet(t *testing.T) {
	t.Run("overwrite", func(t *testing.T) {
		obj := New(sampleData(), ObjectOpts{})

		_, err := obj.Set("name", "Alice")
		require.NoError(t, err)
		_, err = obj.Set("address.city", "Los Angeles")
		require.NoError(t, err)
		_, err = obj.Set("scores.0", 95)
		require.NoError(t, err)

		assert.Equal(t, "Alice", mustGet(t, obj, "name"))
		assert.Equal(t, "Los Angeles", mustGet(t, obj, "address.city"))
		assert.Equal(t, 95, mustGet(t, obj, "scores.0"))
	})

	t.Run("new sibling keeps existing keys", func(t *testing.T) {
		data := sampleData()
		obj := New(data, ObjectOpts{})

		_, err := obj.Set("address.state", "California")
		require.NoError(t, err)

		assert.Equal(t, map[string]any{
			"city":     "New York",
			"zip_code": "10001",
			"state":    "California",
		}, data["address"])
	})

	t.Run("chained", func(t *testing.T) {
		obj := New(nil, ObjectOpts{})
		obj, err := obj.Set("a", 1)
		require.NoError(t, err)
		_, err = obj.Set("b", 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, obj.Keys())
	})

	t.Run("append at length", func(t *testing.T) {
		obj := New(sampleData(), ObjectOpts{})
		_, err := obj.Set("scores[3]", 100)
		require.NoError(t, err)
		assert.Equal(t, []any{85, 90, 78, 100}, mustGet(t, obj, "scores"))
	})

	t.Run("index past length", func(t *testing.T) {
		data := sampleData()
		obj := New(data, ObjectOpts{})

		_, err := obj.Set("scores[5]", 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
		assert.NotErrorIs(t, err, ErrKeyNotFound)
		assert.Equal(t, []any{85, 90, 78}, data["scores"])
	})

	t.Run("scalar intermediate conflicts", func(t *testing.T) {
		obj := New(sampleData(), ObjectOpts{IgnoreMissing: true})

		_, err := obj.Set("name.first", "J")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPathConflict)

		var pe *PathError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, OpSet, pe.Op)
		assert.Equal(t, 1, pe.Step)
		assert.Equal(t, "John", mustGet(t, obj, "name"))
	})

	t.Run("nil intermediate conflicts", func(t *testing.T) {
		obj := New(map[string]any{"a": nil}, ObjectOpts{})
		_, err := obj.Set("a.b", 1)
		assert.ErrorIs(t, err, ErrPathConflict)
	})

	t.Run("string key into sequence conflicts", func(t *testing.T) {
		obj := New(sampleData(), ObjectOpts{})
		_, err := obj.Set("scores.best", 1)
		assert.ErrorIs(t, err, ErrPathConflict)
		_, err = obj.Set(`scores["0"]`, 1)
		assert.ErrorIs(t, err, ErrPathConflict)
	})

	t.Run("numeric bracket on mapping uses its text", func(t *testing.T) {
		obj := New(map[string]any{"m": map[string]any{}}, ObjectOpts{})
		_, err := obj.Set("m[0]", "zero")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"0": "zero"}, mustGet(t, obj, "m"))
		assert.Equal(t, "zero", mustGet(t, obj, `m["0"]`))
	})

	t.Run("malformed path", func(t *testing.T) {
		obj := New(nil, ObjectOpts{})
		_, err := obj.Set("a..b", 1)
		assert.ErrorIs(t, err, ErrMalformedPath)
		assert.Equal(t, 0, obj.Len())
	})
}

func TestObjectSet_AutoVivify(t *testing.T) {
	tests := []struct {
		name string
		path string
		want map[string]any
	}{
		{
			name: "mappings",
			path: "a.b.c",
			want: map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}}},
		},
		{
			name: "numeric bracket creates sequence",
			path: "a.b[0].c",
			want: map[string]any{"a": map[string]any{"b": []any{map[string]any{"c": 1}}}},
		},
		{
			name: "nested sequences",
			path: "grid[0][0]",
			want: map[string]any{"grid": []any{[]any{1}}},
		},
		{
			name: "digit key creates mapping",
			path: "nested.key.0",
			want: map[string]any{"nested": map[string]any{"key": map[string]any{"0": 1}}},
		},
		{
			name: "quoted key creates mapping",
			path: `a["0"].b`,
			want: map[string]any{"a": map[string]any{"0": map[string]any{"b": 1}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := New(nil, ObjectOpts{})
			_, err := obj.Set(tt.path, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, obj.Data())
			assert.Equal(t, 1, mustGet(t, obj, tt.path))
		})
	}
}

func TestObjectSet_SequenceRoot(t *testing.T) {
	obj := New([]any{1, 2}, ObjectOpts{})

	_, err := obj.Set("[2]", 3)
	require.NoError(t, err)
	_, err = obj.Set("[3].name", "x")
	require.NoError(t, err)

	assert.Equal(t, []any{1, 2, 3, map[string]any{"name": "x"}}, obj.Data())
	assert.Equal(t, []string{"0", "1", "2", "3"}, obj.Keys())
}

func TestObjectDelete(t *testing.T) {
	t.Run("mapping key", func(t *testing.T) {
		data := sampleData()
		obj := New(data, ObjectOpts{})

		require.NoError(t, obj.Delete("address.city"))
		assert.Equal(t, map[string]any{"zip_code": "10001"}, data["address"])
	})

	t.Run("set then delete restores keys", func(t *testing.T) {
		data := map[string]any{"name": "John"}
		obj := New(data, ObjectOpts{})
		before := obj.Keys()

		_, err := obj.Set("age", 30)
		require.NoError(t, err)
		require.NoError(t, obj.Delete("age"))

		assert.Equal(t, before, obj.Keys())
		assert.Equal(t, map[string]any{"name": "John"}, data)
	})

	t.Run("sequence element shifts", func(t *testing.T) {
		obj := New(sampleData(), ObjectOpts{})
		require.NoError(t, obj.Delete("scores[0]"))
		assert.Equal(t, []any{90, 78}, mustGet(t, obj, "scores"))
	})

	t.Run("nested sequence", func(t *testing.T) {
		obj := New(map[string]any{"m": []any{[]any{1, 2}, []any{3}}}, ObjectOpts{})
		require.NoError(t, obj.Delete("m[0][1]"))
		assert.Equal(t, []any{[]any{1}, []any{3}}, mustGet(t, obj, "m"))
	})

	t.Run("sequence root", func(t *testing.T) {
		obj := New([]any{"a", "b", "c"}, ObjectOpts{})
		require.NoError(t, obj.Delete("[1]"))
		assert.Equal(t, []any{"a", "c"}, obj.Data())
	})

	t.Run("missing raises", func(t *testing.T) {
		obj := New(sampleData(), ObjectOpts{})

		for _, path := range []string{"missing", "missing.deeper", "address.nope", "scores[10]"} {
			err := obj.Delete(path)
			assert.ErrorIs(t, err, ErrKeyNotFound, path)

			var pe *PathError
			require.True(t, errors.As(err, &pe), path)
			assert.Equal(t, OpDelete, pe.Op)
		}
	})

	t.Run("missing ignored", func(t *testing.T) {
		data := sampleData()
		obj := New(data, ObjectOpts{IgnoreMissing: true})

		for _, path := range []string{"missing", "missing.deeper", "address.nope", "scores[10]"} {
			assert.NoError(t, obj.Delete(path), path)
		}
		assert.Equal(t, sampleData(), data)
		assert.False(t, obj.Has("missing"), "delete never creates containers")
	})

	t.Run("scalar conflicts", func(t *testing.T) {
		obj := New(sampleData(), ObjectOpts{IgnoreMissing: true})

		err := obj.Delete("name.first")
		assert.ErrorIs(t, err, ErrPathConflict)
		err = obj.Delete("scores.best")
		assert.ErrorIs(t, err, ErrPathConflict)
	})
}

func TestObjectRoundTrip(t *testing.T) {
	data := map[string]any{"keep": "me"}
	obj := New(data, ObjectOpts{})

	for i := 0; i < 20; i++ {
		key := uuid.NewString()
		p, err := PathOf(key, "items", 0)
		require.NoError(t, err)

		require.NoError(t, obj.SetPath(p, i))
		got, err := obj.GetPath(p)
		require.NoError(t, err)
		assert.Equal(t, i, got)

		require.NoError(t, obj.DeletePath(p))
		assert.Equal(t, []any{}, mustGet(t, obj, key+".items"))
		require.NoError(t, obj.Delete(key))
	}

	assert.Equal(t, map[string]any{"keep": "me"}, data)
}

func TestObjectPathMethods_ZeroPath(t *testing.T) {
	obj := New(nil, ObjectOpts{})

	_, err := obj.GetPath(Path{})
	assert.ErrorIs(t, err, ErrMalformedPath)
	assert.ErrorIs(t, obj.SetPath(Path{}, 1), ErrMalformedPath)
	assert.ErrorIs(t, obj.DeletePath(Path{}), ErrMalformedPath)
}

func TestObjectInspection(t *testing.T) {
	obj := New(sampleData(), ObjectOpts{})

	t.Run("Has", func(t *testing.T) {
		assert.True(t, obj.Has("name"))
		assert.True(t, obj.Has("address.city"))
		assert.True(t, obj.Has("scores[2]"))
		assert.False(t, obj.Has("nonexistent_key"))
		assert.False(t, obj.Has("scores[3]"))
		assert.False(t, obj.Has("name.first"))
		assert.False(t, obj.Has("a..b"))
	})

	t.Run("Len", func(t *testing.T) {
		assert.Equal(t, 4, obj.Len())
		assert.Equal(t, 0, New(nil, ObjectOpts{}).Len())
		assert.Equal(t, 3, New([]any{1, 2, 3}, ObjectOpts{}).Len())
	})

	t.Run("Keys", func(t *testing.T) {
		assert.Equal(t, []string{"address", "age", "name", "scores"}, obj.Keys())
		assert.Nil(t, New("scalar", ObjectOpts{}).Keys())
	})
}

func TestObjectSub(t *testing.T) {
	t.Run("mapping view", func(t *testing.T) {
		obj := New(map[string]any{"outer": map[string]any{"inner": map[string]any{"value": "nested_value"}}}, ObjectOpts{})

		inner, err := obj.Sub("outer.inner")
		require.NoError(t, err)
		assert.Equal(t, "nested_value", mustGet(t, inner, "value"))

		_, err = inner.Set("other", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, mustGet(t, obj, "outer.inner.other"))
	})

	t.Run("sequence view writes back", func(t *testing.T) {
		obj := New(sampleData(), ObjectOpts{})

		scores, err := obj.Sub("scores")
		require.NoError(t, err)
		_, err = scores.Set("[3]", 60)
		require.NoError(t, err)
		require.NoError(t, scores.Delete("[0]"))

		assert.Equal(t, []any{90, 78, 60}, mustGet(t, obj, "scores"))
		assert.Equal(t, []any{90, 78, 60}, scores.Data())
	})

	t.Run("shares configuration", func(t *testing.T) {
		obj := New(sampleData(), ObjectOpts{IgnoreMissing: true, DefaultFactory: func() any { return "none" }})
		addr, err := obj.Sub("address")
		require.NoError(t, err)
		assert.Equal(t, "none", mustGet(t, addr, "missing"))
	})

	t.Run("scalar", func(t *testing.T) {
		obj := New(sampleData(), ObjectOpts{})
		_, err := obj.Sub("name")
		assert.ErrorIs(t, err, ErrPathConflict)
	})

	t.Run("missing", func(t *testing.T) {
		obj := New(sampleData(), ObjectOpts{})
		_, err := obj.Sub("nope")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})
}

func TestObjectWrapsObject(t *testing.T) {
	data := map[string]any{"a": 1}
	inner := New(data, ObjectOpts{IgnoreMissing: true})
	outer := New(inner, ObjectOpts{})

	_, err := outer.Set("b.c", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, mustGet(t, inner, "b.c"))
	assert.Equal(t, data, outer.Data())

	// Configuration comes from the wrapped Object
	got, err := outer.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, outer.Delete("a"))
	assert.False(t, inner.Has("a"))
}

func TestObjectNestedObjects(t *testing.T) {
	child := New(map[string]any{"v": 1}, ObjectOpts{})
	obj := New(map[string]any{"child": child, "list": []any{child}}, ObjectOpts{})

	assert.Equal(t, 1, mustGet(t, obj, "child.v"))
	assert.Equal(t, 1, mustGet(t, obj, "list[0].v"))

	_, err := obj.Set("child.w", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, mustGet(t, child, "w"))

	plain, err := obj.ToObject()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"child": map[string]any{"v": 1, "w": 2},
		"list":  []any{map[string]any{"v": 1, "w": 2}},
	}, plain)
}

func TestObjectEqualAndString(t *testing.T) {
	obj := New(map[string]any{"a": []any{1, "x"}}, ObjectOpts{})

	assert.True(t, obj.Equal(map[string]any{"a": []any{1, "x"}}))
	assert.True(t, obj.Equal(New(map[string]any{"a": []any{1, "x"}}, ObjectOpts{})))
	assert.False(t, obj.Equal(map[string]any{"a": []any{1}}))
	assert.Equal(t, "map[a:[1 x]]", obj.String())
}

func TestObjectJSON(t *testing.T) {
	t.Run("marshal", func(t *testing.T) {
		obj := New(map[string]any{"name": "John", "tags": []any{"a"}}, ObjectOpts{})
		b, err := json.Marshal(obj)
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"John","tags":["a"]}`, string(b))
	})

	t.Run("unmarshal into zero value", func(t *testing.T) {
		var obj Object
		require.NoError(t, json.Unmarshal([]byte(`{"a":[1,{"b":true}]}`), &obj))
		assert.Equal(t, true, mustGet(t, &obj, "a[1].b"))
		assert.Equal(t, float64(1), mustGet(t, &obj, "a[0]"))
	})

	t.Run("unmarshal keeps configuration", func(t *testing.T) {
		obj := New(nil, ObjectOpts{IgnoreMissing: true, DefaultFactory: func() any { return 0 }})
		require.NoError(t, obj.UnmarshalJSON([]byte(`{"x":1}`)))
		assert.Equal(t, 0, mustGet(t, obj, "y"))
	})

	t.Run("unmarshal invalid", func(t *testing.T) {
		obj := New(nil, ObjectOpts{})
		err := obj.UnmarshalJSON([]byte(`{"x":`))
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("struct field", func(t *testing.T) {
		type envelope struct {
			Payload *Object `json:"payload"`
		}
		var env envelope
		require.NoError(t, json.Unmarshal([]byte(`{"payload":{"id":"x"}}`), &env))
		assert.Equal(t, "x", mustGet(t, env.Payload, "id"))

		b, err := json.Marshal(env)
		require.NoError(t, err)
		assert.JSONEq(t, `{"payload":{"id":"x"}}`, string(b))
	})
}

func TestObjectLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obj := New(nil, ObjectOpts{IgnoreMissing: true, Logger: logger})

	_, err := obj.Set("a.b", 1)
	require.NoError(t, err)
	_, err = obj.Get("missing")
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.Contains(out, "created intermediate container"), out)
	assert.True(t, strings.Contains(out, "missing value, using default"), out)
	assert.Contains(t, out, "path=a.b")
}

func mustGet(t *testing.T, obj *Object, path string) any {
	t.Helper()
	v, err := obj.Get(path)
	require.NoError(t, err)
	return v
}

func TestObjectSet_NilMaps(t *testing.T) {
	t.Run("nil root", func(t *testing.T) {
		var data map[string]any
		obj := New(data, ObjectOpts{})

		_, err := obj.Set("a", 1)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": 1}, obj.Data())
	})

	t.Run("nil intermediate", func(t *testing.T) {
		data := map[string]any{"a": map[string]any(nil)}
		obj := New(data, ObjectOpts{})

		_, err := obj.Set("a.b", 1)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"b": 1}, data["a"])
	})

	t.Run("nil any keyed map", func(t *testing.T) {
		data := map[string]any{"a": map[any]any(nil)}
		_, err := New(data, ObjectOpts{}).Set("a.b.c", 1)
		require.NoError(t, err)
		assert.Equal(t, map[any]any{"b": map[string]any{"c": 1}}, data["a"])
	})

	t.Run("nil typed map", func(t *testing.T) {
		data := map[string]any{"counts": map[string]int(nil)}
		_, err := New(data, ObjectOpts{}).Set("counts.x", 2)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"x": 2}, data["counts"])
	})

	t.Run("reads and deletes", func(t *testing.T) {
		obj := New(map[string]any{"a": map[string]any(nil)}, ObjectOpts{IgnoreMissing: true})
		assert.False(t, obj.Has("a.b"))
		assert.NoError(t, obj.Delete("a.b"))
	})

	t.Run("sub view writes back", func(t *testing.T) {
		obj := New(map[string]any{"a": map[string]any(nil)}, ObjectOpts{})

		sub, err := obj.Sub("a")
		require.NoError(t, err)
		_, err = sub.Set("b", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, mustGet(t, obj, "a.b"))
	})
}

func TestObjectSub_DefaultIsDetached(t *testing.T) {
	data := map[string]any{}
	obj := New(data, ObjectOpts{
		IgnoreMissing:  true,
		DefaultFactory: func() any { return []any{} },
	})

	sub, err := obj.Sub("missing")
	require.NoError(t, err)
	_, err = sub.Set("[0]", 1)
	require.NoError(t, err)

	assert.Equal(t, []any{1}, sub.Data())
	assert.Empty(t, data)
}

func TestObjectPathMethods_NegativeIndex(t *testing.T) {
	obj := New(map[string]any{"s": []any{1, 2}}, ObjectOpts{})
	p := Path{steps: []Step{Key("s"), {Kind: IndexStep, Key: "-1", Index: -1, Numeric: true}}}

	_, err := obj.GetPath(p)
	assert.ErrorIs(t, err, ErrMalformedPath)
	assert.ErrorIs(t, obj.SetPath(p, 3), ErrMalformedPath)
	assert.ErrorIs(t, obj.DeletePath(p), ErrMalformedPath)

	var pe *PathError
	require.True(t, errors.As(obj.SetPath(p, 3), &pe))
	assert.Equal(t, 1, pe.Step)
	assert.Equal(t, []any{1, 2}, mustGet(t, obj, "s"))
}

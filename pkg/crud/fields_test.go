package crud

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/crudkit/pkg/crud/query"
)

type bookField string

var bookFields = NewFieldSet(
	FieldInfo[bookField]{Name: "id", Column: "id", PrimaryKey: true, Sortable: true},
	FieldInfo[bookField]{Name: "title", Column: "title", Sortable: true},
	FieldInfo[bookField]{Name: "blurb", Column: "summary"},
)

func TestFieldSetCatalogue(t *testing.T) {
	assert.Equal(t, []bookField{"id", "title", "blurb"}, bookFields.All())
	assert.Equal(t, []string{"id", "title", "summary"}, bookFields.Columns())
	assert.Equal(t, "summary", bookFields.Column("blurb"))
	assert.Equal(t, "", bookFields.Column("nope"))

	f, err := bookFields.Parse("title")
	require.NoError(t, err)
	assert.Equal(t, bookField("title"), f)
	_, err = bookFields.Parse("nope")
	assert.Error(t, err)
}

func TestFieldSetSelection(t *testing.T) {
	sel, err := bookFields.ParseSelection(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, Selection[bookField]{"id": true, "title": true, "blurb": true}, sel)

	sel, err = bookFields.ParseSelection(url.Values{"include": {"id,title"}, "exclude": {"title"}})
	require.NoError(t, err)
	assert.True(t, sel.Has("id"))
	assert.False(t, sel.Has("title"))
	assert.False(t, sel.Has("blurb"))

	sel, err = bookFields.ParseSelection(url.Values{"exclude": {"blurb"}})
	require.NoError(t, err)
	assert.Len(t, sel, 2)

	_, err = bookFields.ParseSelection(url.Values{"include": {"pages"}})
	assert.Equal(t, KindInvalidFieldSpec, KindOf(err))
}

func TestFieldSetProject(t *testing.T) {
	q := query.NewSelect("books")
	bookFields.Project(q, bookFields.Select([]bookField{"title"}, nil))
	sql, _, err := q.Build(query.SQLite)
	require.NoError(t, err)
	assert.Equal(t, `SELECT NULL AS "id", "title", NULL AS "summary" FROM "books"`, sql)
}

func TestFieldSetApplySorts(t *testing.T) {
	q := query.NewSelect("books").Columns("id")
	require.NoError(t, bookFields.ApplySorts(q, []string{"-title", " id"}))
	sql, _, err := q.Build(query.SQLite)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "id" FROM "books" ORDER BY "books"."title" DESC, "books"."id" ASC`, sql)

	q = query.NewSelect("books").Columns("id")
	require.NoError(t, bookFields.ApplySorts(q, nil))
	sql, _, err = q.Build(query.SQLite)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "id" FROM "books" ORDER BY "books"."id" ASC`, sql)

	err = bookFields.ApplySorts(query.NewSelect("books"), []string{"blurb"})
	assert.Equal(t, KindInvalidSortSpec, KindOf(err))
	err = bookFields.ApplySorts(query.NewSelect("books"), []string{"pages"})
	assert.Equal(t, KindInvalidSortSpec, KindOf(err))
	err = bookFields.ApplySorts(query.NewSelect("books"), []string{"-"})
	assert.Equal(t, KindInvalidSortSpec, KindOf(err))
}

func TestPick(t *testing.T) {
	v := int32(4)
	got, err := Pick(true, &v, "id")
	require.NoError(t, err)
	assert.Equal(t, Some(int32(4)), got)

	got, err = Pick[int32](false, nil, "id")
	require.NoError(t, err)
	assert.False(t, got.Set)

	_, err = Pick[int32](true, nil, "id")
	assert.Equal(t, KindDBValue, KindOf(err))

	assert.Equal(t, Some[*int32](nil), PickNullable[int32](true, nil))
	assert.False(t, PickNullable(false, &v).Set)
}

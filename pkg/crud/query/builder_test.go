package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBuild(t *testing.T) {
	q := NewSelect("posts").
		Columns("id", "title").
		NullColumn("body").
		Where(Compare("id", OpGreaterThan, 2), Or(Eq("title", "a"), IsNull("title"))).
		OrderBy("title", Descending).
		OrderBy("id", Ascending).
		Page(Page{Offset: 10, Limit: 5})

	sql, args, err := q.Build(Postgres)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "id", "title", NULL AS "body" FROM "posts" WHERE "id" > $1 AND ("title" = $2 OR "title" IS NULL) ORDER BY "posts"."title" DESC, "posts"."id" ASC LIMIT 5 OFFSET 10`,
		sql)
	assert.Equal(t, []any{2, "a"}, args)

	sql, _, err = q.Build(SQLite)
	require.NoError(t, err)
	assert.Contains(t, sql, `"id" > ? AND ("title" = ? OR`)
}

func TestSelectProject(t *testing.T) {
	sql, _, err := NewSelect("users").Project("id", true).Project("name", false).Build(SQLite)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "id", NULL AS "name" FROM "users"`, sql)
}

func TestSelectForUpdate(t *testing.T) {
	q := NewSelect("posts").Columns("id").Where(Eq("id", 1)).ForUpdate(true)

	sql, _, err := q.Build(Postgres)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "id" FROM "posts" WHERE "id" = $1 FOR UPDATE`, sql)

	sql, _, err = q.Build(SQLite)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "id" FROM "posts" WHERE "id" = ?`, sql)

	sql, _, err = q.ForUpdate(false).Build(Postgres)
	require.NoError(t, err)
	assert.NotContains(t, sql, "FOR UPDATE")
}

func TestSelectErrors(t *testing.T) {
	_, _, err := NewSelect("users").Build(Postgres)
	assert.True(t, errors.Is(err, ErrNoColumns))

	_, _, err = NewSelect("users").Columns("id").Where(Compare("name", OpLessThan, nil)).Build(Postgres)
	assert.True(t, errors.Is(err, ErrNullComparison))
}

func TestEmptyGroups(t *testing.T) {
	sql, _, err := NewSelect("t").Columns("id").Where(And(), Or()).Build(SQLite)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "id" FROM "t" WHERE 1 = 1 AND 1 = 0`, sql)
}

func TestInsertBuild(t *testing.T) {
	sql, args, err := NewInsert("users").
		Set("username", "ann").
		Set("bio", (*string)(nil)).
		Returning("id", "username", "bio").
		Build(Postgres)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("username", "bio") VALUES ($1, $2) RETURNING "id", "username", "bio"`, sql)
	assert.Equal(t, []any{"ann", nil}, args)

	sql, args, err = NewInsert("counters").Returning("id").Build(SQLite)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "counters" DEFAULT VALUES RETURNING "id"`, sql)
	assert.Empty(t, args)
}

func TestUpdateBuild(t *testing.T) {
	u := NewUpdate("users").Set("username", "bob").Where(Eq("id", 7)).Returning("id")
	sql, args, err := u.Build(Postgres)
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "username" = $1 WHERE "id" = $2 RETURNING "id"`, sql)
	assert.Equal(t, []any{"bob", 7}, args)

	empty := NewUpdate("users").Where(Eq("id", 7))
	assert.True(t, empty.Empty())
	_, _, err = empty.Build(Postgres)
	assert.True(t, errors.Is(err, ErrNoAssignments))
}

func TestDeleteBuild(t *testing.T) {
	sql, args, err := NewDelete("users").Where(Eq("id", 3)).Build(SQLite)
	require.NoError(t, err)
	assert.Equal(t, `DELETE FROM "users" WHERE "id" = ?`, sql)
	assert.Equal(t, []any{3}, args)
}

func TestQuoteEscapes(t *testing.T) {
	assert.Equal(t, `"we""ird"`, Postgres.Quote(`we"ird`))
	assert.Equal(t, "$3", Postgres.Placeholder(3))
	assert.Equal(t, "?", SQLite.Placeholder(3))
}

func TestParseOperator(t *testing.T) {
	op, err := ParseOperator("")
	require.NoError(t, err)
	assert.Equal(t, OpEqual, op)

	for name, want := range operatorNames {
		op, err := ParseOperator(name)
		require.NoError(t, err)
		assert.Equal(t, want, op)
		assert.Equal(t, name, op.String())
	}

	_, err = ParseOperator("like")
	assert.Error(t, err)
}

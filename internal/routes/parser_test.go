package routes

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/modelcore/internal/errors"
	"github.com/toyz/modelcore/pkg/router"
)

const sampleRoutes = `# users
GET     /users              controllers.Users.List(page: int ?= 1, sort ?= "name")

+ nocsrf api
post    /users/:id          controllers.Users.Update(id: int64)
GET     /assets/*file       controllers.Assets.At(path = "/public", file)
GET     /items/$id<[0-9]+>  controllers.Items.Get(id: long)
GET     /health             controllers.Health.Check
`

func TestParse(t *testing.T) {
	file, err := Parse("conf/routes", sampleRoutes)
	require.NoError(t, err)

	assert.Equal(t, "conf/routes", file.Name)
	require.Len(t, file.Routes, 5)

	list := file.Routes[0]
	assert.Equal(t, "GET", list.Method)
	assert.Equal(t, router.Path("/users"), list.Path)
	assert.Equal(t, "controllers.Users.List", list.Action())
	assert.Equal(t, 2, list.Location.Line)
	assert.Equal(t, 1, list.Location.Column)
	require.Len(t, list.Params, 2)
	assert.Equal(t, "int", list.Params[0].Type)
	require.NotNil(t, list.Params[0].Default)
	assert.Equal(t, "1", *list.Params[0].Default)
	assert.Equal(t, "string", list.Params[1].Type, "type defaults to string")
	assert.Equal(t, "name", *list.Params[1].Default, "string literals are unquoted")

	update := file.Routes[1]
	assert.Equal(t, "POST", update.Method, "methods are upper-cased")
	assert.Equal(t, []string{"nocsrf", "api"}, update.Modifiers)
	assert.Equal(t, 5, update.Location.Line)

	assets := file.Routes[2]
	assert.Empty(t, assets.Modifiers, "modifiers apply to the next route only")
	fixed, ok := assets.Param("path")
	require.True(t, ok)
	require.NotNil(t, fixed.Fixed)
	assert.Equal(t, "/public", *fixed.Fixed)
	assert.Nil(t, fixed.Default)
	_, ok = assets.Param("missing")
	assert.False(t, ok)

	items := file.Routes[3]
	assert.Equal(t, router.Path("/items/$id<[0-9]+>"), items.Path)
	assert.Equal(t, "long", items.Params[0].Type)

	health := file.Routes[4]
	assert.Empty(t, health.Params)
}

func TestParse_QualifiedType(t *testing.T) {
	file, err := Parse("routes", "GET /u/:id users.Show(id: uuid.UUID)\n")
	require.NoError(t, err)
	assert.Equal(t, "uuid.UUID", file.Routes[0].Params[0].Type)
}

func TestParse_NoTrailingNewline(t *testing.T) {
	file, err := Parse("routes", "GET / home.Index")
	require.NoError(t, err)
	assert.Len(t, file.Routes, 1)
}

func TestParse_Empty(t *testing.T) {
	file, err := Parse("routes", "# nothing here\n\n")
	require.NoError(t, err)
	assert.Empty(t, file.Routes)
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := map[string]struct {
		content string
		line    int
	}{
		"missing target":     {"GET /users\n", 1},
		"arrow target":       {"GET / -> home.Index\n", 1},
		"unclosed params":    {"\nGET /a home.Index(id: int\n", 2},
		"dangling modifier":  {"GET / home.Index\n+ nocsrf\n", 0},
		"path without slash": {"GET users home.Index\n", 1},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("conf/routes", tt.content)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrSyntax), err.Error())

			var core errors.CoreError
			require.True(t, stderrors.As(err, &core))
			assert.Equal(t, "conf/routes", core.Location().File)
			if tt.line > 0 {
				assert.Equal(t, tt.line, core.Location().Line)
			}
		})
	}
}

func TestParse_SyntaxErrorRecordsToken(t *testing.T) {
	const content = "GET users home.Index\n"
	_, err := Parse("conf/routes", content)
	require.Error(t, err)

	var syntax *errors.SyntaxError
	require.True(t, stderrors.As(err, &syntax))
	assert.NotEmpty(t, syntax.Token)
	assert.Contains(t, content, syntax.Token)
}

package binding

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/modelcore/internal/errors"
	"github.com/toyz/modelcore/pkg/model/annotation"
	"github.com/toyz/modelcore/pkg/model/method"
	"github.com/toyz/modelcore/pkg/model/schema"
	"github.com/toyz/modelcore/pkg/model/types"
)

type account struct {
	ID       int64
	Email    string
	Password string
}

func (a account) GetID() int64 { return a.ID }
func (a account) GetEmail() string { return a.Email }
func (a account) GetPassword() string { return a.Password }

func accountSchema(t *testing.T, loader *method.Loader, emailAnns ...annotation.Annotation) *schema.Schema {
	t.Helper()
	class, err := loader.Define(types.Of[account]())
	require.NoError(t, err)

	prop := func(name, getter string, typ types.ModelType, anns ...annotation.Annotation) *schema.Property {
		p, err := schema.NewPropertyBuilder(name, typ, class.Type()).
			Managed(true).
			Getter(method.MustOf(class, getter)).
			GetterAnnotations(annotation.MustSetOf(anns...)).
			Build()
		require.NoError(t, err)
		return p
	}

	s, err := schema.New(types.Of[account](),
		prop("id", "GetID", types.Of[int64]()),
		prop("email", "GetEmail", types.Of[string](), emailAnns...),
		prop("password", "GetPassword", types.Of[string](), annotation.Hidden{}),
	)
	require.NoError(t, err)
	return s
}

func TestEncode(t *testing.T) {
	s := accountSchema(t, method.NewLoader("app"), annotation.Rename{Name: "mail"})

	got, err := Encode(s, account{ID: 7, Email: "a@b.c", Password: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": int64(7), "mail": "a@b.c"}, got)

	fields, err := Fields(s)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "mail", fields[0].Key)
	assert.Equal(t, "email", fields[0].Property.Name())
}

func TestEncode_NilInstance(t *testing.T) {
	s := accountSchema(t, method.NewLoader("app"))

	_, err := Encode(s, nil)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidArgument))
}

func TestEncode_StaleSchema(t *testing.T) {
	loader := method.NewLoader("plugin")
	s := accountSchema(t, loader)
	loader.Close()

	_, err := Encode(s, account{})
	assert.True(t, stderrors.Is(err, errors.ErrStaleReference))
}

func TestFields_KeyCollision(t *testing.T) {
	s := accountSchema(t, method.NewLoader("app"), annotation.Rename{Name: "id"})

	_, err := Fields(s)
	assert.True(t, stderrors.Is(err, errors.ErrConflict))
}

package toolregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndCall(t *testing.T) {
	r := New()
	r.Register(Spec{
		Name: "grid.add",
		Fn: func(args map[string]any) (any, error) {
			return args["name"], nil
		},
		Params:        []ParamSpec{{Name: "name", Type: "string", Required: true}},
		PermissionTag: PermissionProjectEdit,
	})

	got, err := r.Call("grid.add", map[string]any{"name": "Agent Grid"})
	require.NoError(t, err)
	assert.Equal(t, "Agent Grid", got)

	tag, ok := r.PermissionTag("grid.add")
	require.True(t, ok)
	assert.Equal(t, PermissionProjectEdit, tag)
}

func TestCall_UnknownToolErrors(t *testing.T) {
	r := New()
	_, err := r.Call("does.not.exist", nil)
	assert.Error(t, err)
}

func TestJSONSchemas_RequiredAndDefaultedParams(t *testing.T) {
	r := New()
	r.Register(Spec{
		Name: "job.run",
		Fn:   func(args map[string]any) (any, error) { return nil, nil },
		Params: []ParamSpec{
			{Name: "job_id", Type: "string", Required: true},
			{Name: "approved", Type: "boolean", Default: false},
		},
		PermissionTag: PermissionRunJob,
	})

	schemas := r.JSONSchemas()
	s, ok := schemas["job.run"]
	require.True(t, ok)
	assert.Equal(t, []string{"job_id"}, s.Required)
	assert.Equal(t, false, s.Properties["approved"].Default)
	assert.False(t, s.AdditionalProperties)
}

func TestDescribe_PreservesRegistrationOrder(t *testing.T) {
	r := New()
	r.Register(Spec{Name: "b", Fn: func(map[string]any) (any, error) { return nil, nil }})
	r.Register(Spec{Name: "a", Fn: func(map[string]any) (any, error) { return nil, nil }})
	specs := r.Describe()
	require.Len(t, specs, 2)
	assert.Equal(t, "b", specs[0].Name)
	assert.Equal(t, "a", specs[1].Name)
}

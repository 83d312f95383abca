package celshade

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockModule struct {
	installs int
	sawApp   *App
}

func (m *MockModule) Install(app *App) {
	m.installs++
	m.sawApp = app
}

func TestAppBuilder_Empty(t *testing.T) {
	app := NewAppBuilder().Build()

	assert.Empty(t, app.modules)
	assert.Equal(t, defaultStages, app.stages)
}

func TestAppBuilder_InstallsEachModuleOnce(t *testing.T) {
	first, second := &MockModule{}, &MockModule{}

	builder := NewAppBuilder().UseModule(first)
	builder.UseModule(second)
	assert.Zero(t, first.installs, "install waits for Build")

	app := builder.Build()
	require.Len(t, app.modules, 2)
	assert.Equal(t, 1, first.installs)
	assert.Equal(t, 1, second.installs)
	assert.Same(t, app, first.sawApp)
}

func TestAppBuilder_ModulesSeeEarlierResources(t *testing.T) {
	var found bool
	app := NewAppBuilder().
		UseModule(LoggingModule{Prefix: "test"}, moduleFunc(func(app *App) {
			_, found = Resource[DefaultLogger](app)
		})).
		Build()

	assert.True(t, found)
	assert.NotNil(t, app.Logger())
}

type moduleFunc func(app *App)

func (f moduleFunc) Install(app *App) { f(app) }

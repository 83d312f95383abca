package celshade

import (
	"fmt"
	"reflect"
	"runtime"
)

type systemFn any

// App holds the frame resources and runs the installed systems stage by
// stage once per Tick.
type App struct {
	modules   []Module
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
	frame     uint64
}

// Module installs resources and systems into an App.
type Module interface {
	Install(app *App)
}

func newApp() *App {
	app := &App{
		systems:   make(map[string][]systemFn),
		resources: make(map[reflect.Type]any),
	}
	for _, stage := range defaultStages {
		app.stages = append(app.stages, stage)
		app.systems[stage.Name] = make([]systemFn, 0)
	}
	return app
}

// Frame is the number of completed ticks.
func (app *App) Frame() uint64 {
	return app.frame
}

// Tick runs every stage once.
func (app *App) Tick() {
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			app.callSystem(system)
		}
	}
	app.frame++
}

// Run ticks until keepRunning reports false. It is checked before every frame.
func (app *App) Run(keepRunning func() bool) {
	for keepRunning() {
		app.Tick()
	}
}

// AddResources registers pointer resources by their element type. Adding a
// second resource of the same type panics.
func (app *App) AddResources(resources ...any) *App {
	return app.addResources(resources...)
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("%s is not a pointer resource", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

// Resource returns the *T resource registered in app.
func Resource[T any](app *App) (*T, bool) {
	r, ok := app.resources[reflect.TypeOf((*T)(nil)).Elem()]
	if !ok {
		return nil, false
	}
	typed, ok := r.(*T)
	return typed, ok
}

func (app *App) callSystem(system systemFn) {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)

		if argType == typeOfApp {
			args[i] = reflect.ValueOf(app)
		} else if argType.Kind() == reflect.Pointer {
			resource, ok := app.resources[argType.Elem()]
			if !ok {
				app.unresolved(systemValue, systemType, argType)
			}
			args[i] = reflect.ValueOf(resource)
		} else {
			app.unresolved(systemValue, systemType, argType)
		}
	}
	systemValue.Call(args)
}

var typeOfApp = reflect.TypeOf(&App{})

func (app *App) unresolved(systemValue reflect.Value, systemType, argType reflect.Type) {
	msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
		runtime.FuncForPC(systemValue.Pointer()).Name(),
		fmt.Sprint(systemType),
		fmt.Sprint(argType),
	)
	app.Logger().Errorf("%s", msg)
	panic(msg)
}

package celshade

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLoggerLevels(t *testing.T) {
	var out, errOut bytes.Buffer
	log := NewDefaultLoggerTo("app", false, &out, &errOut)

	log.Debugf("hidden %d", 1)
	log.Infof("ready")
	log.Warnf("careful")
	log.Errorf("broken")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "[app] INFO: ready")
	assert.Contains(t, errOut.String(), "[app] WARN: careful")
	assert.Contains(t, errOut.String(), "[app] ERROR: broken")

	log.SetDebug(true)
	log.Debugf("shown %d", 2)
	assert.Contains(t, out.String(), "[app] DEBUG: shown 2")
}

func TestNamedLoggerSharesDebugSwitch(t *testing.T) {
	var out bytes.Buffer
	root := NewDefaultLoggerTo("", false, &out, &out)
	child := root.Named("shadows")

	root.SetDebug(true)
	assert.True(t, child.DebugEnabled())

	child.Debugf("tile %d", 5)
	assert.True(t, strings.Contains(out.String(), "[shadows] DEBUG: tile 5"))
	assert.Contains(t, child.Named("atlas").prefix, "shadows/atlas")
}

func TestAppLoggerFallsBackToNop(t *testing.T) {
	var nilApp *App
	assert.NotNil(t, nilApp.Logger())

	app := NewAppBuilder().Build()
	assert.False(t, app.Logger().DebugEnabled())

	app = NewAppBuilder().UseModule(LoggingModule{Prefix: "test", Debug: true}).Build()
	assert.True(t, app.Logger().DebugEnabled())
}

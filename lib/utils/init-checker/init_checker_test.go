package initchecker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type provider interface {
	Get() string
}

type impl struct{}

func (i *impl) Get() string { return "" }

func TestCheckInit(t *testing.T) {
	t.Run(`initialized`, func(t *testing.T) {
		var p provider = &impl{}
		require.NotPanics(t, func() { CheckInit("provider", p, "name", "value") })
	})

	t.Run(`nil and typed nil`, func(t *testing.T) {
		var p provider
		require.PanicsWithValue(t, "provider dependency not initialized", func() { CheckInit("provider", p) })
		var typed *impl
		p = typed
		require.Panics(t, func() { CheckInit("provider", p) })
	})

	t.Run(`odd arguments`, func(t *testing.T) {
		require.Panics(t, func() { CheckInit("provider") })
	})
}

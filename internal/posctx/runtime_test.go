package posctx

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/viewtouch/posk/internal/checkmodel"
	"github.com/viewtouch/posk/internal/serial"
	"github.com/viewtouch/posk/internal/settings"
	"github.com/viewtouch/posk/internal/termlink"
)

func TestWithCheckSerializesMutation(t *testing.T) {
	rt := New(checkmodel.NewCheckList(), serial.NewAllocator(0), settings.New(), termlink.NewHub(), zerolog.Nop(), t.TempDir(), t.TempDir())

	var ran bool
	rt.WithCheck(func(r *Runtime) { ran = true })
	require.True(t, ran)
}

func TestNewSystemCtxCarriesIdentity(t *testing.T) {
	rt := New(checkmodel.NewCheckList(), serial.NewAllocator(0), settings.New(), termlink.NewHub(), zerolog.Nop(), t.TempDir(), t.TempDir())
	sc := NewSystemCtx(context.Background(), rt, "term1", 42)
	require.Equal(t, "term1", sc.TerminalID)
	require.Equal(t, int64(42), sc.EmployeeID)
	require.Same(t, rt, sc.RT)
}

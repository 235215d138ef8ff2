package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdrpinto/vimgolf"
)

// echoOracle returns the path text as the buffer and counts its calls.
type echoOracle struct {
	calls  *atomic.Int64
	closed *atomic.Int64
	delay  time.Duration
	fail   bool
}

func (o *echoOracle) ApplyCommands(_ context.Context, path vimgolf.Path) (vimgolf.EditorState, error) {
	o.calls.Add(1)
	time.Sleep(o.delay)
	if o.fail {
		return vimgolf.EditorState{}, vimgolf.NewOracleError(vimgolf.OracleCommunicationFailure, path, errors.New("down"))
	}
	return vimgolf.NewEditorState([]string{path.String()}, vimgolf.Cursor{}, vimgolf.ModeNormal), nil
}

func (o *echoOracle) State(context.Context) (vimgolf.EditorState, error) {
	return vimgolf.NewEditorState(nil, vimgolf.Cursor{}, vimgolf.ModeNormal), nil
}

func (o *echoOracle) Close() error {
	o.closed.Add(1)
	return nil
}

type echoBackend struct {
	calls  atomic.Int64
	closed atomic.Int64
	delay  time.Duration
	fail   bool
}

func (b *echoBackend) factory() vimgolf.OracleFactory {
	return func(context.Context) (vimgolf.Oracle, error) {
		return &echoOracle{calls: &b.calls, closed: &b.closed, delay: b.delay, fail: b.fail}, nil
	}
}

func TestOracle_SessionsShareResults(t *testing.T) {
	backend := &echoBackend{}
	cached := NewOracle(backend.factory(), 16)
	ctx := context.Background()

	first, err := cached.Factory()(ctx)
	require.NoError(t, err)
	second, err := cached.Factory()(ctx)
	require.NoError(t, err)

	path := vimgolf.MustParseKeys("dw")
	a, err := first.ApplyCommands(ctx, path)
	require.NoError(t, err)
	b, err := second.ApplyCommands(ctx, path)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, []string{"dw"}, b.Lines())
	assert.Equal(t, int64(1), backend.calls.Load())

	stats := cached.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestOracle_ErrorsAreNotCached(t *testing.T) {
	backend := &echoBackend{fail: true}
	cached := NewOracle(backend.factory(), 16)
	ctx := context.Background()
	session, err := cached.Factory()(ctx)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = session.ApplyCommands(ctx, vimgolf.MustParseKeys("x"))
		assert.ErrorIs(t, err, vimgolf.ErrOracleCommunication)
	}
	assert.Equal(t, int64(2), backend.calls.Load())
	assert.Zero(t, cached.Store().Count())
}

func TestOracle_CollapsesConcurrentMisses(t *testing.T) {
	backend := &echoBackend{delay: 50 * time.Millisecond}
	cached := NewOracle(backend.factory(), 16)
	ctx := context.Background()
	path := vimgolf.MustParseKeys("3x$p")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		session, err := cached.Factory()(ctx)
		require.NoError(t, err)
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := session.ApplyCommands(ctx, path)
			assert.NoError(t, err)
			assert.Equal(t, []string{"3x$p"}, state.Lines())
		}()
	}
	wg.Wait()

	assert.Less(t, backend.calls.Load(), int64(8))
}

func TestOracle_CloseAndStateDelegate(t *testing.T) {
	backend := &echoBackend{}
	cached := NewOracle(backend.factory(), 16)
	ctx := context.Background()

	session, err := cached.Factory()(ctx)
	require.NoError(t, err)
	state, err := session.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{""}, state.Lines())

	closer, ok := session.(interface{ Close() error })
	require.True(t, ok)
	require.NoError(t, closer.Close())
	assert.Equal(t, int64(1), backend.closed.Load())
}

func TestOracle_StateFollowsCachedAnswers(t *testing.T) {
	backend := &echoBackend{}
	cached := NewOracle(backend.factory(), 16)
	ctx := context.Background()

	first, err := cached.Factory()(ctx)
	require.NoError(t, err)
	second, err := cached.Factory()(ctx)
	require.NoError(t, err)

	before, err := second.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{""}, before.Lines(), "falls back to the inner session before any apply")

	_, err = first.ApplyCommands(ctx, vimgolf.MustParseKeys("x"))
	require.NoError(t, err)
	applied, err := second.ApplyCommands(ctx, vimgolf.MustParseKeys("x"))
	require.NoError(t, err)
	require.Equal(t, int64(1), backend.calls.Load(), "second apply must be a cache hit")

	after, err := second.State(ctx)
	require.NoError(t, err)
	assert.True(t, after.Equal(applied))
	assert.Equal(t, []string{"x"}, after.Lines())
}

// fingerprintOracle reports the path length as hidden state.
type fingerprintOracle struct {
	echoOracle
	last vimgolf.Path
}

func (o *fingerprintOracle) ApplyCommands(ctx context.Context, path vimgolf.Path) (vimgolf.EditorState, error) {
	o.last = path
	return o.echoOracle.ApplyCommands(ctx, path)
}

func (o *fingerprintOracle) Fingerprint() string {
	return "len=" + strconv.Itoa(len(o.last))
}

func TestOracle_CachesFingerprints(t *testing.T) {
	backend := &echoBackend{}
	cached := NewOracle(func(context.Context) (vimgolf.Oracle, error) {
		return &fingerprintOracle{echoOracle: echoOracle{calls: &backend.calls, closed: &backend.closed}}, nil
	}, 16)
	ctx := context.Background()

	first, err := cached.Factory()(ctx)
	require.NoError(t, err)
	second, err := cached.Factory()(ctx)
	require.NoError(t, err)

	_, err = first.ApplyCommands(ctx, vimgolf.MustParseKeys("dw"))
	require.NoError(t, err)
	_, err = second.ApplyCommands(ctx, vimgolf.MustParseKeys("dw"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), backend.calls.Load())

	fp, ok := second.(vimgolf.Fingerprinter)
	require.True(t, ok)
	assert.Equal(t, "len=2", fp.Fingerprint())

	entry, ok := cached.Store().Get("dw")
	require.True(t, ok)
	assert.Equal(t, "len=2", entry.Fingerprint)
}

func TestOracle_FingerprintDefaultsToStateKey(t *testing.T) {
	backend := &echoBackend{}
	cached := NewOracle(backend.factory(), 16)
	ctx := context.Background()
	session, err := cached.Factory()(ctx)
	require.NoError(t, err)

	state, err := session.ApplyCommands(ctx, vimgolf.MustParseKeys("p"))
	require.NoError(t, err)
	assert.Equal(t, state.Key(), session.(vimgolf.Fingerprinter).Fingerprint())
}

func TestOracle_FactoryErrorPropagates(t *testing.T) {
	errDown := errors.New("cannot start")
	cached := NewOracle(func(context.Context) (vimgolf.Oracle, error) { return nil, errDown }, 0)

	_, err := cached.Factory()(context.Background())
	assert.ErrorIs(t, err, errDown)
}

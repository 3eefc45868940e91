package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statsited/statsited/internal/metric"
)

type recordedUpdate struct {
	kind  metric.Kind
	key   string
	value float64
}

type recordedSet struct {
	key    string
	member string
}

type fakeStore struct {
	updates []recordedUpdate
	sets    []recordedSet
}

func (f *fakeStore) Update(kind metric.Kind, key []byte, value float64) {
	f.updates = append(f.updates, recordedUpdate{kind, string(key), value})
}
func (f *fakeStore) SetUpdate(key, member []byte) {
	f.sets = append(f.sets, recordedSet{string(key), string(member)})
}
func (f *fakeStore) Iterate(metric.Visitor) {}
func (f *fakeStore) Destroy()               {}

func feedText(t *testing.T, store metric.Store, inputCounter string, lines string) error {
	t.Helper()
	var buf Buffer
	buf.Feed([]byte(lines))
	var ic []byte
	if inputCounter != "" {
		ic = []byte(inputCounter)
	}
	return TextIngest(&buf, store, ic)
}

func TestTextIngestCounter(t *testing.T) {
	s := &fakeStore{}
	require.NoError(t, feedText(t, s, "", "foo:3|c\n"))
	require.Len(t, s.updates, 1)
	assert.Equal(t, metric.Counter, s.updates[0].kind)
	assert.Equal(t, "foo", s.updates[0].key)
	assert.Equal(t, 3.0, s.updates[0].value)
}

func TestTextIngestCounterSampleRate(t *testing.T) {
	s := &fakeStore{}
	require.NoError(t, feedText(t, s, "", "foo:3|c|@0.5\n"))
	require.Len(t, s.updates, 1)
	assert.Equal(t, 6.0, s.updates[0].value)
}

func TestTextIngestCounterSampleRateOutOfRangeUnscaled(t *testing.T) {
	s := &fakeStore{}
	require.NoError(t, feedText(t, s, "", "foo:3|c|@2\n"))
	require.Len(t, s.updates, 1)
	assert.Equal(t, 3.0, s.updates[0].value)
}

func TestTextIngestGaugeDelta(t *testing.T) {
	s := &fakeStore{}
	require.NoError(t, feedText(t, s, "", "g:+1|g\ng:-2|g\n"))
	require.Len(t, s.updates, 2)
	assert.Equal(t, metric.GaugeDelta, s.updates[0].kind)
	assert.Equal(t, 1.0, s.updates[0].value)
	assert.Equal(t, metric.GaugeDelta, s.updates[1].kind)
	assert.Equal(t, -2.0, s.updates[1].value)
}

func TestTextIngestPlainGauge(t *testing.T) {
	s := &fakeStore{}
	require.NoError(t, feedText(t, s, "", "g:5|g\n"))
	require.Len(t, s.updates, 1)
	assert.Equal(t, metric.Gauge, s.updates[0].kind)
	assert.Equal(t, 5.0, s.updates[0].value)
}

func TestTextIngestSet(t *testing.T) {
	s := &fakeStore{}
	require.NoError(t, feedText(t, s, "", "m:abc|s\n"))
	require.Empty(t, s.updates)
	require.Len(t, s.sets, 1)
	assert.Equal(t, "m", s.sets[0].key)
	assert.Equal(t, "abc", s.sets[0].member)
}

func TestTextIngestInputCounter(t *testing.T) {
	s := &fakeStore{}
	require.NoError(t, feedText(t, s, "input_count", "foo:3|c\n"))
	require.Len(t, s.updates, 2)
	assert.Equal(t, "input_count", s.updates[0].key)
	assert.Equal(t, 1.0, s.updates[0].value)
	assert.Equal(t, "foo", s.updates[1].key)
}

func TestTextIngestAwaitsMoreData(t *testing.T) {
	s := &fakeStore{}
	var buf Buffer
	buf.Feed([]byte("foo:3|c")) // no trailing newline yet
	require.NoError(t, TextIngest(&buf, s, nil))
	assert.Empty(t, s.updates)

	buf.Feed([]byte("\n"))
	require.NoError(t, TextIngest(&buf, s, nil))
	require.Len(t, s.updates, 1)
}

func TestTextIngestSplitAcrossTwoReads(t *testing.T) {
	full := &fakeStore{}
	require.NoError(t, feedText(t, full, "", "foo:3|c\nbar:5|c\n"))

	split := &fakeStore{}
	var buf Buffer
	buf.Feed([]byte("foo:3|c\nbar"))
	require.NoError(t, TextIngest(&buf, split, nil))
	buf.Feed([]byte(":5|c\n"))
	require.NoError(t, TextIngest(&buf, split, nil))

	require.Equal(t, full.updates, split.updates)
}

func TestTextIngestMissingColonIsFatal(t *testing.T) {
	s := &fakeStore{}
	err := feedText(t, s, "", "foobar\n")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Empty(t, s.updates)
}

func TestTextIngestUnknownTypeIsFatal(t *testing.T) {
	s := &fakeStore{}
	err := feedText(t, s, "", "foo:3|z\n")
	require.Error(t, err)
	assert.Empty(t, s.updates)
}

func TestTextIngestUnparseableValueIsFatal(t *testing.T) {
	s := &fakeStore{}
	err := feedText(t, s, "", "foo:abc|c\n")
	require.Error(t, err)
	assert.Empty(t, s.updates)
}

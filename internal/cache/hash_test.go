package cache

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeQuery struct {
	URL      string
	Dir      string
	Strip    int
	HasSub   bool
	Sub      string
}

func (q fakeQuery) QueryTypeName() string { return "cache.fakeQuery" }

func (q fakeQuery) HashFields(fh *FieldHasher) {
	fh.String(q.URL).String(q.Dir).Int(int64(q.Strip)).OptionalString(q.HasSub, q.Sub)
}

func TestHash_IsDeterministicAcrossCalls(t *testing.T) {
	q := fakeQuery{URL: "https://example.com/a.tar.gz", Dir: "/tmp/out", Strip: 1}
	h1 := Hash(q)
	h2 := Hash(q)
	assert.True(t, bytes.Equal(h1, h2))
}

func TestHash_DiffersOnFieldChange(t *testing.T) {
	base := fakeQuery{URL: "https://example.com/a.tar.gz", Dir: "/tmp/out", Strip: 1}
	changed := base
	changed.Strip = 2
	assert.False(t, bytes.Equal(Hash(base), Hash(changed)))
}

func TestHash_OptionalPresenceAffectsHash(t *testing.T) {
	absent := fakeQuery{URL: "u", Dir: "d"}
	present := fakeQuery{URL: "u", Dir: "d", HasSub: true, Sub: "x"}
	assert.False(t, bytes.Equal(Hash(absent), Hash(present)))
}

type otherFakeQuery fakeQuery

func (q otherFakeQuery) QueryTypeName() string { return "cache.otherFakeQuery" }

func (q otherFakeQuery) HashFields(fh *FieldHasher) {
	fh.String(q.URL).String(q.Dir).Int(int64(q.Strip)).OptionalString(q.HasSub, q.Sub)
}

func TestHash_DiffersByTypeNameEvenWithSameFields(t *testing.T) {
	a := fakeQuery{URL: "u", Dir: "d", Strip: 1}
	b := otherFakeQuery{URL: "u", Dir: "d", Strip: 1}
	assert.False(t, bytes.Equal(Hash(a), Hash(b)))
}

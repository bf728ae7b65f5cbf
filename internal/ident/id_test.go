package ident

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{in: "unit:12", want: ID{Kind: "unit", Seq: 12}},
		{in: "model.colony:3", want: ID{Kind: "model.colony", Seq: 3}},
		{in: "a:b:7", want: ID{Kind: "a:b", Seq: 7}},
		{in: "unit", wantErr: true},
		{in: ":5", wantErr: true},
		{in: "unit:", wantErr: true},
		{in: "unit:x", wantErr: true},
		{in: "unit:-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestCompare_NumericSuffix(t *testing.T) {
	ids := []ID{
		MustParse("unit:10"),
		MustParse("colony:4"),
		MustParse("unit:2"),
		MustParse("unit:1"),
	}
	slices.SortFunc(ids, Compare)

	got := make([]string, len(ids))
	for i, id := range ids {
		got[i] = id.String()
	}
	assert.Equal(t, []string{"colony:4", "unit:1", "unit:2", "unit:10"}, got)
	assert.Negative(t, Compare(MustParse("unit:2"), MustParse("unit:10")))
	assert.Zero(t, Compare(MustParse("unit:2"), New("unit", 2)))
}

func TestID_Zero(t *testing.T) {
	var id ID
	assert.True(t, id.IsZero())
	assert.Equal(t, "", id.String())
	assert.False(t, New("unit", 0).IsZero())
}

func TestID_YAML(t *testing.T) {
	type doc struct {
		Owner ID `yaml:"owner"`
		Empty ID `yaml:"empty"`
	}

	out, err := yaml.Marshal(doc{Owner: New("player", 3)})
	require.NoError(t, err)

	var back doc
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Equal(t, New("player", 3), back.Owner)
	assert.True(t, back.Empty.IsZero())
}

func TestAllocator_NeverReuses(t *testing.T) {
	a := NewAllocator()

	assert.Equal(t, "unit:1", a.Next("unit").String())
	assert.Equal(t, "unit:2", a.Next("unit").String())
	assert.Equal(t, "colony:1", a.Next("colony").String())

	a.Observe(MustParse("unit:40"))
	assert.Equal(t, "unit:41", a.Next("unit").String())

	// observing a lower id never moves the counter back
	a.Observe(MustParse("unit:5"))
	assert.Equal(t, "unit:42", a.Next("unit").String())
}

func TestAllocator_SnapshotRestore(t *testing.T) {
	a := NewAllocator()
	a.Next("unit")
	a.Next("unit")
	a.Next("player")

	b := NewAllocator()
	b.Next("player")
	b.Next("player")
	b.Next("player")
	b.Restore(a.Snapshot())

	assert.Equal(t, int64(2), b.Last("unit"))
	assert.Equal(t, int64(3), b.Last("player"))
}

func TestAllocator_Concurrent(t *testing.T) {
	a := NewAllocator()
	const workers, perWorker = 8, 500

	var mu sync.Mutex
	seen := make(map[int64]bool, workers*perWorker)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				id := a.Next("unit")
				mu.Lock()
				seen[id.Seq] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
	assert.Equal(t, int64(workers*perWorker), a.Last("unit"))
}

// Copyright 2024 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package mosaic

import (
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func bruteSelect[T Value](col Column[T], p Predicate[T], cands []OID) []OID {
	var res []OID
	for i := 0; i < col.Len(); i++ {
		o := col.OID(i)
		if cands != nil && !containsOID(cands, o) {
			continue
		}
		if !p.matchesNothing() && p.Match(col.At(i)) {
			res = append(res, o)
		}
	}
	return res
}

func containsOID(oids []OID, o OID) bool {
	for _, x := range oids {
		if x == o {
			return true
		}
	}
	return false
}

func randomCandidates(rng *rand.Rand, col Column[int64]) []OID {
	switch rng.Intn(4) {
	case 0:
		return nil
	case 1:
		return []OID{}
	}
	var cands []OID
	// Include identifiers below and above the column's domain.
	if col.Seqbase > 0 && rng.Intn(2) == 0 {
		cands = append(cands, col.Seqbase-1)
	}
	for i := 0; i < col.Len(); i++ {
		if rng.Intn(5) == 0 {
			cands = append(cands, col.OID(i))
		}
	}
	if rng.Intn(2) == 0 {
		cands = append(cands, col.OID(col.Len())+3)
	}
	return cands
}

func randomPredicate(rng *rand.Rand, col Column[int64]) Predicate[int64] {
	pick := func() int64 {
		if rng.Intn(3) == 0 {
			return rng.Int63n(2000) - 1000
		}
		return col.At(rng.Intn(col.Len()))
	}
	p := Predicate[int64]{
		HasLow:        rng.Intn(4) != 0,
		HasHigh:       rng.Intn(4) != 0,
		LowInclusive:  rng.Intn(2) == 0,
		HighInclusive: rng.Intn(2) == 0,
		Anti:          rng.Intn(3) == 0,
	}
	p.Low, p.High = pick(), pick()
	if p.Low > p.High {
		p.Low, p.High = p.High, p.Low
	}
	return p
}

func TestSelectMatchesScan(t *testing.T) {
	seed := uint64(time.Now().UnixNano())
	t.Logf("seed: %d", seed)
	rng := rand.New(rand.NewSource(seed))

	for iter := 0; iter < 20; iter++ {
		col, err := MakeColumn(TypeInt64, OID(rng.Intn(50)), genValues(rng, 1+rng.Intn(3000)))
		require.NoError(t, err)
		c := mustCompress(t, col, &Options{MaxChunkLen: 1 + rng.Intn(200)})
		for q := 0; q < 20; q++ {
			p := randomPredicate(rng, col)
			cands := randomCandidates(rng, col)
			require.Equal(t, bruteSelect(col, p, cands), c.Select(p, cands), "%s cands=%v", p, cands != nil)
		}
	}
}

func TestThetaSelect(t *testing.T) {
	values := []int64{5, 6, 7, 8, 9, 7, 7, 100, -3, math.MinInt64, math.MaxInt64}
	col, err := MakeColumn(TypeInt64, 100, values)
	require.NoError(t, err)
	for _, opts := range []*Options{
		{Codecs: []Tag{TagRaw}},
		{Codecs: []Tag{TagDelta}},
		{Codecs: []Tag{TagDictionary}},
		{Codecs: []Tag{TagFrame}},
		nil,
	} {
		c := mustCompress(t, col, opts)
		for _, op := range []string{"<", "<=", ">", ">=", "=", "==", "<>", "!="} {
			o, err := ParseOp(op)
			require.NoError(t, err)
			for _, x := range []int64{7, -3, 6, 1000, math.MinInt64, math.MaxInt64} {
				var want []OID
				for i, v := range values {
					var ok bool
					switch op {
					case "<":
						ok = v < x
					case "<=":
						ok = v <= x
					case ">":
						ok = v > x
					case ">=":
						ok = v >= x
					case "=", "==":
						ok = v == x
					default:
						ok = v != x
					}
					if ok {
						want = append(want, OID(100+i))
					}
				}
				require.Equal(t, want, c.ThetaSelect(x, o, nil), "v %s %d", op, x)
			}
		}
	}
	_, err = ParseOp("~")
	require.Error(t, err)
}

func TestThetaSelectFloat(t *testing.T) {
	values := []float64{0.5, 1, 1, math.Nextafter(1, 2), 2, math.NaN(), math.Inf(1)}
	col, err := MakeColumn(TypeFloat64, 0, values)
	require.NoError(t, err)
	c := mustCompress(t, col, nil)
	require.Equal(t, []OID{0}, c.ThetaSelect(1, OpLT, nil))
	require.Equal(t, []OID{3, 4, 6}, c.ThetaSelect(1, OpGT, nil))
	require.Equal(t, []OID{1, 2}, c.ThetaSelect(1, OpEQ, nil))
	require.Equal(t, []OID{0, 3, 4, 5, 6}, c.ThetaSelect(1, OpNE, nil))
	require.Empty(t, c.ThetaSelect(math.Inf(1), OpGT, nil))
	require.Empty(t, c.ThetaSelect(math.NaN(), OpLE, nil))
}

func TestAntiUnboundedMatchesNothing(t *testing.T) {
	col := mustColumn[int32](t, TypeInt32, 1, 2, 3)
	c := mustCompress(t, col, nil)
	require.Empty(t, c.Select(Predicate[int32]{Anti: true}, nil))
	require.Equal(t, []OID{0, 1, 2}, c.Select(Predicate[int32]{}, nil))
	require.Equal(t, []OID{0, 2}, c.Select(Predicate[int32]{Low: 2, High: 2, HasLow: true, HasHigh: true, LowInclusive: true, HighInclusive: true, Anti: true}, nil))
}

func TestProjection(t *testing.T) {
	seed := uint64(time.Now().UnixNano())
	t.Logf("seed: %d", seed)
	rng := rand.New(rand.NewSource(seed))

	for iter := 0; iter < 20; iter++ {
		col, err := MakeColumn(TypeInt64, OID(rng.Intn(50)), genValues(rng, 1+rng.Intn(3000)))
		require.NoError(t, err)
		c := mustCompress(t, col, &Options{MaxChunkLen: 1 + rng.Intn(200)})
		cands := randomCandidates(rng, col)
		var want []int64
		for i := 0; i < col.Len(); i++ {
			if cands == nil || containsOID(cands, col.OID(i)) {
				want = append(want, col.At(i))
			}
		}
		require.Equal(t, want, c.Projection(cands))
	}
}

func TestJoin(t *testing.T) {
	seed := uint64(time.Now().UnixNano())
	t.Logf("seed: %d", seed)
	rng := rand.New(rand.NewSource(seed))

	for iter := 0; iter < 10; iter++ {
		left, err := MakeColumn(TypeInt64, OID(rng.Intn(50)), genValues(rng, 1+rng.Intn(500)))
		require.NoError(t, err)
		rightValues := make([]int64, 1+rng.Intn(50))
		for i := range rightValues {
			rightValues[i] = left.At(rng.Intn(left.Len()))
			if rng.Intn(4) == 0 {
				rightValues[i] = rng.Int63n(100)
			}
		}
		right, err := MakeColumn(TypeInt64, 1000, rightValues)
		require.NoError(t, err)
		c := mustCompress(t, left, &Options{MaxChunkLen: 1 + rng.Intn(100)})
		cands := randomCandidates(rng, left)

		var want Pairs
		for i := 0; i < left.Len(); i++ {
			if cands != nil && !containsOID(cands, left.OID(i)) {
				continue
			}
			for j := 0; j < right.Len(); j++ {
				if left.At(i) == right.At(j) {
					require.NoError(t, want.Append(left.OID(i), right.OID(j)))
				}
			}
		}
		var got Pairs
		require.NoError(t, c.Join(right, &got, cands))
		require.Equal(t, want.Left, got.Left)
		require.Equal(t, want.Right, got.Right)
	}
}

func TestJoinOutputExhausted(t *testing.T) {
	left := mustColumn[int32](t, TypeInt32, 1, 2, 1, 2, 1, 2)
	right := mustColumn[int32](t, TypeInt32, 2, 1)
	c := mustCompress(t, left, nil)

	out := Pairs{Limit: 4}
	err := c.Join(right, &out, nil)
	require.True(t, errors.Is(err, ErrOutputExhausted), "%+v", err)
	require.Equal(t, 4, out.Len())
	require.Equal(t, []OID{0, 1, 2, 3}, out.Left)
	require.Equal(t, []OID{1, 0, 1, 0}, out.Right)

	out = Pairs{}
	require.NoError(t, c.Join(right, &out, nil))
	require.Equal(t, 6, out.Len())
}

func TestTaskCursor(t *testing.T) {
	col := mustColumn[int64](t, TypeInt64, 10, 11, 12, 13, 1000)
	c := mustCompress(t, col, &Options{Codecs: []Tag{TagDelta}})
	codecs := newCodecSet(c.Header)

	task := newQueryTask(c)
	require.False(t, task.Done())
	require.Equal(t, TagDelta, task.tag())
	codecs.get(TagDelta).Advance(task)
	require.Equal(t, 4, task.Start())
	require.Equal(t, TagRaw, task.tag())
	codecs.get(TagRaw).Skip(task)
	require.True(t, task.Done())

	// Operators leave the task at the next block.
	task = newQueryTask(c)
	task.oids = &OIDWriter{}
	codecs.get(TagDelta).ThetaSelect(task, 12, OpGE)
	require.Equal(t, []OID{2, 3}, task.oids.OIDs())
	require.False(t, task.Done())
	codecs.get(TagRaw).ThetaSelect(task, 12, OpGE)
	require.Equal(t, []OID{2, 3, 4}, task.oids.OIDs())
	require.True(t, task.Done())
}

func TestCandidateBlockSkip(t *testing.T) {
	col := mustColumn[int64](t, TypeInt64, 10, 11, 12, 13, 1000)
	c := mustCompress(t, col, &Options{Codecs: []Tag{TagDelta}})
	task := newQueryTask(c)
	task.SetCandidates([]OID{4})
	require.True(t, task.skipBlock(4))
	codecs := newCodecSet(c.Header)
	codecs.get(TagDelta).Advance(task)
	require.False(t, task.skipBlock(1))
	require.True(t, task.admit(4))

	task = newQueryTask(c)
	task.SetCandidates([]OID{})
	require.True(t, task.skipBlock(4))
	require.False(t, task.admit(0))
}

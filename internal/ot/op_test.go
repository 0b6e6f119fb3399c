package ot_test

import (
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/Vib3Cod3r/saleshub-sub000/internal/ot"
)

func ins(pos int, text, author string) ot.Operation {
	return ot.Operation{Type: ot.OpInsert, Position: pos, Text: text, AuthorID: author}
}

func del(pos, length int, author string) ot.Operation {
	return ot.Operation{Type: ot.OpDelete, Position: pos, Length: length, AuthorID: author}
}

func TestLength(t *testing.T) {
	assert.Equal(t, ot.Length(""), 0)
	assert.Equal(t, ot.Length("abc"), 3)
	// An astral code point occupies two UTF-16 units.
	assert.Equal(t, ot.Length("a\U0001F600b"), 4)
}

func TestApplyInsert(t *testing.T) {
	assert.Equal(t, ot.Apply("", ins(0, "foo", "a")), "foo")
	assert.Equal(t, ot.Apply("abc", ins(1, "X", "a")), "aXbc")
	assert.Equal(t, ot.Apply("abc", ins(3, "X", "a")), "abcX")
}

func TestApplyInsertClamped(t *testing.T) {
	assert.Equal(t, ot.Apply("abc", ins(10, "X", "a")), "abcX")
	assert.Equal(t, ot.Apply("abc", ins(-2, "X", "a")), "Xabc")
}

func TestApplyDelete(t *testing.T) {
	assert.Equal(t, ot.Apply("abc", del(1, 1, "a")), "ac")
	assert.Equal(t, ot.Apply("abc", del(0, 3, "a")), "")
}

func TestApplyDeleteClamped(t *testing.T) {
	// Deleting past the end removes only the valid portion.
	assert.Equal(t, ot.Apply("abc", del(2, 5, "a")), "ab")
	assert.Equal(t, ot.Apply("abc", del(5, 2, "a")), "abc")
}

func TestApplyNoop(t *testing.T) {
	assert.Equal(t, ot.Apply("abc", ins(1, "", "a")), "abc")
	assert.Equal(t, ot.Apply("abc", del(1, 0, "a")), "abc")
	assert.Equal(t, ins(1, "", "a").IsNoop(), true)
	assert.Equal(t, del(1, 0, "a").IsNoop(), true)
	assert.Equal(t, ins(1, "x", "a").IsNoop(), false)
}

func TestApplyUTF16Offsets(t *testing.T) {
	// "😀" = 2 UTF-16 units, so text after it starts at offset 2.
	assert.Equal(t, ot.Apply("\U0001F600ab", ins(2, "X", "a")), "\U0001F600Xab")
	assert.Equal(t, ot.Apply("\U0001F600ab", del(2, 1, "a")), "\U0001F600b")
}

func TestTransformInsertInsert(t *testing.T) {
	run := func(op, prior, want ot.Operation) {
		t.Helper()
		assert.Equal(t, ot.Transform(op, prior), want)
	}
	run(ins(5, "x", "bob"), ins(1, "foo", "alice"), ins(8, "x", "bob"))
	run(ins(1, "x", "bob"), ins(5, "foo", "alice"), ins(1, "x", "bob"))
	// Equal positions: the lower author id keeps insertion priority.
	run(ins(2, "x", "bob"), ins(2, "foo", "alice"), ins(5, "x", "bob"))
	run(ins(2, "x", "alice"), ins(2, "foo", "bob"), ins(2, "x", "alice"))
}

func TestTransformInsertDelete(t *testing.T) {
	run := func(op, prior, want ot.Operation) {
		t.Helper()
		assert.Equal(t, ot.Transform(op, prior), want)
	}
	prior := del(1, 2, "alice")
	run(ins(5, "x", "bob"), prior, ins(3, "x", "bob"))
	run(ins(3, "x", "bob"), prior, ins(1, "x", "bob"))
	// Strictly inside the deleted range: the insert collapses but still
	// commits.
	run(ins(2, "x", "bob"), prior, ins(1, "", "bob"))
	run(ins(1, "x", "bob"), prior, ins(1, "x", "bob"))
	run(ins(0, "x", "bob"), prior, ins(0, "x", "bob"))
}

func TestTransformDeleteInsert(t *testing.T) {
	run := func(op, prior, want ot.Operation) {
		t.Helper()
		assert.Equal(t, ot.Transform(op, prior), want)
	}
	prior := ins(2, "xy", "alice")
	run(del(3, 2, "bob"), prior, del(5, 2, "bob"))
	run(del(2, 2, "bob"), prior, del(4, 2, "bob"))
	// Insert landed inside the range being deleted: the delete grows to
	// cover it.
	run(del(1, 3, "bob"), prior, del(1, 5, "bob"))
	run(del(0, 2, "bob"), prior, del(0, 2, "bob"))
}

func TestTransformDeleteDelete(t *testing.T) {
	run := func(op, prior, want ot.Operation) {
		t.Helper()
		assert.Equal(t, ot.Transform(op, prior), want)
	}
	prior := del(3, 4, "alice")
	run(del(0, 2, "bob"), prior, del(0, 2, "bob"))
	run(del(2, 2, "bob"), prior, del(2, 1, "bob"))
	run(del(3, 2, "bob"), prior, del(3, 0, "bob"))
	run(del(5, 2, "bob"), prior, del(3, 0, "bob"))
	run(del(6, 2, "bob"), prior, del(3, 1, "bob"))
	run(del(8, 2, "bob"), prior, del(4, 2, "bob"))
	// Identical ranges become a committed no-op.
	run(del(3, 4, "bob"), prior, del(3, 0, "bob"))
}

func TestTransformAgainstSkipsObservedOps(t *testing.T) {
	log := []ot.Operation{
		{Type: ot.OpInsert, Position: 0, Text: "aa", AuthorID: "alice", ServerVersion: 1},
		{Type: ot.OpInsert, Position: 0, Text: "bb", AuthorID: "alice", ServerVersion: 2},
	}
	op := ins(1, "x", "bob")
	op.ClientVersion = 1 // already saw version 1
	assert.Equal(t, ot.TransformAgainst(op, log).Position, 3)
}

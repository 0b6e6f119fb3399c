package ot

// The transform matrix reconciles a newly submitted operation against
// an operation that already committed ahead of it. Each entry rewrites
// the new operation so that applying it after the prior one preserves
// the author's intent; the prior operation is already part of server
// history and never changes. Dispatch goes through an explicit case
// table so the matrix's completeness is visible at a glance.

type transformFunc func(op, prior Operation) Operation

var transformTable = map[[2]string]transformFunc{
	{OpInsert, OpInsert}: transformInsertInsert,
	{OpInsert, OpDelete}: transformInsertDelete,
	{OpDelete, OpInsert}: transformDeleteInsert,
	{OpDelete, OpDelete}: transformDeleteDelete,
}

// Transform rewrites op against a single prior committed operation.
// Operations of unknown type pass through unchanged.
func Transform(op, prior Operation) Operation {
	fn, ok := transformTable[[2]string{op.Type, prior.Type}]
	if !ok {
		return op
	}
	return fn(op, prior)
}

// TransformAgainst folds op through every log entry committed after
// the version the author had observed, in ServerVersion order.
func TransformAgainst(op Operation, log []Operation) Operation {
	for _, prior := range log {
		if prior.ServerVersion <= op.ClientVersion {
			continue
		}
		op = Transform(op, prior)
	}
	return op
}

// When positions collide, the author with the lower id keeps insertion
// priority, so every replica orders the two insertions the same way.
func transformInsertInsert(op, prior Operation) Operation {
	if prior.Position < op.Position ||
		(prior.Position == op.Position && prior.AuthorID < op.AuthorID) {
		op.Position += Length(prior.Text)
	}
	return op
}

func transformInsertDelete(op, prior Operation) Operation {
	priorEnd := prior.Position + prior.Length
	switch {
	case priorEnd <= op.Position:
		// Deleted range is entirely before the insertion point.
		op.Position -= prior.Length
	case prior.Position < op.Position:
		// Insertion point fell strictly inside the deleted range. The
		// surrounding text is gone; the insert collapses to a no-op
		// that still commits and advances the version.
		op.Position = prior.Position
		op.Text = ""
	}
	return op
}

func transformDeleteInsert(op, prior Operation) Operation {
	switch {
	case prior.Position <= op.Position:
		op.Position += Length(prior.Text)
	case prior.Position < op.Position+op.Length:
		// Text was inserted strictly inside the range being deleted.
		// The delete grows to cover it, mirroring the collapse on the
		// insert-versus-delete side.
		op.Length += Length(prior.Text)
	}
	return op
}

func transformDeleteDelete(op, prior Operation) Operation {
	opEnd := op.Position + op.Length
	priorEnd := prior.Position + prior.Length
	if overlap := minInt(opEnd, priorEnd) - maxInt(op.Position, prior.Position); overlap > 0 {
		op.Length -= overlap
	}
	if prior.Position < op.Position {
		op.Position -= minInt(prior.Length, op.Position-prior.Position)
	}
	return op
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// internal/edit/compose.go
package edit

import "treestage/internal/snapshot"

// Sequence folds operators left to right. Each operator consumes the
// snapshot produced by the previous one; records concatenate in
// application order. An empty list is the identity operator.
func Sequence(ops ...Operator) Operator {
	return func(snap snapshot.Map) (ApplyResult, error) {
		result := ApplyResult{Snapshot: snap}
		for _, op := range ops {
			next, err := op(result.Snapshot)
			if err != nil {
				return ApplyResult{}, err
			}
			result.Snapshot = next.Snapshot
			result.Records = append(result.Records, next.Records...)
		}
		return result, nil
	}
}

// Join applies a then b, with b seeing a's output snapshot, and returns
// one merged result. Used to fuse a single-path effect with its cascade
// into one atomic operation.
func Join(a, b Operator) Operator {
	return Sequence(a, b)
}

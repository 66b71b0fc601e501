package combat

import "slices"

// orderBySpeed returns the queue sorted fastest actor first. Ties keep queue
// order, so players act before opponents of equal speed.
func orderBySpeed(reg *Registry, queue []*QueuedAction) []*QueuedAction {
	out := slices.Clone(queue)
	speed := func(q *QueuedAction) int {
		c, err := reg.Get(q.Actor)
		if err != nil {
			return 0
		}
		return c.Effective().Speed
	}
	slices.SortStableFunc(out, func(a, b *QueuedAction) int {
		return speed(b) - speed(a)
	})
	return out
}

// Package pool runs independent units of work with bounded concurrency.
//
// Unlike a plain errgroup, a failing unit does not cancel its siblings:
// every unit runs to completion and Wait reports one Result per unit, in
// submission order. A panic inside a unit is recovered and reported as that
// unit's error.
//
//	p := pool.New(ctx, 4)
//	for i, part := range parts {
//		p.Go(fmt.Sprintf("part-%d", i+1), func(ctx context.Context) error {
//			return upload(ctx, part)
//		})
//	}
//	for _, r := range p.Wait() {
//		if r.Err != nil {
//			log.Printf("%s failed: %v", r.Name, r.Err)
//		}
//	}
package pool

// Package store provides the repository layer for relay records:
// subscriptions (a callback URL registered for a target) and publications
// (a declared event stream).
//
// The generic Repository interface keeps persistence concerns out of the
// dispatch core: Add with exists-first dedupe, a lazy one-shot GetAll
// sequence, and an Exists lookup keyed on the record kind's uniqueness
// predicate (target + callback URL for subscriptions, target alone for
// publications).
//
// Two implementations are provided: MongoRepository backed by a mongo
// collection, and MemoryRepository for tests and local development. Both
// share uniqueness semantics, so code written against the interface behaves
// identically under either.
//
//	subs := store.NewSubscriptionRepository(db)
//
//	id, err := subs.Add(ctx, store.Subscription{
//	    Target:      "user.created",
//	    CallbackURL: "https://example.com/hooks",
//	})
//
//	for sub, err := range subs.GetAll(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    // fan out to sub.CallbackURL
//	}
package store

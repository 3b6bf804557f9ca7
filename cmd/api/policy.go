package main

// resourcePolicy pins down two behaviors the API contract depends on.
//
// trustsCallerOwnership: whether the controller accepts the owning foreign
// key from the request body. Admin controllers do; everything else derives
// ownership from the authenticated caller.
//
// emptyListAsNotFound: whether list reports an empty collection as 404
// instead of 200 with an empty array. Unusual, but several consumers depend
// on it, so it is an explicit policy rather than an accident.
type resourcePolicy struct {
	trustsCallerOwnership bool
	emptyListAsNotFound   bool
}

var (
	bookingPolicy = resourcePolicy{emptyListAsNotFound: true}
	reviewPolicy  = resourcePolicy{emptyListAsNotFound: true}
	servicePolicy = resourcePolicy{emptyListAsNotFound: true}

	// The public business listing and the admin controllers return empty
	// collections as 200.
	businessListPolicy  = resourcePolicy{}
	adminBusinessPolicy = resourcePolicy{trustsCallerOwnership: true}
	adminUserPolicy     = resourcePolicy{}
)

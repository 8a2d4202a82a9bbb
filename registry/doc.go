/*
Package registry manages process-wide type registrations for entityodm.

Collection Registry:
Binds a Go entity type to the collection it is stored in. Models consult it
when their schema does not name a collection:

	registry.RegisterCollection[User]("users")

	users, err := entityodm.NewModel[User](conn, entityodm.Schema[User]{})

Time Converter Registry:
Maps provider-native timestamp types to a conversion into time.Time. Values
whose type has a converter are converted when records are loaded:

	registry.RegisterTimeConverter(func(ts primitive.Timestamp) (time.Time, error) {
	    return time.Unix(int64(ts.T), 0).UTC(), nil
	})

Types exposing a Time() time.Time method need no registration.

The registry is thread-safe and should be populated during initialization,
typically in init() functions.
*/
package registry

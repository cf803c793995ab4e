// Package session is the single source of truth for who the current user
// is and whether they still need to set up an organization.
//
// A Manager resolves identity from the backend's /api/v1/me endpoint and
// exposes a Session snapshot every consumer reads from. It revalidates
// opportunistically: on explicit Refresh, when a focus signal arrives
// (the client regained the user's attention), and when another client of
// the same user publishes a login or logout signal through the bus.
//
// Resolution results carry a sequence token; a response from an older
// resolution that settles after a newer one started is discarded instead
// of clobbering fresher state.
//
//	mgr := session.New(cfg.BaseURL,
//	    session.WithHTTPClient(api.HTTPClient()), // share the cookie jar
//	    session.WithSignalBus(bus),
//	)
//	mgr.Start(ctx)
//	defer mgr.Close()
//
//	snap := mgr.Snapshot()
package session

// Package tr064 provides a client for invoking TR-064 actions on AVM routers.
//
// TR-064 exposes router functionality as SOAP services. Each service is
// published in the device description (/tr64desc.xml) under a serviceId
// whose suffix, such as "X_AVM-DE_Homeplug1", is the name used to address
// it. Actions take and return named string arguments.
//
// # Usage Example
//
//	client := tr064.NewClient(tr064.Config{
//	    Address:  "fritz.box",
//	    Password: os.Getenv("FRITZ_PASSWORD"),
//	})
//
//	out, err := client.CallAction(ctx, "X_AVM-DE_Homeplug1",
//	    "GetGenericDeviceEntry", tr064.Arguments{"NewIndex": "0"})
//	if tr064.IsBoundary(err) {
//	    // index past the last entry
//	}
//
// # Authentication
//
// Requests are authenticated with HTTP Digest. The first request of a
// session is sent without credentials; the router's challenge is then kept
// and reused with an increasing nonce count until it answers 401 again.
//
// # Error Handling
//
// Every error returned by CallAction is an *ActionError. SOAP faults are
// mapped from their UPnP error code, so callers can tell an exhausted array
// index (713, ErrBoundaryReached) from an unknown lookup key (714,
// ErrNotFound) or a network failure (ErrTransport) with errors.Is.
//
// The client performs no retries and caches nothing but the device
// description and the authentication challenge.
package tr064

// Package omdb provides a client for the OMDb movie database API.
//
// OMDb answers title searches with pages of ten matches and offers a
// detail lookup keyed by IMDb id. This package wraps both endpoints and
// normalizes the upstream's "Response": "False" convention into typed
// errors.
//
// # Usage
//
//	logger := zerolog.New(os.Stderr)
//	client := omdb.NewClient(
//		os.Getenv("OMDB_API_KEY"),
//		logger,
//		omdb.WithTimeout(10*time.Second),
//	)
//
//	res, err := client.Search(ctx, omdb.SearchParams{Query: "Batman", Page: 1})
//	if err != nil {
//		var apiErr *omdb.APIError
//		if errors.As(err, &apiErr) && apiErr.IsLogical() {
//			// zero matches, not a failure of the service
//		}
//	}
//
// # Error Handling
//
// Every failure is an *APIError carrying a Kind:
//
//   - KindMissingCredential: no API key configured, nothing was sent
//   - KindNoResults: the upstream found nothing for the search
//   - KindNotFound: the upstream does not know the requested id
//   - KindTransport: network failure, non-2xx status or a malformed body
//
// Each kind matches its sentinel with errors.Is:
//
//	if errors.Is(err, omdb.ErrMissingCredential) {
//		// tell the user to configure a key
//	}
package omdb

// Package relay is a minimal HTTP routing and request-lifecycle
// framework. It turns a raw inbound request into a typed, mutable
// request context, decodes and structurally validates the body, runs
// an ordered middleware chain that can short-circuit, derives caller
// identity, dispatches to a handler, and maps any failure to a fixed
// JSON error envelope.
//
// Two interchangeable routing engines implement the same contract and
// behave identically on every observable axis: path matching, CORS
// preflight, not-found shape, and query parsing. The engine is
// selected through Config:
//
//	router, err := relay.New(relay.Config{Engine: relay.EngineChi})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	router.Use(middlewares.Logging(log))
//	router.State("db", pool)
//
//	router.Get("/posts/:id", func(c *relay.Context) (any, error) {
//	    id := c.Param("id")
//	    ...
//	    return post, nil
//	})
//
//	router.Group("/api/v1", func(r relay.Router) {
//	    r.Post("/posts", createPost, relay.Object(map[string]relay.Property{
//	        "title":   relay.Required(relay.TypeString),
//	        "content": relay.Required(relay.TypeString),
//	    }))
//	})
//
//	http.ListenAndServe(":8080", router)
//
// Handlers return a plain value serialized as JSON, or a *Response for
// full control. Errors returned from any stage are caught exactly once
// and rendered as the error envelope with a per-request ID.
package relay

// Package descriptor turns a flat list of health check settings into validated,
// deduplicated descriptors grouped by dependency kind.
//
// Each configured item declares a kind (SQL, Redis, ExternalAPI, ...), a name and
// a primary value (a connection string or a URL). Build walks the items in order
// and either accepts an item as a Descriptor or records a Rejection explaining
// why it was dropped. Bad items never abort a build.
//
// # Basic Usage
//
//	set, rejected := descriptor.Build("orders-api", []descriptor.Item{
//	    {Type: "Sql", Name: "orders-db", Endpoint: "user:pass@tcp(db:3306)/orders"},
//	    {Type: "ExternalApi", Name: "billing", Endpoint: "https://billing.internal/"},
//	})
//	for _, r := range rejected {
//	    log.Printf("skipped %q: %v", r.Name, r.Reason)
//	}
//	for _, d := range set.All() {
//	    fmt.Println(d.Kind, d.Name, d.Tags)
//	}
//
// Names are unique across the whole configuration, compared case-insensitively.
// The first occurrence wins; later duplicates are rejected with ErrDuplicateName.
package descriptor

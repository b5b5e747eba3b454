// Package shopify looks up product variants through the Shopify Admin GraphQL
// API and normalizes them into product records.
//
// Client.Fetch issues a single productVariants query filtered by SKU and maps
// HTTP, GraphQL, and empty results onto the services error markers:
// rejected credentials become ErrAuth, missing variants ErrNotFound, and
// everything else that prevents a usable answer ErrNetwork. Client.Ping runs
// a trivial shop query so startup checks can surface bad credentials early.
package shopify

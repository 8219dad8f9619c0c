// Package oastypes provides the parsed document model for OpenAPI
// Specification documents: the OAS2Document and OAS3Document types, their
// nested Schema/Parameter/SecurityScheme/Response types, and a Parser that
// loads, decodes and resolves a spec from YAML or JSON.
//
// The parser supports OAS 2.0 through OAS 3.2.0. It resolves external
// $ref references, validates structure, and preserves unknown fields for
// forward compatibility and vendor extension properties. Specifications can
// be loaded from local files, an io.Reader, raw bytes, or remote URLs.
//
// # Quick Start
//
//	result, err := oastypes.ParseWithOptions(
//		oastypes.WithFilePath("openapi.yaml"),
//		oastypes.WithValidateStructure(true),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if len(result.Errors) > 0 {
//		fmt.Printf("Parse errors: %d\n", len(result.Errors))
//	}
//
// Or create a reusable Parser instance:
//
//	p := oastypes.New()
//	p.ResolveRefs = false
//	result1, _ := p.Parse("api1.yaml")
//	result2, _ := p.Parse("https://example.com/api2.yaml")
//
// # Security
//
// External reference resolution prevents path traversal by restricting
// file access to the base directory and its subdirectories, and caches up
// to MaxCachedDocuments external documents to bound memory use.
// HTTP/HTTPS $ref resolution is opt-in via WithResolveHTTPRefs.
//
// # Circular Reference Handling
//
// When the parser detects a circular $ref during resolution it uses a
// "silent fallback" strategy: the affected node is left unresolved (the
// "$ref" key is preserved), a warning is appended to result.Warnings, and
// parsing continues. Circular references are detected when a $ref points
// to an ancestor already on the current resolution path. Exceeding
// MaxRefDepth is not treated as circular: resolution stops with a
// resource-limit error, which is recorded as a "ref resolution warning".
//
// # Resource Limits
//
// The parser enforces configurable limits to bound resolution cost:
//
//   - MaxRefDepth: maximum nested $ref depth (default: 100)
//   - MaxCachedDocuments: maximum external documents cached (default: 100)
//   - MaxFileSize: maximum external reference file size (default: 10MB)
//
// # ParseResult
//
// ParseResult carries the detected Version, OASVersion, SourceFormat, and
// any Errors or Warnings collected during parsing, plus Document (either
// an *OAS2Document or *OAS3Document). IsOAS2/IsOAS3 and OAS2Document/
// OAS3Document provide safe type checking and assertion without a manual
// type switch on Document.
//
// This package is consumed by [github.com/kestrelapi/apigate/specindex],
// which builds the request-time routing table and security-requirement
// index on top of the parsed document.
package oastypes

// Package hosting holds the boundary to the git-hosting platform: the
// repository descriptor shape the engine consumes, filesystem discovery of
// an organisation's cloned fleet, and regex name filtering. How a
// repository list was obtained upstream (REST, GraphQL, cache) is outside
// this boundary.
package hosting

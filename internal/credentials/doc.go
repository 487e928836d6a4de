// Package credentials supplies secrets to remote-transport operations.
//
// A Provider is a stateless capability object: any concrete source (stored
// token, interactive terminal prompt) implements the same two questions and
// is chosen at call time by the synchronization engine.
package credentials

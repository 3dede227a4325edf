// package services defines interface Service for interacting with HTTP APIs
//
// The remote catalog/collection API (Spotify), the scrape proxy, and the
// local Ollama suggestion backend each get a thin client here. All response
// shapes are decoded into explicit structs at the boundary; nothing upstream
// of this package touches raw JSON.
package services

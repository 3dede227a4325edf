// package server contains the scrape proxy and the OAuth loopback callback.
//
// The proxy exists to work around browser cross-origin restrictions: it
// fetches the station's daily playlist page server-side, runs the scraper
// over it, and returns structured JSON. It exposes exactly one data route,
// GET /wqxr-playlist, plus /health; there is no auth and CORS is permissive.
package server
